// Package catalog exposes the sellers, categories and products offered by the
// dashboard filter form.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Product describes a catalogue entry.
type Product struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category" yaml:"category"`
	Brand       string  `json:"brand" yaml:"brand"`
	Price       float64 `json:"price" yaml:"price"`
	Created     string  `json:"createTimestamp" yaml:"created"`
	Description string  `json:"description" yaml:"description"`
}

// TimeRangeOption is a labeled time range preset.
type TimeRangeOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Catalog is the option set of the filter form.
type Catalog struct {
	Sellers    []string          `json:"sellers" yaml:"sellers"`
	Categories []string          `json:"categories" yaml:"categories"`
	TimeRanges []TimeRangeOption `json:"timeRanges" yaml:"time_ranges"`
	Products   []Product         `json:"products" yaml:"products"`
}

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	return Decode(bytes.NewReader(defaultCatalog))
}

// Load reads a catalogue file from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return c, nil
}

// Decode parses a YAML catalogue, rejecting unknown fields.
func Decode(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var c Catalog
	if err := decoder.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("catalog: document is empty")
		}
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that product ids are unique and categories are known.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Products))
	for idx, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("catalog: product at index %d is missing id", idx)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("catalog: duplicate product id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Category != "" && !slices.Contains(c.Categories, p.Category) {
			return fmt.Errorf("catalog: product %s has unknown category %s", p.ID, p.Category)
		}
	}
	return nil
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsInCategory lists the products of a category in catalogue order.
func (c *Catalog) ProductsInCategory(category string) []Product {
	var out []Product
	for _, p := range c.Products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// HasSeller reports whether the seller is offered by the form.
func (c *Catalog) HasSeller(id string) bool {
	return slices.Contains(c.Sellers, id)
}
