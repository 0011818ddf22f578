package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Sellers, 6)
	assert.Equal(t, []string{"electronics", "clothes", "food"}, c.Categories)
	assert.Len(t, c.TimeRanges, 3)

	p, ok := c.Product("p200")
	require.True(t, ok)
	assert.Equal(t, "Samsung Galaxy S24 Ultra", p.Name)
	assert.True(t, c.HasSeller("seller_1"))
	assert.False(t, c.HasSeller("seller_9"))

	food := c.ProductsInCategory("food")
	require.Len(t, food, 3)
	assert.Equal(t, "p400", food[0].ID)
}

func TestDecodeRejectsDuplicates(t *testing.T) {
	doc := `
categories: [food]
products:
  - {id: p1, category: food}
  - {id: p1, category: food}
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate product id p1")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("sellers: [a]\nregions: [eu]\n"))
	require.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
