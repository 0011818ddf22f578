package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/sales"
)

type fetchCmd struct {
	Seller   string `required:"" help:"Seller id."`
	Product  string `help:"Product id."`
	Category string `help:"Product category."`
	TopN     int    `name:"top-n" help:"Plot the top N products of the window."`
	Start    string `help:"Window start (YYYY-MM-DD)."`
	End      string `help:"Window end (YYYY-MM-DD)."`
	Range    string `help:"Preset window starting today (week, month, year)."`
	Format   string `enum:"table,json,yaml" default:"table" help:"Output format."`
	Page     int    `default:"1" help:"Table page."`
	PageSize int    `default:"20" help:"Table page size."`

	out io.Writer `kong:"-"`
}

func (cmd *fetchCmd) Run(ctx context.Context, globals *cli) error {
	app, err := newApplication(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	query, err := cmd.query()
	if err != nil {
		return err
	}
	result, err := app.aggregator.Fetch(ctx, query)
	var partial *sales.PartialError
	if err != nil && !errors.As(err, &partial) {
		return err
	}
	if partial != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", partial)
	}
	return cmd.print(result)
}

func (cmd *fetchCmd) query() (sales.Query, error) {
	return dashboard.QueryFromConfig(map[string]any{
		"seller_id":  cmd.Seller,
		"product_id": cmd.Product,
		"category":   cmd.Category,
		"top_n":      cmd.TopN,
		"start_date": cmd.Start,
		"end_date":   cmd.End,
		"time_range": cmd.Range,
	})
}

func (cmd *fetchCmd) writer() io.Writer {
	if cmd.out != nil {
		return cmd.out
	}
	return os.Stdout
}

func (cmd *fetchCmd) print(result sales.Result) error {
	out := cmd.writer()
	page := dashboard.PaginatePoints(result.Points, cmd.Page, cmd.PageSize)
	switch cmd.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		return yaml.NewEncoder(out).Encode(page)
	default:
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tPRODUCT\tTYPE\tQUANTITY")
		for _, row := range page.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", row.Date, row.ProductID, row.Type, row.Quantity)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "page %d of %d (%d rows)\n", page.Page, page.TotalPages, page.Total)
		return err
	}
}
