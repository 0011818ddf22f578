package dashboard

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TableRow is one rendered row of the sales table.
type TableRow struct {
	Date      string     `json:"date"`
	Quantity  float64    `json:"quantity"`
	Type      sales.Kind `json:"type"`
	ProductID string     `json:"productId,omitempty"`
}

// TablePage is one page of the sales table, newest first.
type TablePage struct {
	Rows       []TableRow `json:"rows"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

// PaginatePoints sorts points newest first and returns the requested page.
// Page numbers start at 1 and are clamped to the available range.
func PaginatePoints(points []sales.SalesPoint, page, size int) TablePage {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	sorted := sales.SortDescending(points)
	total := len(sorted)
	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	start := min((page-1)*size, total)
	end := min(start+size, total)

	rows := make([]TableRow, 0, end-start)
	for _, p := range sorted[start:end] {
		rows = append(rows, TableRow{
			Date:      p.Date.Display(),
			Quantity:  p.Quantity,
			Type:      p.Kind,
			ProductID: p.ProductID,
		})
	}
	return TablePage{Rows: rows, Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// SalesTableProvider renders the merged points as a paginated table.
type SalesTableProvider struct {
	fetcher sales.Fetcher
}

// NewSalesTableProvider builds a table provider backed by the fetcher.
func NewSalesTableProvider(fetcher sales.Fetcher) *SalesTableProvider {
	return &SalesTableProvider{fetcher: fetcher}
}

// Fetch runs the configured query and returns the requested page.
func (p *SalesTableProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("sales table provider: fetcher is required")
	}
	cfg := NormalizeConfig(meta.Instance.Configuration)
	query, err := QueryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	pageNum, err := intValue(cfg[cfgPage])
	if err != nil {
		return nil, fmt.Errorf("%w: page: %v", sales.ErrInvalidQuery, err)
	}
	size, err := intValue(cfg[cfgPageSize])
	if err != nil {
		return nil, fmt.Errorf("%w: page_size: %v", sales.ErrInvalidQuery, err)
	}

	result, err := p.fetcher.Fetch(ctx, query)
	failed, err := partialFailures(err)
	if err != nil {
		return nil, fmt.Errorf("sales table provider: %w", err)
	}
	page := PaginatePoints(result.Points, pageNum, size)
	data := WidgetData{
		"rows":        page.Rows,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	}
	if len(failed) > 0 {
		data["failed_products"] = failed
	}
	return data, nil
}
