package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

func TestPaginatePointsSortsNewestFirst(t *testing.T) {
	page := PaginatePoints(samplePoints(), 1, 2)

	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "2025/05/26", page.Rows[0].Date)
	assert.Equal(t, sales.KindPrediction, page.Rows[0].Type)
	assert.Equal(t, "2025/05/25", page.Rows[1].Date)

	last := PaginatePoints(samplePoints(), 2, 2)
	require.Len(t, last.Rows, 2)
	assert.Equal(t, "2025/05/23", last.Rows[1].Date)
}

func TestPaginatePointsClampsInput(t *testing.T) {
	page := PaginatePoints(samplePoints(), 9, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Len(t, page.Rows, 4)

	page = PaginatePoints(samplePoints(), -1, 500)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageSize, page.PageSize)

	empty := PaginatePoints(nil, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Rows)
}

func TestSalesTableProviderFetch(t *testing.T) {
	fetcher := &stubFetcher{result: sales.Result{Points: samplePoints()}}
	provider := NewSalesTableProvider(fetcher)
	cfg := sampleConfig()
	cfg["page"] = 2
	cfg["pageSize"] = 3

	data, err := provider.Fetch(context.Background(), WidgetContext{Instance: WidgetInstance{Configuration: cfg}})
	require.NoError(t, err)

	assert.Equal(t, 2, data["page"])
	assert.Equal(t, 3, data["page_size"])
	assert.Equal(t, 4, data["total"])
	assert.Equal(t, 2, data["total_pages"])
	rows, ok := data["rows"].([]TableRow)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0].ProductID)
}

func TestSalesTableProviderRejectsBadPage(t *testing.T) {
	provider := NewSalesTableProvider(&stubFetcher{})
	cfg := sampleConfig()
	cfg["page"] = "two"
	_, err := provider.Fetch(context.Background(), WidgetContext{Instance: WidgetInstance{Configuration: cfg}})
	assert.ErrorIs(t, err, sales.ErrInvalidQuery)
}
