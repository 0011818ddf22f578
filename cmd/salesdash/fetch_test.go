package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
	"github.com/goliatone/go-sales-dashboard/pkg/salesapi"
)

func TestFetchCmdQuery(t *testing.T) {
	cmd := &fetchCmd{Seller: "S1", TopN: 3, Start: "2025-05-01", End: "2025-05-31"}
	q, err := cmd.query()
	require.NoError(t, err)
	assert.Equal(t, sales.ModeTopN, q.Mode())
	assert.Equal(t, sales.DayFromParts(2025, 5, 1), q.StartDate)

	_, err = (&fetchCmd{Seller: "S1", Start: "soon"}).query()
	assert.ErrorIs(t, err, sales.ErrInvalidQuery)
}

func TestFetchCmdPrintsTable(t *testing.T) {
	var buf bytes.Buffer
	cmd := &fetchCmd{Format: "table", Page: 1, PageSize: 10, out: &buf}
	require.NoError(t, cmd.print(sales.Result{Points: []sales.SalesPoint{
		{Date: sales.DayFromParts(2025, 5, 24), Quantity: 4, Kind: sales.KindHistorical, ProductID: "P1"},
		{Date: sales.DayFromParts(2025, 5, 25), Quantity: 6, Kind: sales.KindPrediction},
	}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "2025/05/25")
	assert.Contains(t, lines[2], "P1")
	assert.Equal(t, "page 1 of 1 (2 rows)", lines[3])
}

func TestFetchCmdPrintsJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &fetchCmd{Format: "json", out: &buf}
	require.NoError(t, cmd.print(sales.Result{Points: []sales.SalesPoint{
		{Date: sales.DayFromParts(2025, 5, 24), Quantity: 4, Kind: sales.KindHistorical},
	}}))
	assert.Contains(t, buf.String(), `"date": "2025/05/24"`)
}

func TestDemoDataCoversCatalog(t *testing.T) {
	c := &catalog.Catalog{Products: []catalog.Product{
		{ID: "P1", Category: "Books", Price: 2},
		{ID: "P2", Category: "Books", Price: 3},
	}}
	data := demoData(c, sales.DefaultCutover)

	assert.Len(t, data.Daily, 2*(demoDays+1))
	assert.Len(t, data.Predictions["P1"], demoDays)
	assert.Len(t, data.Predictions["Books"], demoDays)
	assert.Equal(t, sales.DefaultCutover.AddDays(1), data.Predictions["P2"][0].Date)

	agg, err := sales.NewAggregator(sales.Options{
		Analytics:   salesapi.NewMockClient(data),
		Predictions: salesapi.NewMockClient(data),
	})
	require.NoError(t, err)
	result, err := agg.Fetch(t.Context(), sales.Query{
		SellerID:  "S1",
		ProductID: "P1",
		StartDate: sales.DefaultCutover.AddDays(-2),
		EndDate:   sales.DefaultCutover.AddDays(2),
	})
	require.NoError(t, err)
	assert.Len(t, result.Points, 5)
}
