package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

func TestBuildSalesTotalsSingleGroup(t *testing.T) {
	spec := BuildSalesTotals(samplePoints(), false, "P1")

	assert.Equal(t, []string{"P1"}, spec.XAxis)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, historicalTotalName, spec.Series[0].Name)
	assert.Equal(t, predictedTotalName, spec.Series[1].Name)
	assert.False(t, spec.Series[0].Points[0].Missing)
	assert.False(t, spec.Series[1].Points[0].Missing)
}

func TestBuildSalesTotalsPerProduct(t *testing.T) {
	points := []sales.SalesPoint{
		point(2025, 5, 23, 2, sales.KindHistorical, "P1"),
		point(2025, 5, 24, 3, sales.KindHistorical, "P1"),
		point(2025, 5, 24, 7, sales.KindHistorical, "P2"),
		point(2025, 5, 25, 4, sales.KindPrediction, "P1"),
	}
	spec := BuildSalesTotals(points, true, "S1")

	assert.Equal(t, []string{"P1", "P2"}, spec.XAxis)
	historical, predicted := spec.Series[0].Points, spec.Series[1].Points
	assert.Equal(t, 5.0, historical[0].Value)
	assert.Equal(t, 7.0, historical[1].Value)
	assert.Equal(t, 4.0, predicted[0].Value)
	assert.True(t, predicted[1].Missing)
}

func TestBuildSalesTotalsEmpty(t *testing.T) {
	assert.Empty(t, BuildSalesTotals(nil, false, "P1").Series)
}

func TestSalesTotalsProviderRendersBarChart(t *testing.T) {
	fetcher := &stubFetcher{result: sales.Result{Points: samplePoints(), Generation: 2}}
	provider := NewSalesTotalsProvider(fetcher, NewEChartsProvider("bar", WithChartCache(nil)))

	data, err := provider.Fetch(context.Background(), WidgetContext{
		Instance: WidgetInstance{ID: "totals", DefinitionID: SalesTotalsWidget, Configuration: sampleConfig()},
	})
	require.NoError(t, err)
	assert.Equal(t, "bar", data["chart_type"])
	assert.Equal(t, "Total quantity", data["title"])
	assert.Equal(t, uint64(2), data["generation"])
	assert.Contains(t, data["chart_html"], historicalTotalName)
}

func TestSalesTotalsProviderPartialAndErrors(t *testing.T) {
	partial := &sales.PartialError{Failures: []sales.PredictionFailure{{ProductID: "P2", Err: sales.ErrTransport}}}
	provider := NewSalesTotalsProvider(&stubFetcher{result: sales.Result{Points: samplePoints()}, err: partial}, NewEChartsProvider("bar", WithChartCache(nil)))
	data, err := provider.Fetch(context.Background(), WidgetContext{Instance: WidgetInstance{Configuration: sampleConfig()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, data["failed_products"])

	empty := NewSalesTotalsProvider(&stubFetcher{}, nil)
	data, err = empty.Fetch(context.Background(), WidgetContext{Instance: WidgetInstance{Configuration: sampleConfig()}})
	require.NoError(t, err)
	assert.Equal(t, true, data["empty"])

	failing := NewSalesTotalsProvider(&stubFetcher{err: sales.ErrTransport}, nil)
	_, err = failing.Fetch(context.Background(), WidgetContext{Instance: WidgetInstance{Configuration: sampleConfig()}})
	assert.ErrorIs(t, err, sales.ErrTransport)
}
