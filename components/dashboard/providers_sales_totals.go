package dashboard

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

const (
	historicalTotalName = "Historical Total"
	predictedTotalName  = "Predicted Total"
)

// SalesTotalsProvider renders the summed historical and predicted quantity
// of the query window as a bar chart, one bar group per product.
type SalesTotalsProvider struct {
	fetcher  sales.Fetcher
	renderer *EChartsProvider
}

// NewSalesTotalsProvider builds a totals provider. A nil renderer falls back
// to a default bar chart.
func NewSalesTotalsProvider(fetcher sales.Fetcher, renderer *EChartsProvider) *SalesTotalsProvider {
	if renderer == nil {
		renderer = NewEChartsProvider("bar")
	}
	return &SalesTotalsProvider{fetcher: fetcher, renderer: renderer}
}

func (p *SalesTotalsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("sales totals provider: fetcher is required")
	}
	query, err := QueryFromConfig(meta.Instance.Configuration)
	if err != nil {
		return nil, err
	}
	result, err := p.fetcher.Fetch(ctx, query)
	failed, err := partialFailures(err)
	if err != nil {
		return nil, fmt.Errorf("sales totals provider: %w", err)
	}

	perProduct := query.Mode() == sales.ModeTopN
	spec := BuildSalesTotals(result.Points, perProduct, totalsLabel(query))
	spec.Title = "Total quantity"
	spec.Subtitle = selectorLabel(query)
	spec.Theme = stringValue(NormalizeConfig(meta.Instance.Configuration)["theme"], "")

	var data WidgetData
	if len(spec.Series) == 0 {
		data = WidgetData{"title": spec.Title, "subtitle": spec.Subtitle, "empty": true}
	} else if data, err = p.renderer.Render(ctx, hashKey(spec), spec); err != nil {
		return nil, err
	}
	data["generation"] = result.Generation
	if len(failed) > 0 {
		data["failed_products"] = failed
	}
	return data, nil
}

// BuildSalesTotals sums quantities per kind. With perProduct every product
// gets its own axis entry; otherwise all points are summed under label. A
// product with no points of a kind shows a gap for that kind.
func BuildSalesTotals(points []sales.SalesPoint, perProduct bool, label string) ChartSpec {
	if len(points) == 0 {
		return ChartSpec{}
	}
	axis := []string{label}
	if perProduct {
		axis = (sales.Result{Points: points}).ProductIDs()
	}
	index := make(map[string]int, len(axis))
	for i, id := range axis {
		index[id] = i
	}

	historical := make([]ChartPoint, len(axis))
	predicted := make([]ChartPoint, len(axis))
	for i, name := range axis {
		historical[i] = ChartPoint{Label: name, Missing: true}
		predicted[i] = ChartPoint{Label: name, Missing: true}
	}
	for _, p := range points {
		key := label
		if perProduct {
			key = p.ProductID
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		row := historical
		if p.Kind == sales.KindPrediction {
			row = predicted
		}
		row[i].Value += p.Quantity
		row[i].Missing = false
	}
	return ChartSpec{
		XAxis: axis,
		Series: []ChartSeries{
			{Name: historicalTotalName, Points: historical},
			{Name: predictedTotalName, Points: predicted},
		},
	}
}

func totalsLabel(q sales.Query) string {
	switch q.Mode() {
	case sales.ModeProduct:
		return q.ProductID
	case sales.ModeCategory:
		return q.Category
	}
	return q.SellerID
}
