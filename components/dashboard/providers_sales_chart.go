package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

const (
	historicalSeriesName = "Historical Sales"
	predictedSeriesName  = "Predicted Sales"
)

// SalesChartProvider turns a sales query into an ECharts line chart with
// one historical and one predicted series per product.
type SalesChartProvider struct {
	fetcher  sales.Fetcher
	renderer *EChartsProvider
}

// NewSalesChartProvider builds a provider backed by the given fetcher.
func NewSalesChartProvider(fetcher sales.Fetcher, renderer *EChartsProvider) *SalesChartProvider {
	if renderer == nil {
		renderer = NewEChartsProvider("line")
	}
	return &SalesChartProvider{fetcher: fetcher, renderer: renderer}
}

// Fetch runs the query from the widget configuration and renders the chart.
// Isolated prediction failures still render; the failed product ids are
// listed under "failed_products".
func (p *SalesChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("sales chart provider: fetcher is required")
	}
	query, err := QueryFromConfig(meta.Instance.Configuration)
	if err != nil {
		return nil, err
	}
	result, err := p.fetcher.Fetch(ctx, query)
	failed, err := partialFailures(err)
	if err != nil {
		return nil, fmt.Errorf("sales chart provider: %w", err)
	}

	spec := BuildSalesChart(result.Points, query.Mode() == sales.ModeTopN)
	spec.Title = fmt.Sprintf("Sales for %s", query.SellerID)
	spec.Subtitle = selectorLabel(query)
	spec.Theme = stringValue(NormalizeConfig(meta.Instance.Configuration)["theme"], "")

	var data WidgetData
	if len(spec.Series) == 0 {
		data = WidgetData{"title": spec.Title, "subtitle": spec.Subtitle, "empty": true}
	} else if data, err = p.renderer.Render(ctx, hashKey(spec), spec); err != nil {
		return nil, err
	}
	data["points"] = result.Points
	data["generation"] = result.Generation
	if len(failed) > 0 {
		data["failed_products"] = failed
	}
	return data, nil
}

// BuildSalesChart lays the points out on a shared date axis. Each series
// has one entry per axis date; dates without a point are gaps. Quantities of
// the same series and date are summed.
func BuildSalesChart(points []sales.SalesPoint, perProduct bool) ChartSpec {
	axis := make([]string, 0, len(points))
	index := make(map[sales.Day]int, len(points))
	for _, p := range points {
		if _, ok := index[p.Date]; ok {
			continue
		}
		index[p.Date] = len(axis)
		axis = append(axis, p.Date.Display())
	}

	type seriesKey struct {
		product string
		kind    sales.Kind
	}
	var keys []seriesKey
	if perProduct {
		for _, id := range (sales.Result{Points: points}).ProductIDs() {
			keys = append(keys, seriesKey{id, sales.KindHistorical}, seriesKey{id, sales.KindPrediction})
		}
	} else if len(points) > 0 {
		keys = []seriesKey{{"", sales.KindHistorical}, {"", sales.KindPrediction}}
	}

	values := make(map[seriesKey][]ChartPoint, len(keys))
	for _, key := range keys {
		row := make([]ChartPoint, len(axis))
		for i := range row {
			row[i] = ChartPoint{Label: axis[i], Missing: true}
		}
		values[key] = row
	}
	for _, p := range points {
		key := seriesKey{kind: p.Kind}
		if perProduct {
			key.product = p.ProductID
		}
		row, ok := values[key]
		if !ok {
			continue
		}
		cell := &row[index[p.Date]]
		cell.Value += p.Quantity
		cell.Missing = false
	}

	series := make([]ChartSeries, 0, len(keys))
	for _, key := range keys {
		name := historicalSeriesName
		if key.kind == sales.KindPrediction {
			name = predictedSeriesName
		}
		if key.product != "" {
			name = key.product + " " + name
		}
		series = append(series, ChartSeries{Name: name, Points: values[key]})
	}
	return ChartSpec{XAxis: axis, Series: series}
}

func selectorLabel(q sales.Query) string {
	var selector string
	switch q.Mode() {
	case sales.ModeTopN:
		selector = fmt.Sprintf("Top %d products", q.TopN)
	case sales.ModeProduct:
		selector = q.ProductID
	case sales.ModeCategory:
		selector = q.Category
	}
	if q.TimeRange != "" {
		return fmt.Sprintf("%s, next %s", selector, q.TimeRange)
	}
	return fmt.Sprintf("%s, %s - %s", selector, q.StartDate.Display(), q.EndDate.Display())
}

// partialFailures separates isolated prediction failures from fatal errors.
func partialFailures(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var partial *sales.PartialError
	if !errors.As(err, &partial) {
		return nil, err
	}
	ids := make([]string, len(partial.Failures))
	for i, f := range partial.Failures {
		ids[i] = f.ProductID
	}
	return ids, nil
}
