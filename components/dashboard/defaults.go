package dashboard

import "github.com/goliatone/go-sales-dashboard/components/sales"

// Widget codes registered by RegisterSalesWidgets.
const (
	SalesChartWidget  = "sales.widget.chart"
	SalesTableWidget  = "sales.widget.table"
	SalesTotalsWidget = "sales.widget.totals"
)

// salesFilterProperties is the JSON schema of the filter panel shared by the
// sales widgets.
func salesFilterProperties() map[string]any {
	date := map[string]any{
		"type":    "string",
		"pattern": `^\d{4}[-/]\d{1,2}[-/]\d{1,2}`,
	}
	return map[string]any{
		cfgSellerID:  map[string]any{"type": "string", "minLength": 1},
		cfgProductID: map[string]any{"type": "string"},
		cfgCategory:  map[string]any{"type": "string"},
		cfgTopN:      map[string]any{"type": "integer", "minimum": 0, "maximum": 1000},
		cfgStartDate: date,
		cfgEndDate:   date,
		cfgTimeRange: map[string]any{"type": "string", "enum": []string{"", "week", "month", "year"}},
		"theme":      map[string]any{"type": "string"},
	}
}

// SalesWidgetDefinitions describes the chart, table and totals widgets.
func SalesWidgetDefinitions() []WidgetDefinition {
	chartProps := salesFilterProperties()
	tableProps := salesFilterProperties()
	tableProps[cfgPage] = map[string]any{"type": "integer", "minimum": 1}
	tableProps[cfgPageSize] = map[string]any{"type": "integer", "minimum": 1, "maximum": maxPageSize}
	return []WidgetDefinition{
		{
			Code:        SalesChartWidget,
			Name:        "Sales Chart",
			Description: "Historical and predicted sales on one timeline",
			Category:    "sales",
			Schema: map[string]any{
				"type":       "object",
				"required":   []string{cfgSellerID},
				"properties": chartProps,
			},
		},
		{
			Code:        SalesTableWidget,
			Name:        "Sales Data",
			Description: "Merged sales points, newest first",
			Category:    "sales",
			Schema: map[string]any{
				"type":       "object",
				"required":   []string{cfgSellerID},
				"properties": tableProps,
			},
		},
		{
			Code:        SalesTotalsWidget,
			Name:        "Sales Totals",
			Description: "Total historical and predicted quantity per product",
			Category:    "sales",
			Schema: map[string]any{
				"type":       "object",
				"required":   []string{cfgSellerID},
				"properties": salesFilterProperties(),
			},
		},
	}
}

// RegisterSalesWidgets registers the sales widgets and their providers. The
// totals widget renders as a bar chart sharing chart's cache and theme.
func RegisterSalesWidgets(reg *Registry, fetcher sales.Fetcher, chart *EChartsProvider) error {
	var bars *EChartsProvider
	if chart != nil {
		bars = chart.WithType("bar")
	}
	providers := map[string]Provider{
		SalesChartWidget:  NewSalesChartProvider(fetcher, chart),
		SalesTableWidget:  NewSalesTableProvider(fetcher),
		SalesTotalsWidget: NewSalesTotalsProvider(fetcher, bars),
	}
	for _, def := range SalesWidgetDefinitions() {
		if err := reg.RegisterDefinition(def); err != nil {
			return err
		}
		if err := reg.RegisterProvider(def.Code, providers[def.Code]); err != nil {
			return err
		}
	}
	return nil
}
