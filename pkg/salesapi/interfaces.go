package salesapi

import "github.com/goliatone/go-sales-dashboard/components/sales"

// Client is a convenience union for backends that serve both sales endpoints.
type Client interface {
	sales.AnalyticsSource
	sales.PredictionSource
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
