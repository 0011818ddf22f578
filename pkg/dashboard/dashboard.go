// Package dashboard is the public entry point for embedding the sales
// dashboard in another application.
package dashboard

import (
	core "github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/pkg/salesapi"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) (*Service, error) {
	return core.NewService(opts)
}

// NewForClient wires an aggregator over client and a dashboard service on
// top of it. Backend calls are retried per policy.
func NewForClient(client salesapi.Client, policy salesapi.RetryPolicy, opts sales.Options, dashOpts Options) (*Service, error) {
	opts.Analytics = salesapi.NewAnalyticsRepository(client, policy)
	opts.Predictions = salesapi.NewPredictionRepository(client, policy)
	agg, err := sales.NewAggregator(opts)
	if err != nil {
		return nil, err
	}
	dashOpts.Fetcher = agg
	return core.NewService(dashOpts)
}
