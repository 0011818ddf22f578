package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// SalesQuery exposes the aggregator to transports as a go-command Querier.
type SalesQuery struct {
	fetcher sales.Fetcher
}

// NewSalesQuery builds the query.
func NewSalesQuery(fetcher sales.Fetcher) *SalesQuery {
	return &SalesQuery{fetcher: fetcher}
}

var _ gocommand.Querier[sales.Query, sales.Result] = (*SalesQuery)(nil)

// Query returns the merged points. Under isolated failures the partial
// result comes back together with a *sales.PartialError.
func (q *SalesQuery) Query(ctx context.Context, query sales.Query) (sales.Result, error) {
	return q.fetcher.Fetch(ctx, query)
}
