package salesapi

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// RetryPolicy bounds retries of transient backend failures. A zero value
// disables retries.
type RetryPolicy struct {
	Retries         uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries transient failures twice with jittered backoff.
// Callers opt in; a zero RetryPolicy sends each backend call exactly once.
var DefaultRetryPolicy = RetryPolicy{
	Retries:         2,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     time.Second,
}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.Retries), ctx)
}

// NewAnalyticsRepository adapts an analytics client for the aggregator.
func NewAnalyticsRepository(client sales.AnalyticsSource, policy RetryPolicy) sales.AnalyticsSource {
	return &analyticsRepository{client: client, policy: policy}
}

type analyticsRepository struct {
	client sales.AnalyticsSource
	policy RetryPolicy
}

func (r *analyticsRepository) FetchAnalytics(ctx context.Context, query sales.AnalyticsQuery) (sales.AnalyticsReport, error) {
	return retry(ctx, r.policy, func() (sales.AnalyticsReport, error) {
		return r.client.FetchAnalytics(ctx, query)
	})
}

// NewPredictionRepository adapts a prediction client for the aggregator.
func NewPredictionRepository(client sales.PredictionSource, policy RetryPolicy) sales.PredictionSource {
	return &predictionRepository{client: client, policy: policy}
}

type predictionRepository struct {
	client sales.PredictionSource
	policy RetryPolicy
}

func (r *predictionRepository) FetchPrediction(ctx context.Context, query sales.PredictionQuery) (sales.PredictionReport, error) {
	return retry(ctx, r.policy, func() (sales.PredictionReport, error) {
		return r.client.FetchPrediction(ctx, query)
	})
}

// retry re-runs op while it fails with sales.ErrTransport.
func retry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	if policy.Retries == 0 {
		return op()
	}
	return backoff.RetryWithData(func() (T, error) {
		out, err := op()
		if err != nil && !errors.Is(err, sales.ErrTransport) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, policy.backoff(ctx))
}
