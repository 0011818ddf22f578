package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultCutover is the fixed boundary between the analytics and prediction
// windows observed in the demo dataset.
var DefaultCutover = DayFromParts(2025, 5, 24)

const defaultMaxConcurrency = 8

var errMissingSource = errors.New("sales: analytics and prediction sources are required")

// FailurePolicy controls how prediction failures in top-N mode are handled.
type FailurePolicy string

const (
	// FailFast fails the whole fetch when any backend call fails.
	FailFast FailurePolicy = "fail_fast"
	// IsolateFailures keeps the points of successful prediction calls and
	// reports the failed ones through PartialError.
	IsolateFailures FailurePolicy = "isolate"
)

// ParseFailurePolicy maps a configuration value to a policy.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch FailurePolicy(value) {
	case "", FailFast:
		return FailFast, nil
	case IsolateFailures:
		return IsolateFailures, nil
	default:
		return "", fmt.Errorf("sales: unknown failure policy %q", value)
	}
}

// Options configures the Aggregator.
type Options struct {
	Analytics      AnalyticsSource
	Predictions    PredictionSource
	Cutover        CutoverFunc
	Clock          Clock
	FailurePolicy  FailurePolicy
	MaxConcurrency int
	Telemetry      Telemetry
}

// Aggregator merges historical and predicted sales into one timeline.
type Aggregator struct {
	opts Options
}

// NewAggregator builds an Aggregator with safe defaults.
func NewAggregator(opts Options) (*Aggregator, error) {
	if opts.Analytics == nil || opts.Predictions == nil {
		return nil, errMissingSource
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Cutover == nil {
		opts.Cutover = FixedCutover(DefaultCutover)
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = FailFast
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Aggregator{opts: opts}, nil
}

var _ Fetcher = (*Aggregator)(nil)

// Fetch issues the analytics and prediction calls for the query and returns
// the merged, date-ordered points. Under IsolateFailures a non-nil Result may
// be returned together with a *PartialError.
func (a *Aggregator) Fetch(ctx context.Context, query Query) (Result, error) {
	if err := query.Validate(); err != nil {
		return Result{}, err
	}
	query, err := a.resolveRange(query)
	if err != nil {
		return Result{}, err
	}

	started := a.opts.Clock()
	windows := ResolveWindows(query, a.opts.Cutover())
	mode := query.Mode()

	var (
		points   []SalesPoint
		failures []PredictionFailure
	)
	if mode == ModeTopN {
		points, failures, err = a.fetchTopN(ctx, query, windows)
	} else {
		points, err = a.fetchSingle(ctx, query, windows)
	}

	payload := map[string]any{
		"request_id":  uuid.NewString(),
		"seller_id":   query.SellerID,
		"mode":        string(mode),
		"start":       query.StartDate.String(),
		"end":         query.EndDate.String(),
		"duration_ms": a.opts.Clock().Sub(started).Milliseconds(),
	}
	if err != nil {
		payload["error"] = err.Error()
		a.opts.Telemetry.Record(ctx, "sales.fetch", payload)
		return Result{}, err
	}
	payload["points"] = len(points)
	payload["failures"] = len(failures)
	a.opts.Telemetry.Record(ctx, "sales.fetch", payload)

	result := Result{Points: points, Failures: failures}
	if len(failures) > 0 {
		return result, &PartialError{Failures: failures}
	}
	return result, nil
}

func (a *Aggregator) resolveRange(q Query) (Query, error) {
	if q.TimeRange == "" {
		return q, nil
	}
	start, end, err := ApplyRange(q.TimeRange, a.opts.Clock())
	if err != nil {
		return q, err
	}
	q.StartDate, q.EndDate = start, end
	return q, nil
}

func analyticsQuery(q Query, w Windows) AnalyticsQuery {
	aq := AnalyticsQuery{
		SellerID:  q.SellerID,
		Category:  q.Category,
		TopN:      q.TopN,
		StartDate: w.AnalyticsStart,
		EndDate:   w.AnalyticsEnd,
	}
	if q.Mode() != ModeTopN {
		aq.ProductID = q.ProductID
	}
	return aq
}

func predictionQuery(q Query, w Windows, productID string) PredictionQuery {
	pq := PredictionQuery{
		SellerID:  q.SellerID,
		ProductID: productID,
		StartDate: w.PredictionStart,
		EndDate:   w.PredictionEnd,
	}
	if q.Mode() == ModeCategory {
		pq.Category = q.Category
	}
	return pq
}

// fetchSingle runs the analytics and prediction calls concurrently. Empty
// windows are not requested.
func (a *Aggregator) fetchSingle(ctx context.Context, q Query, w Windows) ([]SalesPoint, error) {
	var (
		report     AnalyticsReport
		prediction PredictionReport
	)
	g, gctx := errgroup.WithContext(ctx)
	if w.HasAnalytics() {
		g.Go(func() error {
			r, err := a.opts.Analytics.FetchAnalytics(gctx, analyticsQuery(q, w))
			if err != nil {
				return fmt.Errorf("sales: analytics: %w", err)
			}
			report = r
			return nil
		})
	}
	if w.HasPrediction() {
		g.Go(func() error {
			r, err := a.opts.Predictions.FetchPrediction(gctx, predictionQuery(q, w, q.ProductID))
			if err != nil {
				return fmt.Errorf("sales: predict %s: %w", predictionTarget(q), err)
			}
			prediction = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(
		TagHistorical(report.DailySales),
		TagPredictions(q.ProductID, prediction.Predictions),
	), nil
}

// fetchTopN runs analytics first, then one prediction per returned product.
// Products are ranked from history, so a range with no analytics window is
// empty.
func (a *Aggregator) fetchTopN(ctx context.Context, q Query, w Windows) ([]SalesPoint, []PredictionFailure, error) {
	if !w.HasAnalytics() {
		return []SalesPoint{}, nil, nil
	}
	report, err := a.opts.Analytics.FetchAnalytics(ctx, analyticsQuery(q, w))
	if err != nil {
		return nil, nil, fmt.Errorf("sales: analytics: %w", err)
	}
	historical := TagHistorical(report.DailySales)
	products := distinctProducts(historical)
	if !w.HasPrediction() {
		products = nil
	}

	predicted := make([][]SalesPoint, len(products))
	errs := make([]error, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrency)
	for i, productID := range products {
		g.Go(func() error {
			r, err := a.opts.Predictions.FetchPrediction(gctx, predictionQuery(q, w, productID))
			if err != nil {
				err = fmt.Errorf("sales: predict %s: %w", productID, err)
				if a.opts.FailurePolicy == IsolateFailures {
					errs[i] = err
					return nil
				}
				return err
			}
			predicted[i] = TagPredictions(productID, r.Predictions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failures []PredictionFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, PredictionFailure{ProductID: products[i], Err: err})
		}
	}
	groups := make([][]SalesPoint, 0, len(products)+1)
	groups = append(groups, historical)
	groups = append(groups, predicted...)
	return Merge(groups...), failures, nil
}

func predictionTarget(q Query) string {
	if q.ProductID != "" {
		return q.ProductID
	}
	return "category " + q.Category
}
