package salesapi

import (
	"context"
	"slices"
	"sync"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	// Daily is returned by FetchAnalytics, filtered to the requested window
	// and product. In top-N mode the product filter is skipped.
	Daily []sales.HistoricalRecord
	// Predictions are keyed by product id, or by category for category mode.
	Predictions map[string][]sales.PredictedRecord
	// Errors force FetchPrediction to fail for the keyed product id.
	Errors map[string]error
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex

	analyticsCalls  []sales.AnalyticsQuery
	predictionCalls []sales.PredictionQuery
}

// NewMockClient builds a mock sales client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchAnalytics returns the fixture rows inside the requested window.
func (c *MockClient) FetchAnalytics(_ context.Context, query sales.AnalyticsQuery) (sales.AnalyticsReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyticsCalls = append(c.analyticsCalls, query)

	report := sales.AnalyticsReport{
		SellerID:   query.SellerID,
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		DailySales: make([]sales.HistoricalRecord, 0),
	}
	totals := map[string]float64{}
	for _, rec := range c.data.Daily {
		if rec.Date < query.StartDate || rec.Date > query.EndDate {
			continue
		}
		if query.TopN == 0 && query.ProductID != "" && rec.ProductID != query.ProductID {
			continue
		}
		report.DailySales = append(report.DailySales, rec)
		totals[rec.ProductID] += rec.Quantity
	}
	for _, id := range sortedKeys(totals) {
		report.TotalSummary = append(report.TotalSummary, sales.HistoricalRecord{ProductID: id, Quantity: totals[id]})
	}
	return report, nil
}

// FetchPrediction returns the fixture forecast inside the requested window.
func (c *MockClient) FetchPrediction(_ context.Context, query sales.PredictionQuery) (sales.PredictionReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predictionCalls = append(c.predictionCalls, query)

	key := query.ProductID
	if key == "" {
		key = query.Category
	}
	if err := c.data.Errors[key]; err != nil {
		return sales.PredictionReport{}, err
	}
	report := sales.PredictionReport{
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Predictions: make([]sales.PredictedRecord, 0),
	}
	for _, rec := range c.data.Predictions[key] {
		if rec.Date < query.StartDate || rec.Date > query.EndDate {
			continue
		}
		report.Predictions = append(report.Predictions, rec)
		report.TotalQuantity += rec.Quantity
	}
	report.TotalDays = len(report.Predictions)
	return report, nil
}

// AnalyticsCalls returns a copy of the analytics queries received so far.
func (c *MockClient) AnalyticsCalls() []sales.AnalyticsQuery {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.analyticsCalls)
}

// PredictionCalls returns a copy of the prediction queries received so far.
func (c *MockClient) PredictionCalls() []sales.PredictionQuery {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.predictionCalls)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
