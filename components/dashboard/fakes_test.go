package dashboard

import (
	"context"
	"sync"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

type stubFetcher struct {
	mu      sync.Mutex
	result  sales.Result
	err     error
	queries []sales.Query
	// block, when set, holds Fetch until it is closed. blockProduct limits
	// blocking to queries for that product.
	block        chan struct{}
	blockProduct string
}

func (f *stubFetcher) Fetch(ctx context.Context, q sales.Query) (sales.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block := f.block
	if f.blockProduct != "" && q.ProductID != f.blockProduct {
		block = nil
	}
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return sales.Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *stubFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

type recordingHook struct {
	mu      sync.Mutex
	updates []SalesUpdate
}

func (h *recordingHook) SalesUpdated(_ context.Context, update SalesUpdate) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, update)
	return nil
}

func point(y, m, d int, qty float64, kind sales.Kind, product string) sales.SalesPoint {
	return sales.SalesPoint{Date: sales.DayFromParts(y, m, d), Quantity: qty, Kind: kind, ProductID: product}
}

func samplePoints() []sales.SalesPoint {
	return []sales.SalesPoint{
		point(2025, 5, 23, 4, sales.KindHistorical, "P1"),
		point(2025, 5, 24, 6, sales.KindHistorical, "P1"),
		point(2025, 5, 25, 7, sales.KindPrediction, ""),
		point(2025, 5, 26, 8, sales.KindPrediction, ""),
	}
}

func sampleConfig() map[string]any {
	return map[string]any{
		"seller_id":  "S1",
		"product_id": "P1",
		"start_date": "2025-05-23",
		"end_date":   "2025-05-26",
	}
}
