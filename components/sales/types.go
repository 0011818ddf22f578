package sales

import "context"

// Kind labels where a point came from.
type Kind string

const (
	KindHistorical Kind = "historical"
	KindPrediction Kind = "prediction"
)

// SalesPoint is one labeled quantity on the merged timeline.
type SalesPoint struct {
	Date      Day     `json:"date"`
	Quantity  float64 `json:"quantity"`
	Kind      Kind    `json:"type"`
	ProductID string  `json:"productId,omitempty"`
}

// Mode selects how a Query is resolved against the backend.
type Mode string

const (
	ModeProduct  Mode = "product"
	ModeCategory Mode = "category"
	ModeTopN     Mode = "top_n"
)

// Query is the immutable filter built by the UI layer for one fetch.
type Query struct {
	SellerID  string `json:"sellerId" validate:"required"`
	ProductID string `json:"productId,omitempty"`
	Category  string `json:"category,omitempty"`
	TopN      int    `json:"topN,omitempty" validate:"gte=0,lte=1000"`
	StartDate Day    `json:"startDate"`
	EndDate   Day    `json:"endDate"`
	// TimeRange overrides Start/End with a window starting today.
	TimeRange TimeRange `json:"timeRange,omitempty" validate:"omitempty,oneof=week month year"`
}

// Mode reports the effective query mode. TopN wins over ProductID, which
// wins over Category.
func (q Query) Mode() Mode {
	switch {
	case q.TopN > 0:
		return ModeTopN
	case q.ProductID != "":
		return ModeProduct
	case q.Category != "":
		return ModeCategory
	default:
		return ""
	}
}

// AnalyticsQuery is the request sent to the analytics endpoint.
type AnalyticsQuery struct {
	SellerID  string
	ProductID string
	Category  string
	TopN      int
	StartDate Day
	EndDate   Day
}

// PredictionQuery is the request sent to the prediction endpoint, one per
// predicted product (or category).
type PredictionQuery struct {
	SellerID  string
	ProductID string
	Category  string
	StartDate Day
	EndDate   Day
}

// HistoricalRecord is one daily sales row returned by the analytics endpoint.
type HistoricalRecord struct {
	ProductID    string
	Quantity     float64
	Date         Day
	TotalRevenue float64
}

// AnalyticsReport is the decoded analytics response.
type AnalyticsReport struct {
	DailySales   []HistoricalRecord
	TotalSummary []HistoricalRecord
	SellerID     string
	StartDate    Day
	EndDate      Day
}

// PredictedRecord is one forecast day.
type PredictedRecord struct {
	Date     Day
	Quantity float64
}

// PredictionReport is the decoded prediction response.
type PredictionReport struct {
	Predictions   []PredictedRecord
	StartDate     Day
	EndDate       Day
	TotalQuantity float64
	TotalDays     int
}

// AnalyticsSource fetches historical sales.
type AnalyticsSource interface {
	FetchAnalytics(ctx context.Context, query AnalyticsQuery) (AnalyticsReport, error)
}

// PredictionSource fetches predicted sales for one product.
type PredictionSource interface {
	FetchPrediction(ctx context.Context, query PredictionQuery) (PredictionReport, error)
}

// Fetcher is the aggregator contract consumed by presentation layers.
type Fetcher interface {
	Fetch(ctx context.Context, query Query) (Result, error)
}

// Result is the merged output of one fetch.
type Result struct {
	Points     []SalesPoint        `json:"points"`
	Failures   []PredictionFailure `json:"-"`
	Generation uint64              `json:"generation,omitempty"`
}

// ProductIDs lists the distinct product ids present in the points, in order
// of first appearance.
func (r Result) ProductIDs() []string {
	return distinctProducts(r.Points)
}

func distinctProducts(points []SalesPoint) []string {
	seen := make(map[string]struct{}, len(points))
	out := make([]string, 0)
	for _, p := range points {
		if p.ProductID == "" {
			continue
		}
		if _, ok := seen[p.ProductID]; ok {
			continue
		}
		seen[p.ProductID] = struct{}{}
		out = append(out, p.ProductID)
	}
	return out
}
