package sales

import (
	"cmp"
	"slices"
)

// TagHistorical converts analytics rows into historical points.
func TagHistorical(records []HistoricalRecord) []SalesPoint {
	points := make([]SalesPoint, len(records))
	for i, r := range records {
		points[i] = SalesPoint{
			Date:      r.Date,
			Quantity:  r.Quantity,
			Kind:      KindHistorical,
			ProductID: r.ProductID,
		}
	}
	return points
}

// TagPredictions converts forecast rows into prediction points for productID.
func TagPredictions(productID string, records []PredictedRecord) []SalesPoint {
	points := make([]SalesPoint, len(records))
	for i, r := range records {
		points[i] = SalesPoint{
			Date:      r.Date,
			Quantity:  r.Quantity,
			Kind:      KindPrediction,
			ProductID: productID,
		}
	}
	return points
}

// Merge concatenates the groups in order and stable-sorts by date, so points
// sharing a date keep their arrival order.
func Merge(groups ...[]SalesPoint) []SalesPoint {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]SalesPoint, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	slices.SortStableFunc(out, func(a, b SalesPoint) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// SortDescending returns a copy of points ordered newest first, stable on ties.
func SortDescending(points []SalesPoint) []SalesPoint {
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(a, b SalesPoint) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return out
}
