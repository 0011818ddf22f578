package salesapi

import (
	"fmt"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

type analyticsRequest struct {
	SellerID  string `json:"sellerId"`
	ProductID string `json:"productId,omitempty"`
	Category  string `json:"category,omitempty"`
	TopN      int    `json:"topN,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func newAnalyticsRequest(q sales.AnalyticsQuery) analyticsRequest {
	return analyticsRequest{
		SellerID:  q.SellerID,
		ProductID: q.ProductID,
		Category:  q.Category,
		TopN:      q.TopN,
		StartTime: q.StartDate.String(),
		EndTime:   q.EndDate.String(),
	}
}

// productSales mirrors one row of dailyProductSales / totalSummary. Summary
// rows carry the literal date "total", so the date stays a string here.
type productSales struct {
	ProductID    string   `json:"productId"`
	Quantity     float64  `json:"quantity"`
	Date         string   `json:"date"`
	TotalRevenue *float64 `json:"totalRevenue,omitempty"`
}

type analyticsResponse struct {
	DailyProductSales *[]productSales `json:"dailyProductSales"`
	TotalSummary      []productSales  `json:"totalSummary"`
	StartTime         *sales.Day      `json:"startTime"`
	EndTime           *sales.Day      `json:"endTime"`
	SellerID          string          `json:"sellerId"`
	ProductID         string          `json:"productId"`
	Category          *string         `json:"category"`
	TopN              *int            `json:"topN"`
}

func (r analyticsResponse) toReport() (sales.AnalyticsReport, error) {
	if r.DailyProductSales == nil {
		return sales.AnalyticsReport{}, fmt.Errorf("%w: salesapi: analytics response missing dailyProductSales", sales.ErrMalformedResponse)
	}
	daily := make([]sales.HistoricalRecord, 0, len(*r.DailyProductSales))
	for i, row := range *r.DailyProductSales {
		date, err := sales.ParseDay(row.Date)
		if err != nil {
			return sales.AnalyticsReport{}, fmt.Errorf("%w: salesapi: dailyProductSales[%d]: %v", sales.ErrMalformedResponse, i, err)
		}
		daily = append(daily, row.toRecord(date))
	}
	summary := make([]sales.HistoricalRecord, 0, len(r.TotalSummary))
	for _, row := range r.TotalSummary {
		summary = append(summary, row.toRecord(0))
	}
	report := sales.AnalyticsReport{
		DailySales:   daily,
		TotalSummary: summary,
		SellerID:     r.SellerID,
	}
	if r.StartTime != nil {
		report.StartDate = *r.StartTime
	}
	if r.EndTime != nil {
		report.EndDate = *r.EndTime
	}
	return report, nil
}

func (p productSales) toRecord(date sales.Day) sales.HistoricalRecord {
	rec := sales.HistoricalRecord{
		ProductID: p.ProductID,
		Quantity:  p.Quantity,
		Date:      date,
	}
	if p.TotalRevenue != nil {
		rec.TotalRevenue = *p.TotalRevenue
	}
	return rec
}

type predictionRequest struct {
	ProductID string `json:"productId"`
	SellerID  string `json:"sellerId"`
	Category  string `json:"category,omitempty"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func newPredictionRequest(q sales.PredictionQuery) predictionRequest {
	return predictionRequest{
		ProductID: q.ProductID,
		SellerID:  q.SellerID,
		Category:  q.Category,
		StartDate: q.StartDate.String(),
		EndDate:   q.EndDate.String(),
	}
}

type prediction struct {
	Date     *sales.Day `json:"date"`
	Quantity float64    `json:"quantity"`
}

// predictionResponse keeps the backend's "predicationList" spelling.
type predictionResponse struct {
	PredicationList *[]prediction `json:"predicationList"`
	StartDate       *sales.Day    `json:"startDate"`
	EndDate         *sales.Day    `json:"endDate"`
	TotalQuantity   float64       `json:"totalQuantity"`
	TotalDays       int           `json:"totalDays"`
}

func (r predictionResponse) toReport() (sales.PredictionReport, error) {
	if r.PredicationList == nil {
		return sales.PredictionReport{}, fmt.Errorf("%w: salesapi: prediction response missing predicationList", sales.ErrMalformedResponse)
	}
	out := make([]sales.PredictedRecord, 0, len(*r.PredicationList))
	for i, item := range *r.PredicationList {
		if item.Date == nil {
			return sales.PredictionReport{}, fmt.Errorf("%w: salesapi: predicationList[%d] missing date", sales.ErrMalformedResponse, i)
		}
		out = append(out, sales.PredictedRecord{Date: *item.Date, Quantity: item.Quantity})
	}
	report := sales.PredictionReport{
		Predictions:   out,
		TotalQuantity: r.TotalQuantity,
		TotalDays:     r.TotalDays,
	}
	if r.StartDate != nil {
		report.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		report.EndDate = *r.EndDate
	}
	return report, nil
}
