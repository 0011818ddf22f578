package main

import (
	"math"

	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
	"github.com/goliatone/go-sales-dashboard/pkg/salesapi"
)

const demoDays = 60

// demoData builds deterministic history before the cutover and forecasts
// after it for every catalogue product and category.
func demoData(c *catalog.Catalog, cutover sales.Day) salesapi.MockData {
	data := salesapi.MockData{Predictions: map[string][]sales.PredictedRecord{}}
	categories := map[string]int{}
	for i, p := range c.Products {
		base := float64(10 + 7*i)
		for d := -demoDays; d <= 0; d++ {
			data.Daily = append(data.Daily, sales.HistoricalRecord{
				ProductID:    p.ID,
				Date:         cutover.AddDays(d),
				Quantity:     demoQuantity(base, d),
				TotalRevenue: demoQuantity(base, d) * p.Price,
			})
		}
		forecast := make([]sales.PredictedRecord, 0, demoDays)
		for d := 1; d <= demoDays; d++ {
			forecast = append(forecast, sales.PredictedRecord{Date: cutover.AddDays(d), Quantity: demoQuantity(base, d)})
		}
		data.Predictions[p.ID] = forecast
		categories[p.Category]++
	}
	for category, n := range categories {
		forecast := make([]sales.PredictedRecord, 0, demoDays)
		for d := 1; d <= demoDays; d++ {
			forecast = append(forecast, sales.PredictedRecord{Date: cutover.AddDays(d), Quantity: demoQuantity(float64(12*n), d)})
		}
		data.Predictions[category] = forecast
	}
	return data
}

func demoQuantity(base float64, day int) float64 {
	return math.Round(base + base/3*math.Sin(float64(day)/4))
}
