package service

import "github.com/gramsight/dashboard/internal/core/domain"

// Static values shown when a source fails or returns nothing usable. Each
// call returns fresh slices so callers may not alias the defaults.

func fallbackRisk() domain.RiskView {
	return domain.RiskView{Score: 72, Category: domain.RiskHigh, Explanation: "Live risk data unavailable; showing a reference estimate."}
}

func fallbackWeather() domain.WeatherView {
	return domain.WeatherView{
		Labels:      []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		Temperature: []float64{28, 31, 33, 30, 27},
		Rainfall:    []float64{5, 12, 2, 0, 8},
		Humidity:    []float64{65, 72, 58, 54, 68},
		AvgTemp:     29.8,
	}
}

func fallbackMarket() domain.MarketView {
	prices := []int{2200, 2180, 2250, 2300, 2280}
	return domain.MarketView{
		Crop:      "Rice",
		Labels:    []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"},
		Prices:    prices,
		ChangePct: changePct(prices),
		Trend:     trend(prices),
	}
}

func fallbackSoil() domain.SoilView {
	ph := 6.5
	values := map[string]float64{"nitrogen": 65, "phosphorus": 42, "potassium": 72, "moisture": 38}
	v := domain.SoilView{PH: &ph}
	for _, spec := range soilSpecs {
		val := values[spec.key]
		v.Indicators = append(v.Indicators, domain.SoilIndicator{
			Key:     spec.key,
			Label:   spec.label,
			Unit:    spec.unit,
			Value:   val,
			Status:  soilStatus(val, spec.low, spec.high),
			Present: true,
		})
	}
	return v
}

func fallbackAdvisory() domain.AdvisoryView {
	return domain.AdvisoryView{Items: []string{
		"Increase watering frequency: rising temperatures and low rainfall forecast for the next 3 days.",
		"Rice prices trending upward (+2.4%); consider holding current stock for 1-2 more weeks before selling.",
		"Apply organic mulch to retain soil moisture. Current nitrogen levels are adequate, but phosphorus is low.",
		"Monitor weather alerts closely, dry spell expected. Plan irrigation schedules accordingly.",
	}}
}

func fallbackVillages() []domain.Village {
	return []domain.Village{
		{ID: "1", Name: "Rajpur", District: "Pune", RiskScore: 72, Crop: "Rice"},
		{ID: "2", Name: "Devgad", District: "Sindhudurg", RiskScore: 45, Crop: "Mango"},
		{ID: "3", Name: "Malshiras", District: "Solapur", RiskScore: 83, Crop: "Sugarcane"},
		{ID: "4", Name: "Kothrud", District: "Pune", RiskScore: 28, Crop: "Wheat"},
		{ID: "5", Name: "Sinhagad", District: "Pune", RiskScore: 56, Crop: "Soybean"},
		{ID: "6", Name: "Baramati", District: "Pune", RiskScore: 91, Crop: "Sugarcane"},
		{ID: "7", Name: "Pandharpur", District: "Solapur", RiskScore: 67, Crop: "Jowar"},
		{ID: "8", Name: "Wai", District: "Satara", RiskScore: 34, Crop: "Strawberry"},
	}
}
