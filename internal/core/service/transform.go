package service

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// Series shapes used when a payload carries a single reading instead of a
// history. Offsets and factors reproduce the demo curves around the value.
var (
	weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	weekLabels    = []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}

	temperatureOffsets = []float64{-2, 1, 3, 0, -3}
	rainfallOffsets    = []float64{0, 7, -3, -5, 3}
	humidityOffsets    = []float64{0, 7, -7, -11, 3}
	priceFactors       = []float64{0.965, 0.956, 0.987, 1.0088, 1.0}
)

// Backend summary defaults for readings that are absent from a record.
const (
	defaultTemperature = 28
	defaultHumidity    = 60
	defaultRainfall    = 0

	highRiskThreshold = 70
)

type soilSpec struct {
	key, label, unit string
	low, high        float64
	pick             func(*ports.SoilPayload) *float64
}

var soilSpecs = []soilSpec{
	{"nitrogen", "Nitrogen (N)", "kg/ha", 40, 80, func(p *ports.SoilPayload) *float64 { return p.Nitrogen }},
	{"phosphorus", "Phosphorus (P)", "kg/ha", 30, 60, func(p *ports.SoilPayload) *float64 { return p.Phosphorus }},
	{"potassium", "Potassium (K)", "kg/ha", 50, 80, func(p *ports.SoilPayload) *float64 { return p.Potassium }},
	{"moisture", "Soil Moisture", "%", 40, 70, func(p *ports.SoilPayload) *float64 { return p.Moisture }},
}

var titleCaser = cases.Title(language.English)

// riskView reports ok=false when the payload carries no score.
func riskView(p *ports.RiskPayload) (domain.RiskView, bool) {
	if p == nil || p.Risk == nil || p.Risk.Score == nil {
		return domain.RiskView{}, false
	}
	score := clampScore(*p.Risk.Score)

	var category string
	switch {
	case p.Risk.Category != nil && *p.Risk.Category != "":
		category = *p.Risk.Category
	case p.Risk.RiskLevel != nil && *p.Risk.RiskLevel != "":
		category = *p.Risk.RiskLevel
	default:
		category = riskCategory(score)
	}

	v := domain.RiskView{Score: score, Category: strings.ToLower(category)}
	if p.Explanation != nil {
		v.Explanation = *p.Explanation
	}
	return v, true
}

func clampScore(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}

func riskCategory(score int) string {
	switch {
	case score < 40:
		return domain.RiskLow
	case score < highRiskThreshold:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

func weatherView(p *ports.WeatherPayload) (domain.WeatherView, bool) {
	if p == nil {
		return domain.WeatherView{}, false
	}

	if len(p.History) > 0 {
		n := min(len(p.History), len(weekdayLabels))
		v := domain.WeatherView{
			Labels:      append([]string(nil), weekdayLabels[:n]...),
			Temperature: make([]float64, n),
			Rainfall:    make([]float64, n),
			Humidity:    make([]float64, n),
		}
		// History is newest first; the chart reads oldest to newest.
		for i := 0; i < n; i++ {
			rec := p.History[n-1-i]
			v.Temperature[i] = round1(valueOr(rec.Temperature, defaultTemperature))
			v.Rainfall[i] = round1(valueOr(rec.Rainfall, defaultRainfall))
			v.Humidity[i] = round1(valueOr(rec.Humidity, defaultHumidity))
		}
		v.AvgTemp = round1(mean(v.Temperature))
		return v, true
	}

	if p.Weather == nil || p.Weather.Temperature == nil {
		return domain.WeatherView{}, false
	}
	v := domain.WeatherView{
		Labels:      append([]string(nil), weekdayLabels...),
		Temperature: centred(*p.Weather.Temperature, temperatureOffsets, math.Inf(-1), math.Inf(1)),
		Rainfall:    centred(valueOr(p.Weather.Precipitation, defaultRainfall), rainfallOffsets, 0, math.Inf(1)),
		Humidity:    centred(valueOr(p.Weather.Humidity, defaultHumidity), humidityOffsets, 0, 100),
	}
	v.AvgTemp = round1(mean(v.Temperature))
	return v, true
}

func centred(base float64, offsets []float64, lo, hi float64) []float64 {
	out := make([]float64, len(offsets))
	for i, off := range offsets {
		out[i] = round1(math.Max(lo, math.Min(hi, base+off)))
	}
	return out
}

func marketView(p *ports.MarketPayload) (domain.MarketView, bool) {
	if p == nil {
		return domain.MarketView{}, false
	}
	for _, m := range p.Markets {
		price := valueOr(m.Price, 0)
		if price <= 0 {
			price = valueOr(m.ModalPrice, 0)
		}
		if price <= 0 || strings.TrimSpace(m.Commodity) == "" {
			continue
		}
		prices := make([]int, len(priceFactors))
		for i, f := range priceFactors {
			prices[i] = int(math.Round(price * f))
		}
		return domain.MarketView{
			Crop:      titleCaser.String(strings.ToLower(strings.TrimSpace(m.Commodity))),
			Labels:    append([]string(nil), weekLabels...),
			Prices:    prices,
			ChangePct: changePct(prices),
			Trend:     trend(prices),
		}, true
	}
	return domain.MarketView{}, false
}

func changePct(prices []int) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	first, last := float64(prices[0]), float64(prices[len(prices)-1])
	return round1((last - first) / first * 100)
}

func trend(prices []int) string {
	if len(prices) < 2 {
		return domain.TrendStable
	}
	first, last := prices[0], prices[len(prices)-1]
	switch {
	case last > first:
		return domain.TrendRising
	case last < first:
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

// soilView reports ok=false when no indicator and no pH was reported.
func soilView(p *ports.SoilPayload) (domain.SoilView, bool) {
	if p == nil {
		return domain.SoilView{}, false
	}
	v := domain.SoilView{Indicators: make([]domain.SoilIndicator, 0, len(soilSpecs))}
	reported := p.PH != nil
	for _, spec := range soilSpecs {
		ind := domain.SoilIndicator{Key: spec.key, Label: spec.label, Unit: spec.unit, Status: "Unknown"}
		if val := spec.pick(p); val != nil {
			reported = true
			ind.Present = true
			ind.Value = round1(*val)
			ind.Status = soilStatus(*val, spec.low, spec.high)
		}
		v.Indicators = append(v.Indicators, ind)
	}
	if !reported {
		return domain.SoilView{}, false
	}
	if p.PH != nil {
		ph := round1(*p.PH)
		v.PH = &ph
	}
	return v, true
}

func soilStatus(v, low, high float64) string {
	switch {
	case v < low:
		return "Low"
	case v > high:
		return "High"
	default:
		return "Optimal"
	}
}

func advisoryView(p *ports.AdvisoryPayload) (domain.AdvisoryView, bool) {
	if p == nil {
		return domain.AdvisoryView{}, false
	}
	items := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		if s := strings.TrimSpace(it); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return domain.AdvisoryView{}, false
	}
	return domain.AdvisoryView{Items: items}, true
}

func villages(rows []ports.VillagePayload) []domain.Village {
	out := make([]domain.Village, 0, len(rows))
	for _, r := range rows {
		v := domain.Village{ID: string(r.ID), Name: r.Name}
		if r.District != nil {
			v.District = *r.District
		}
		if r.Crop != nil {
			v.Crop = *r.Crop
		}
		if r.RiskScore != nil {
			v.RiskScore = round1(*r.RiskScore)
		}
		out = append(out, v)
	}
	return out
}

// overview sorts rows by risk, highest first, and derives alerts and stats.
func overview(rows []domain.Village) ([]domain.Village, []domain.RiskAlert, domain.AdminStats) {
	sorted := append([]domain.Village(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RiskScore > sorted[j].RiskScore })

	alerts := make([]domain.RiskAlert, 0)
	var sum float64
	for _, v := range sorted {
		sum += v.RiskScore
		if v.RiskScore >= highRiskThreshold {
			alerts = append(alerts, domain.RiskAlert{
				VillageID: v.ID,
				Name:      v.Name,
				Score:     clampScore(v.RiskScore),
				Category:  domain.RiskHigh,
			})
		}
	}

	stats := domain.AdminStats{TotalVillages: len(sorted), HighRisk: len(alerts)}
	if len(sorted) > 0 {
		stats.AverageRisk = round1(sum / float64(len(sorted)))
	}
	return sorted, alerts, stats
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
