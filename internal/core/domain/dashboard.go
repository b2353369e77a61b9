package domain

import "time"

// FieldStatus tells the presentation layer where a section's value came from.
type FieldStatus string

const (
	FieldPresent  FieldStatus = "present"
	FieldFallback FieldStatus = "fallback"
	FieldMissing  FieldStatus = "missing"
)

// Field is one section of a view model.
type Field[T any] struct {
	Status FieldStatus `json:"status"`
	Value  T           `json:"value"`
}

// Present wraps a live value.
func Present[T any](v T) Field[T] { return Field[T]{Status: FieldPresent, Value: v} }

// Fallback wraps a static default value.
func Fallback[T any](v T) Field[T] { return Field[T]{Status: FieldFallback, Value: v} }

func (f Field[T]) IsPresent() bool  { return f.Status == FieldPresent }
func (f Field[T]) IsFallback() bool { return f.Status == FieldFallback }

// Populated reports whether the field carries a live or fallback value.
func (f Field[T]) Populated() bool {
	return f.Status == FieldPresent || f.Status == FieldFallback
}

// Risk categories.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// Trend directions.
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendStable  = "Stable"
)

type RiskView struct {
	Score       int    `json:"score"`
	Category    string `json:"category"`
	Explanation string `json:"explanation,omitempty"`
}

type WeatherView struct {
	Labels      []string  `json:"labels"`
	Temperature []float64 `json:"temperature"`
	Rainfall    []float64 `json:"rainfall"`
	Humidity    []float64 `json:"humidity"`
	AvgTemp     float64   `json:"avg_temp"`
}

type MarketView struct {
	Crop      string   `json:"crop"`
	Labels    []string `json:"labels"`
	Prices    []int    `json:"prices"`
	ChangePct float64  `json:"change_pct"`
	Trend     string   `json:"trend"`
}

// SoilIndicator is one nutrient or moisture reading with its classification.
type SoilIndicator struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Value   float64 `json:"value"`
	Status  string  `json:"status"`
	Present bool    `json:"present"`
}

type SoilView struct {
	Indicators []SoilIndicator `json:"indicators"`
	PH         *float64        `json:"ph,omitempty"`
}

type AdvisoryView struct {
	Items []string `json:"items"`
}

// FarmerView is the merged result of one aggregation round.
type FarmerView struct {
	VillageID   string              `json:"village_id"`
	Generation  uint64              `json:"generation"`
	Risk        Field[RiskView]     `json:"risk"`
	Weather     Field[WeatherView]  `json:"weather"`
	Market      Field[MarketView]   `json:"market"`
	Soil        Field[SoilView]     `json:"soil"`
	Advisory    Field[AdvisoryView] `json:"advisory"`
	RefreshedAt time.Time           `json:"refreshed_at"`
}

// PopulatedFields counts the sections holding a live or fallback value.
func (v FarmerView) PopulatedFields() int {
	n := 0
	for _, ok := range []bool{
		v.Risk.Populated(),
		v.Weather.Populated(),
		v.Market.Populated(),
		v.Soil.Populated(),
		v.Advisory.Populated(),
	} {
		if ok {
			n++
		}
	}
	return n
}

// FarmerState is what the presentation layer renders for the farmer dashboard.
type FarmerState struct {
	SelectedID string      `json:"selected_id,omitempty"`
	Loading    bool        `json:"loading"`
	View       *FarmerView `json:"view,omitempty"`
}

// Village is one row of a village listing.
type Village struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	District  string  `json:"district,omitempty"`
	RiskScore float64 `json:"risk_score"`
	Crop      string  `json:"crop,omitempty"`
}

// RiskAlert flags a village at or above the high-risk threshold.
type RiskAlert struct {
	VillageID string `json:"village_id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Category  string `json:"category"`
}

type AdminStats struct {
	TotalVillages int     `json:"total_villages"`
	HighRisk      int     `json:"high_risk"`
	AverageRisk   float64 `json:"average_risk"`
}

// AdminView is the admin overview built from the village listing.
type AdminView struct {
	Generation  uint64           `json:"generation"`
	Villages    Field[[]Village] `json:"villages"`
	Alerts      []RiskAlert      `json:"alerts"`
	Stats       AdminStats       `json:"stats"`
	RefreshedAt time.Time        `json:"refreshed_at"`
}

// Destination is a navigation target raised by request outcomes.
type Destination string

const (
	DestinationNone         Destination = ""
	DestinationLogin        Destination = "/login"
	DestinationAccessDenied Destination = "/access-denied"
)
