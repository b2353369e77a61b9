package ports

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// Backend is the REST backend as seen through the authenticated gateway.
// Optional payload fields are pointers; defaulting happens in one place per
// source, never at call sites.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string, role domain.Role) (string, error)

	Risk(ctx context.Context, villageID string) (*RiskPayload, error)
	Weather(ctx context.Context, villageID string) (*WeatherPayload, error)
	Market(ctx context.Context, villageID string) (*MarketPayload, error)
	Soil(ctx context.Context, villageID string) (*SoilPayload, error)
	Advisory(ctx context.Context, villageID string) (*AdvisoryPayload, error)

	FarmerVillages(ctx context.Context) ([]VillagePayload, error)
	AdminVillages(ctx context.Context) ([]VillagePayload, error)
}

// --- Auth ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type TokenPayload struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// --- Farmer sources ---

type RiskScore struct {
	Score     *float64 `json:"score"`
	Category  *string  `json:"category"`
	RiskLevel *string  `json:"risk_level"`
}

type RiskPayload struct {
	Risk        *RiskScore `json:"risk"`
	Explanation *string    `json:"explanation"`
}

type WeatherSummary struct {
	Temperature   *float64 `json:"temperature"`
	Precipitation *float64 `json:"precipitation"`
	Humidity      *float64 `json:"humidity"  validate:"omitempty,gte=0,lte=100"`
}

type WeatherRecord struct {
	Temperature *float64 `json:"temperature"`
	Rainfall    *float64 `json:"rainfall"  validate:"omitempty,gte=0"`
	Humidity    *float64 `json:"humidity"  validate:"omitempty,gte=0,lte=100"`
}

// WeatherPayload carries either a summary, a newest-first history, or both.
type WeatherPayload struct {
	Weather *WeatherSummary `json:"weather"`
	History []WeatherRecord `json:"history" validate:"dive"`
}

type MarketEntry struct {
	Commodity  string   `json:"commodity"   validate:"required"`
	Price      *float64 `json:"price"       validate:"omitempty,gte=0"`
	ModalPrice *float64 `json:"modal_price" validate:"omitempty,gte=0"`
}

type MarketPayload struct {
	Markets []MarketEntry `json:"markets" validate:"dive"`
}

type SoilPayload struct {
	Nitrogen   *float64 `json:"nitrogen"   validate:"omitempty,gte=0"`
	Phosphorus *float64 `json:"phosphorus" validate:"omitempty,gte=0"`
	Potassium  *float64 `json:"potassium"  validate:"omitempty,gte=0"`
	Moisture   *float64 `json:"moisture"   validate:"omitempty,gte=0,lte=100"`
	PH         *float64 `json:"ph"         validate:"omitempty,gte=0,lte=14"`
}

type AdvisoryPayload struct {
	Items []string `json:"items"`
}

// --- Villages ---

// EntityID accepts both numeric and string identifiers.
type EntityID string

func (id *EntityID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = EntityID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = EntityID(n.String())
	return nil
}

type VillagePayload struct {
	ID        EntityID `json:"id"         validate:"required"`
	Name      string   `json:"name"       validate:"required"`
	District  *string  `json:"district"`
	RiskScore *float64 `json:"risk_score" validate:"omitempty,gte=0,lte=100"`
	Crop      *string  `json:"crop"`
}
