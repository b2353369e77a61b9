package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// Client implements ports.Backend on top of a Gateway.
type Client struct {
	gw *Gateway
}

func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

// Login exchanges credentials for an access token. A 401 is reported as
// domain.ErrInvalidCredentials; other failures are returned unchanged.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out ports.TokenPayload
	err := c.gw.DoPublic(ctx, http.MethodPost, "/auth/login", ports.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, email, password string, role domain.Role) (string, error) {
	var out ports.TokenPayload
	in := ports.RegisterRequest{Email: email, Password: password, Role: string(role)}
	if err := c.gw.DoPublic(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Risk(ctx context.Context, villageID string) (*ports.RiskPayload, error) {
	var out ports.RiskPayload
	if err := c.gw.Do(ctx, http.MethodGet, farmerPath(villageID, "risk"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Weather(ctx context.Context, villageID string) (*ports.WeatherPayload, error) {
	var out ports.WeatherPayload
	if err := c.gw.Do(ctx, http.MethodGet, farmerPath(villageID, "weather"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Market(ctx context.Context, villageID string) (*ports.MarketPayload, error) {
	var out ports.MarketPayload
	if err := c.gw.Do(ctx, http.MethodGet, farmerPath(villageID, "market"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Soil(ctx context.Context, villageID string) (*ports.SoilPayload, error) {
	var out ports.SoilPayload
	if err := c.gw.Do(ctx, http.MethodGet, farmerPath(villageID, "soil"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Advisory(ctx context.Context, villageID string) (*ports.AdvisoryPayload, error) {
	var out ports.AdvisoryPayload
	if err := c.gw.Do(ctx, http.MethodGet, farmerPath(villageID, "advisory"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FarmerVillages(ctx context.Context) ([]ports.VillagePayload, error) {
	var out []ports.VillagePayload
	if err := c.gw.Do(ctx, http.MethodGet, "/farmer/villages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminVillages(ctx context.Context) ([]ports.VillagePayload, error) {
	var out []ports.VillagePayload
	if err := c.gw.Do(ctx, http.MethodGet, "/admin/villages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func farmerPath(villageID, source string) string {
	return "/farmer/" + url.PathEscape(villageID) + "/" + source
}
