package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gramsight/dashboard/internal/core/domain"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type selectRequest struct {
	VillageID string `json:"village_id" validate:"required,max=64"`
}

// farmerResponse carries the state to render. Published is false when the
// round was superseded by a newer one; State then reflects the newer round.
// Navigate is set when an authorization failure during the round requires
// the client to move.
type farmerResponse struct {
	Published bool               `json:"published"`
	State     domain.FarmerState `json:"state"`
	Navigate  string             `json:"navigate,omitempty"`
}

type adminResponse struct {
	Published bool             `json:"published"`
	View      domain.AdminView `json:"view"`
	Navigate  string           `json:"navigate,omitempty"`
}

type villagesResponse struct {
	Villages domain.Field[[]domain.Village] `json:"villages"`
	Navigate string                         `json:"navigate,omitempty"`
}

// Farmer returns the farmer dashboard as last published.
//
// @Summary      Farmer dashboard state
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.FarmerState
// @Failure      401  {object}  map[string]string
// @Router       /dashboard/farmer [get]
func (h *DashboardHandler) Farmer(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Farmer.State())
}

// Select changes the selected village and aggregates its sources.
//
// @Summary      Select a village
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        body  body      selectRequest  true  "Village to show"
// @Success      200   {object}  farmerResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /dashboard/farmer/select [post]
func (h *DashboardHandler) Select(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	_, published := ws.Farmer.Select(roundContext(c), req.VillageID)
	return c.JSON(http.StatusOK, farmerResponse{
		Published: published,
		State:     ws.Farmer.State(),
		Navigate:  string(ws.Nav.Take()),
	})
}

// Refresh re-runs the aggregation for the selected village.
//
// @Summary      Refresh the farmer dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  farmerResponse
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /dashboard/farmer/refresh [post]
func (h *DashboardHandler) Refresh(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	_, published, err := ws.Farmer.Reload(roundContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, farmerResponse{
		Published: published,
		State:     ws.Farmer.State(),
		Navigate:  string(ws.Nav.Take()),
	})
}

// Villages lists the villages for the selector.
//
// @Summary      Village selector
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  villagesResponse
// @Failure      401  {object}  map[string]string
// @Router       /dashboard/farmer/villages [get]
func (h *DashboardHandler) Villages(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	villages := ws.Farmer.Villages(c.Request().Context())
	return c.JSON(http.StatusOK, villagesResponse{
		Villages: villages,
		Navigate: string(ws.Nav.Take()),
	})
}

// Admin refreshes and returns the village risk overview.
//
// @Summary      Admin overview
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  adminResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	view, published := ws.Admin.Refresh(roundContext(c))
	if !published {
		if cur, ok := ws.Admin.Current(); ok {
			view = cur
		}
	}
	return c.JSON(http.StatusOK, adminResponse{
		Published: published,
		View:      view,
		Navigate:  string(ws.Nav.Take()),
	})
}
