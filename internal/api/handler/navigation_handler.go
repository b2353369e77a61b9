package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

type navigationResponse struct {
	Destination string `json:"destination"`
}

// Take returns and clears the destination raised by the last authorization
// failure, or an empty destination when there is none.
//
// @Summary      Pending navigation
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Router       /navigation [get]
func (h *NavigationHandler) Take(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, navigationResponse{Destination: string(ws.Nav.Take())})
}
