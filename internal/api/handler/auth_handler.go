package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// SessionHandler exposes the caller's session: sign-in, demo entry and
// sign-out.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=farmer admin"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role"     validate:"required,oneof=farmer admin"`
}

type demoRequest struct {
	Role string `json:"role" validate:"required,oneof=farmer admin"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
	Demo          bool `json:"demo"`
	domain.Session
}

func newSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{Authenticated: s.Authenticated(), Demo: s.Demo(), Session: s}
}

// Get returns the caller's session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(ws.Session.Current()))
}

// Login signs in against the backend with the chosen role.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and role"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
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
	if err := ws.Session.Authenticate(c.Request().Context(), req.Email, req.Password, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(ws.Session.Current()))
}

// Register creates a backend account and signs into it.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
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
	if err := ws.Session.Register(c.Request().Context(), req.Email, req.Password, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionResponse(ws.Session.Current()))
}

// Demo enters the locally simulated session. No backend call is made.
//
// @Summary      Enter demo mode
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      demoRequest  true  "Demo role"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /session/demo [post]
func (h *SessionHandler) Demo(c echo.Context) error {
	var req demoRequest
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
	if err := ws.Session.LoginDemo(c.Request().Context(), domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(ws.Session.Current()))
}

// Logout ends the session. Signing out twice is not an error.
//
// @Summary      Sign out
// @Tags         session
// @Success      204
// @Router       /session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	ws, err := currentWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Session.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
