package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geolocate/backend/internal/model"
	"github.com/geolocate/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest     = "Please enter both email and password."
	msgInvalidCredentials = "Invalid Credentials"
	msgServerError        = "Server Error during login process"
)

type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login godoc
// @Summary Login
// @Description Verifies email and password and returns a bearer token valid for one hour.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Msg: msgInvalidRequest})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Msg: "unauthorized"})
		return
	}

	stored, err := h.svc.Me(c.Request.Context(), user)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MeResponse{User: stored.Response()})
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Msg: msgInvalidRequest})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Msg: msgInvalidCredentials})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Msg: "unauthorized"})
	case errors.Is(err, service.ErrMisconfigured):
		h.logger.Error("auth configuration fault", "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Msg: msgServerError})
	default:
		h.logger.Error("auth request failed", "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Msg: msgServerError})
	}
}
