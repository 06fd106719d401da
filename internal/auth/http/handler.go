package http

import (
	"errors"
	"log/slog"
	"net/http"

	"product-catalog/internal/api"
	"product-catalog/internal/auth"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

type AuthService interface {
	Login(login, password string) (auth.Session, error)
	Register(username, email, password string) (auth.Session, error)
	ChangePassword(userID, current, next string) error
	Refresh(claims auth.Claims) (auth.Session, error)
	VerifyToken(raw string) (auth.Claims, error)
}

type Handler struct {
	service AuthService
	logger  *slog.Logger
}

func NewHandler(svc AuthService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required" example:"newuser"`
	Email    string `json:"email" binding:"required" example:"new@example.com"`
	Password string `json:"password" binding:"required" example:"Passw0rd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Login godoc
// @Summary      Authenticate with username or email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      401   {object}  api.Response
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Error(c, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKWithMessage(c, http.StatusOK, "login successful", session)
}

// Register godoc
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      201   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      409   {object}  api.Response
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "username, email and password are required")
		return
	}

	session, err := h.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			api.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrDuplicateUser):
			api.Error(c, http.StatusConflict, err.Error())
		default:
			h.logger.Error("register failed", "error", err)
			api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	api.OKWithMessage(c, http.StatusCreated, "user registered successfully", session)
}

// Profile godoc
// @Summary      Read the authenticated caller's claims
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response
// @Router       /profile [get]
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, authFailureMessage)
		return
	}

	api.OK(c, http.StatusOK, gin.H{"user": gin.H{
		"id":       claims.UserID,
		"username": claims.Username,
		"email":    claims.Email,
		"role":     claims.Role,
	}})
}

// RefreshToken godoc
// @Summary      Re-sign the caller's token with a fresh expiry
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response
// @Router       /refresh-token [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, authFailureMessage)
		return
	}

	session, err := h.service.Refresh(claims)
	if err != nil {
		h.logger.Error("refresh token failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKWithMessage(c, http.StatusOK, "token refreshed", gin.H{
		"token":      session.Token,
		"expires_in": session.ExpiresIn,
	})
}

// ChangePassword godoc
// @Summary      Replace the caller's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      401   {object}  api.Response
// @Router       /change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, authFailureMessage)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "current and new password are required")
		return
	}

	if err := h.service.ChangePassword(claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			api.Error(c, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			api.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			api.Error(c, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("change password failed", "error", err)
			api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	api.OKWithMessage(c, http.StatusOK, "password updated", nil)
}

// RegisterRoutes mounts the auth surface at the router root.
func RegisterRoutes(router *gin.Engine, handler *Handler, gate gin.HandlerFunc) {
	router.POST("/login", handler.Login)
	router.POST("/register", handler.Register)
	router.GET("/profile", gate, handler.Profile)
	router.POST("/refresh-token", gate, handler.RefreshToken)
	router.POST("/change-password", gate, handler.ChangePassword)
}
