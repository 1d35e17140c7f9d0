package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/auth"
	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/middleware"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to hash password", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not create account")
	}

	user, err := h.users.Create(c.Request().Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return errorJSON(c, http.StatusBadRequest, "email already in use")
		}
		middleware.FromContext(c.Request().Context()).Error("Failed to create user", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not create account")
	}

	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not issue token")
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		User:        userResponse(user),
		AccessToken: token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "email and password are required")
	}

	user, err := h.users.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to look up user", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "login failed")
	}
	// Same response for unknown email and wrong password.
	if user == nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid email or password")
	}

	match, err := auth.ComparePassword(req.Password, user.Password)
	if err != nil || !match {
		return errorJSON(c, http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not issue token")
	}

	return c.JSON(http.StatusOK, AuthResponse{
		User:        userResponse(user),
		AccessToken: token,
	})
}
