package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/middleware"
	"github.com/samber/lo"
)

// UsersHandler serves the user roster. Clients fetch it once after
// connecting to reconcile presence state they may have missed.
type UsersHandler struct {
	users domain.UserRepository
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users domain.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to list users", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not list users")
	}

	return c.JSON(http.StatusOK, lo.Map(users, func(u domain.User, _ int) UserResponse {
		return userResponse(&u)
	}))
}
