package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/insight"
	"github.com/nfrund/commhub/internal/middleware"
)

// InsightsHandler serves conversation insight generation and retrieval.
type InsightsHandler struct {
	insights *insight.Service
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insights *insight.Service) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Generate handles POST /api/insights/generate?targetUserId=N.
func (h *InsightsHandler) Generate(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "not authenticated")
	}

	targetID, err := targetUserID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "targetUserId must be a positive integer")
	}

	generated, err := h.insights.Generate(c.Request().Context(), user.ID, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "no conversation to analyze")
		}
		middleware.FromContext(c.Request().Context()).Error("Failed to generate insight", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not generate insight")
	}

	return c.JSON(http.StatusCreated, generated)
}

// Get handles GET /api/insights?targetUserId=N.
func (h *InsightsHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "not authenticated")
	}

	targetID, err := targetUserID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "targetUserId must be a positive integer")
	}

	found, err := h.insights.Get(c.Request().Context(), user.ID, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "no insight generated yet")
		}
		middleware.FromContext(c.Request().Context()).Error("Failed to fetch insight", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not fetch insight")
	}

	return c.JSON(http.StatusOK, found)
}
