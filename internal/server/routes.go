package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter()
	authed := middleware.Auth(s.tokens, s.userStore)

	api := s.E.Group("/api")

	api.POST("/auth/register", s.authHandler.Register, rateLimiter)
	api.POST("/auth/login", s.authHandler.Login, rateLimiter)

	api.GET("/users", s.usersHandler.List, authed)

	api.POST("/messages", s.messagesHandler.Create, authed)
	api.GET("/messages/conversation", s.messagesHandler.Conversation, authed)
	api.GET("/messages/search", s.messagesHandler.Search, authed)

	api.POST("/insights/generate", s.insightsHandler.Generate, authed)
	api.GET("/insights", s.insightsHandler.Get, authed)

	// The WebSocket endpoint authenticates via the token query parameter
	// fallback, since browsers cannot set headers on upgrade requests.
	s.E.GET("/ws", s.bridge.Handler(), authed)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
