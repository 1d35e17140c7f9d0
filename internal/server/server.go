package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/commhub/internal/auth"
	"github.com/nfrund/commhub/internal/config"
	"github.com/nfrund/commhub/internal/database"
	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/handlers"
	"github.com/nfrund/commhub/internal/insight"
	"github.com/nfrund/commhub/internal/logging"
	"github.com/nfrund/commhub/internal/middleware"
	"github.com/nfrund/commhub/internal/pubsub"
	"github.com/nfrund/commhub/internal/realtime"
	"github.com/nfrund/commhub/internal/websocket"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	bus    *pubsub.WatermillBridge
	bridge *websocket.Bridge
	tokens *auth.TokenManager

	userStore    domain.UserRepository
	messageStore domain.MessageRepository

	authHandler     *handlers.AuthHandler
	usersHandler    *handlers.UsersHandler
	messagesHandler *handlers.MessagesHandler
	insightsHandler *handlers.InsightsHandler
}

// New creates a new Server instance with all components wired.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewWatermillBridge()

	userStore := database.NewUserStore(db)
	messageStore := database.NewMessageStore(db)
	insightStore := database.NewInsightStore(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Real-time core: the bridge owns the transport, the gateway owns the
	// lifecycle, and they reference each other through narrow interfaces.
	bridge := websocket.NewBridge()
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(bus)
	relay := realtime.NewRelay(messageStore, registry, bridge)
	gateway := realtime.NewGateway(registry, broadcaster, relay, bridge)
	bridge.SetHandler(gateway)

	insightService := insight.NewService(messageStore, insightStore, insight.NewMockAnalyzer())

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowCredentials: true,
	}))

	return &Server{
		E:               e,
		DB:              db,
		Cfg:             cfg,
		bus:             bus,
		bridge:          bridge,
		tokens:          tokens,
		userStore:       userStore,
		messageStore:    messageStore,
		authHandler:     handlers.NewAuthHandler(userStore, tokens),
		usersHandler:    handlers.NewUsersHandler(userStore),
		messagesHandler: handlers.NewMessagesHandler(messageStore),
		insightsHandler: handlers.NewInsightsHandler(insightService),
	}
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.userStore
}
