// Package api provides the HTTP handlers for the chat service.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/auth"
	"github.com/ychia112/GroceryShopperAI/internal/config"
	"github.com/ychia112/GroceryShopperAI/internal/domain"
	"github.com/ychia112/GroceryShopperAI/internal/store"
)

// Dispatcher triggers one detached pipeline invocation for a posted message.
type Dispatcher interface {
	Dispatch(roomID, userID int64, content string)
}

// Broadcaster fans a payload out to a room's subscribers.
type Broadcaster interface {
	Broadcast(roomID int64, payload any)
}

// Backends exposes the set of registered generation backends.
type Backends interface {
	Has(name string) bool
	Names() []string
	Default() string
}

// Handler handles HTTP requests.
type Handler struct {
	store    store.Store
	hub      Broadcaster
	pipeline Dispatcher
	backends Backends
	tokens   *auth.TokenIssuer
	config   *config.Config
	log      zerolog.Logger
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, hub Broadcaster, pipeline Dispatcher, backends Backends, tokens *auth.TokenIssuer, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		store:    st,
		hub:      hub,
		pipeline: pipeline,
		backends: backends,
		tokens:   tokens,
		config:   cfg,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/signup", h.Signup)
	e.POST("/api/login", h.Login)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authed := e.Group("/api", auth.Middleware(h.tokens))
	authed.GET("/me", h.Me)
	authed.GET("/users/llm-model", h.GetLLMModel)
	authed.PUT("/users/llm-model", h.SetLLMModel)

	authed.POST("/rooms", h.CreateRoom)
	authed.GET("/rooms", h.ListRooms)
	authed.GET("/rooms/:room_id/members", h.ListRoomMembers)
	authed.POST("/rooms/:room_id/invite", h.InviteMember)

	authed.GET("/rooms/:room_id/messages", h.ListMessages)
	authed.POST("/rooms/:room_id/messages", h.PostMessage)

	authed.GET("/inventory", h.ListInventory)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// currentUser resolves the authenticated user from the username stored by the
// auth middleware.
func (h *Handler) currentUser(c echo.Context) (*domain.User, error) {
	username := auth.Username(c)
	if username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}
	user, err := h.store.GetUserByUsername(c.Request().Context(), username)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("failed to load user")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}
