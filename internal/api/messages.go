package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ychia112/GroceryShopperAI/internal/agent"
	"github.com/ychia112/GroceryShopperAI/internal/domain"
	"github.com/ychia112/GroceryShopperAI/internal/metrics"
)

// MessagePostRequest is the request to post a chat message.
type MessagePostRequest struct {
	Content string `json:"content"`
}

// ListMessages returns a room's recent history in chronological order.
// GET /rooms/:room_id/messages?limit=N
func (h *Handler) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	roomID, err := roomIDParam(c)
	if err != nil {
		return err
	}
	if err := h.requireMembership(c, roomID, user.ID); err != nil {
		return err
	}

	limit := h.config.ChatHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.store.ListRoomMessages(ctx, roomID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list messages"})
	}

	views := make([]domain.MessageView, 0, len(history))
	for _, m := range history {
		views = append(views, messageView(m))
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": views})
}

// PostMessage persists a message, fans it out to the room and triggers one
// detached pipeline invocation. The response never waits on generation.
// POST /rooms/:room_id/messages
func (h *Handler) PostMessage(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	roomID, err := roomIDParam(c)
	if err != nil {
		return err
	}
	if err := h.requireMembership(c, roomID, user.ID); err != nil {
		return err
	}

	var req MessagePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	msg := &domain.Message{
		RoomID:   roomID,
		UserID:   &user.ID,
		Username: user.Username,
		Content:  req.Content,
	}
	if err := h.store.CreateMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Msg("failed to persist message")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to post message"})
	}
	metrics.MessagesPosted.Inc()

	h.hub.Broadcast(roomID, domain.MessageBroadcast{
		Type:    "message",
		RoomID:  roomID,
		Message: messageView(*msg),
	})
	h.pipeline.Dispatch(roomID, user.ID, req.Content)

	return c.JSON(http.StatusOK, map[string]any{
		"ok": true,
		"id": msg.ID,
	})
}

func messageView(m domain.Message) domain.MessageView {
	username := m.Username
	if m.IsBot {
		username = agent.AgentName
	}
	return domain.MessageView{
		ID:        m.ID,
		Username:  username,
		Content:   m.Content,
		IsBot:     m.IsBot,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
