// Package ws provides WebSocket server functionality for room subscriptions.
package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/config"
	"github.com/ychia112/GroceryShopperAI/internal/hub"
	"github.com/ychia112/GroceryShopperAI/internal/store"
)

// Server handles WebSocket connections. Clients subscribe to one room per
// connection and only receive; chat messages are posted over HTTP.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	store    store.Store
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, st store.Store, log zerolog.Logger) *Server {
	return &Server{
		cfg:   cfg,
		hub:   h,
		store: st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
// GET /ws?room_id=N
func (s *Server) HandleWebSocket(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.QueryParam("room_id"), 10, 64)

	ws, upErr := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if upErr != nil {
		s.log.Warn().Err(upErr).Msg("websocket upgrade failed")
		return upErr
	}

	// Room validation happens after the upgrade so the client gets a proper
	// close frame instead of an opaque handshake failure.
	if err != nil || roomID <= 0 {
		s.closeWithPolicyViolation(ws, "invalid room_id")
		return nil
	}
	room, err := s.store.GetRoom(c.Request().Context(), roomID)
	if err != nil || room == nil {
		s.closeWithPolicyViolation(ws, "unknown room")
		return nil
	}

	conn := hub.NewConnection(roomID)
	if err := s.hub.Subscribe(conn); err != nil {
		s.closeWithPolicyViolation(ws, err.Error())
		return nil
	}

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(ws, conn)
	go s.readPump(ws, conn)

	return nil
}

func (s *Server) closeWithPolicyViolation(ws *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	ws.WriteMessage(websocket.CloseMessage, msg)
	ws.Close()
}

// readPump drains the WebSocket connection. Incoming frames carry no
// commands; reading exists to notice disconnects and answer pings.
func (s *Server) readPump(ws *websocket.Conn, conn *hub.Connection) {
	defer func() {
		s.hub.Unsubscribe(conn)
		ws.Close()
	}()

	ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Str("conn", conn.ID).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump forwards hub deliveries to the WebSocket connection and keeps it
// alive with pings.
func (s *Server) writePump(ws *websocket.Conn, conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Warn().Err(err).Str("conn", conn.ID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
