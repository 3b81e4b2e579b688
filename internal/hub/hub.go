// Package hub provides the room-keyed connection registry for WebSocket
// clients. It is a pure fan-out primitive: no business logic, no persistence.
package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/metrics"
)

const sendBufferSize = 256

// ErrInvalidRoom is returned when subscribing with a non-positive room id.
// Transports validate room ids before involving the registry; this is a
// defensive backstop.
var ErrInvalidRoom = errors.New("invalid room id")

// errSendFailed marks a connection whose send buffer is full or closed.
var errSendFailed = errors.New("send failed")

// Connection represents a single client connection. Its room id is fixed for
// the connection's lifetime. The hub owns the connection from a successful
// Subscribe until Unsubscribe or a failed send.
type Connection struct {
	ID     string
	RoomID int64
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// NewConnection creates an unregistered connection for a room.
func NewConnection(roomID int64) *Connection {
	return &Connection{
		ID:     uuid.New().String(),
		RoomID: roomID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// trySend enqueues data without blocking. A full buffer or a closed
// connection counts as a failed delivery.
func (c *Connection) trySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSendFailed
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return errSendFailed
	}
}

// close closes the send channel exactly once.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub tracks live connections grouped by room.
type Hub struct {
	mu    sync.Mutex
	rooms map[int64]map[*Connection]struct{}
	log   zerolog.Logger
}

// NewHub creates a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[int64]map[*Connection]struct{}),
		log:   log.With().Str("component", "hub").Logger(),
	}
}

// Subscribe registers a connection under its room.
func (h *Hub) Subscribe(conn *Connection) error {
	if conn.RoomID <= 0 {
		return ErrInvalidRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[conn.RoomID]
	if members == nil {
		members = make(map[*Connection]struct{})
		h.rooms[conn.RoomID] = members
	}
	members[conn] = struct{}{}
	metrics.ConnectionsActive.Inc()
	h.log.Debug().Str("conn", conn.ID).Int64("room", conn.RoomID).Msg("connection subscribed")
	return nil
}

// Unsubscribe removes a connection from its room. Removing a connection that
// is already absent is a no-op.
func (h *Hub) Unsubscribe(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *Connection) {
	members, ok := h.rooms[conn.RoomID]
	if !ok {
		return
	}
	if _, ok := members[conn]; !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.rooms, conn.RoomID)
	}
	conn.close()
	metrics.ConnectionsActive.Dec()
	h.log.Debug().Str("conn", conn.ID).Int64("room", conn.RoomID).Msg("connection unsubscribed")
}

// Broadcast serializes the payload once and delivers it to every connection
// currently registered under the room. Delivery attempts are independent and
// never block on slow clients; a connection whose send fails is removed from
// the registry as a side effect.
func (h *Hub) Broadcast(roomID int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Int64("room", roomID).Msg("broadcast payload marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[roomID]
	if len(members) == 0 {
		return
	}

	var dead []*Connection
	for conn := range members {
		if err := conn.trySend(data); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		h.log.Warn().Str("conn", conn.ID).Int64("room", roomID).Msg("dropping dead connection")
		h.removeLocked(conn)
	}
	metrics.BroadcastsTotal.Inc()
}

// ConnectionCount returns the number of live connections across all rooms.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, members := range h.rooms {
		n += len(members)
	}
	return n
}

// RoomConnectionCount returns the number of live connections in one room.
func (h *Hub) RoomConnectionCount(roomID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
