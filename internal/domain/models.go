// Package domain defines the core domain models for the chat server.
package domain

import "time"

// User is a registered chat user.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	PasswordHash        string    `json:"-"`
	PreferredLLMBackend string    `json:"preferred_llm_backend,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Room groups a set of users and their message history.
type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomMember links a user to a room.
type RoomMember struct {
	ID       int64     `json:"id"`
	RoomID   int64     `json:"room_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message is a chat message. UserID is nil for messages authored by the agent.
// Messages are immutable once created.
type Message struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	IsBot     bool      `json:"is_bot"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryItem is one stock line owned by a user, keyed by (user, product name).
type InventoryItem struct {
	ProductID        int64     `json:"product_id"`
	UserID           int64     `json:"user_id"`
	ProductName      string    `json:"product_name"`
	Stock            int       `json:"stock"`
	SafetyStockLevel int       `json:"safety_stock_level"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GroceryItem is a read-only catalog candidate returned by retrieval.
type GroceryItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	SubCategory string  `json:"sub_category"`
	Price       float64 `json:"price"`
	RatingValue float64 `json:"rating_value"`
	RatingCount int     `json:"rating_count"`
}
