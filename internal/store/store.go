// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// Store defines the interface for data persistence. The core relies only on
// atomic single-row upserts and point lookups; no cross-row transactions.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, username, passwordHash, preferredBackend string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUserBackend(ctx context.Context, id int64, backend string) error

	// Room operations
	CreateRoom(ctx context.Context, name string, ownerID int64) (*domain.Room, error)
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	GetRoomByName(ctx context.Context, name string) (*domain.Room, error)
	ListRoomsForUser(ctx context.Context, userID int64) ([]domain.Room, error)

	// Membership operations
	AddRoomMember(ctx context.Context, roomID, userID int64) error
	IsRoomMember(ctx context.Context, roomID, userID int64) (bool, error)
	ListRoomMembers(ctx context.Context, roomID int64) ([]domain.User, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]domain.Message, error)

	// Inventory operations
	UpsertInventoryItem(ctx context.Context, userID int64, productName string, stock, safetyStock int) error
	ListInventory(ctx context.Context, userID int64) ([]domain.InventoryItem, error)

	// Catalog operations
	SearchGroceryItems(ctx context.Context, term string, limit int) ([]domain.GroceryItem, error)
	CountGroceryItems(ctx context.Context) (int64, error)
	InsertGroceryItems(ctx context.Context, items []domain.GroceryItem) error

	// Lifecycle
	Close() error
}
