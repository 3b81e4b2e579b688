package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		// Each pool connection would otherwise get its own in-memory database.
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			preferred_llm_backend TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			owner_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS room_members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (room_id, user_id),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			user_id INTEGER,
			content TEXT NOT NULL,
			is_bot INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			product_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			product_name TEXT NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			safety_stock_level INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, product_name),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS grocery_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			sub_category TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			rating_value REAL,
			rating_count INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grocery_title ON grocery_items(title)`,
		`CREATE INDEX IF NOT EXISTS idx_grocery_category ON grocery_items(sub_category)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash, preferredBackend string) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, preferred_llm_backend, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, preferredBackend, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:                  id,
		Username:            username,
		PasswordHash:        passwordHash,
		PreferredLLMBackend: preferredBackend,
		CreatedAt:           now,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, preferred_llm_backend, created_at FROM users WHERE id = ?`, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, preferred_llm_backend, created_at FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PreferredLLMBackend, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserBackend updates a user's preferred generation backend.
func (s *SQLiteStore) UpdateUserBackend(ctx context.Context, id int64, backend string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET preferred_llm_backend = ? WHERE id = ?`, backend, id)
	return err
}

// CreateRoom creates a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name string, ownerID int64) (*domain.Room, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (name, owner_id, created_at) VALUES (?, ?, ?)`, name, ownerID, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Room{ID: id, Name: name, OwnerID: ownerID, CreatedAt: now}, nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM rooms WHERE id = ?`, id))
}

// GetRoomByName retrieves a room by name.
func (s *SQLiteStore) GetRoomByName(ctx context.Context, name string) (*domain.Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM rooms WHERE name = ?`, name))
}

func (s *SQLiteStore) scanRoom(row *sql.Row) (*domain.Room, error) {
	var r domain.Room
	err := row.Scan(&r.ID, &r.Name, &r.OwnerID, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoomsForUser lists rooms the user is a member of.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID int64) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.owner_id, r.created_at FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? ORDER BY r.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var r domain.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.OwnerID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddRoomMember adds a user to a room. Adding twice is an error (UNIQUE).
func (s *SQLiteStore) AddRoomMember(ctx context.Context, roomID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id) VALUES (?, ?)`, roomID, userID)
	return err
}

// IsRoomMember reports whether the user belongs to the room.
func (s *SQLiteStore) IsRoomMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM room_members WHERE room_id = ? AND user_id = ?`, roomID, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRoomMembers lists the users in a room.
func (s *SQLiteStore) ListRoomMembers(ctx context.Context, roomID int64) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.password_hash, u.preferred_llm_backend, u.created_at FROM users u
		 JOIN room_members m ON m.user_id = u.id
		 WHERE m.room_id = ? ORDER BY m.joined_at`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PreferredLLMBackend, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateMessage creates a new message and fills in its ID and timestamp.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	var userID sql.NullInt64
	if message.UserID != nil {
		userID = sql.NullInt64{Int64: *message.UserID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (room_id, user_id, content, is_bot, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.RoomID, userID, message.Content, message.IsBot, message.CreatedAt)
	if err != nil {
		return err
	}
	message.ID, err = res.LastInsertId()
	return err
}

// ListRoomMessages returns the newest `limit` messages of a room in
// chronological order, with author usernames resolved.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, roomID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.room_id, m.user_id, u.username, m.content, m.is_bot, m.created_at
		 FROM (SELECT * FROM messages WHERE room_id = ? ORDER BY created_at DESC, id DESC LIMIT ?) m
		 LEFT JOIN users u ON u.id = m.user_id
		 ORDER BY m.created_at ASC, m.id ASC`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var userID sql.NullInt64
		var username sql.NullString
		if err := rows.Scan(&m.ID, &m.RoomID, &userID, &username, &m.Content, &m.IsBot, &m.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			m.UserID = &userID.Int64
		}
		if username.Valid {
			m.Username = username.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertInventoryItem creates or overwrites the stock line keyed by
// (user, product name) in a single atomic statement.
func (s *SQLiteStore) UpsertInventoryItem(ctx context.Context, userID int64, productName string, stock, safetyStock int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory (user_id, product_name, stock, safety_stock_level)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, product_name) DO UPDATE SET
		   stock = excluded.stock,
		   safety_stock_level = excluded.safety_stock_level,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, productName, stock, safetyStock)
	return err
}

// ListInventory lists a user's inventory lines.
func (s *SQLiteStore) ListInventory(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, user_id, product_name, stock, safety_stock_level, created_at, updated_at
		 FROM inventory WHERE user_id = ? ORDER BY product_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.UserID, &it.ProductName, &it.Stock, &it.SafetyStockLevel, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SearchGroceryItems finds catalog items relevant to a product term.
// Matching priority: title substring, then sub-category substring, then
// top-rated items as a final fallback.
func (s *SQLiteStore) SearchGroceryItems(ctx context.Context, term string, limit int) ([]domain.GroceryItem, error) {
	if limit <= 0 {
		limit = 20
	}

	items, err := s.queryGrocery(ctx,
		`SELECT id, title, sub_category, price, rating_value, rating_count FROM grocery_items
		 WHERE LOWER(title) LIKE '%' || LOWER(?) || '%' LIMIT ?`, term, limit)
	if err != nil || len(items) > 0 {
		return items, err
	}

	items, err = s.queryGrocery(ctx,
		`SELECT id, title, sub_category, price, rating_value, rating_count FROM grocery_items
		 WHERE LOWER(sub_category) LIKE '%' || LOWER(?) || '%' LIMIT ?`, term, limit)
	if err != nil || len(items) > 0 {
		return items, err
	}

	return s.queryGrocery(ctx,
		`SELECT id, title, sub_category, price, rating_value, rating_count FROM grocery_items
		 ORDER BY rating_value DESC LIMIT ?`, limit)
}

func (s *SQLiteStore) queryGrocery(ctx context.Context, query string, args ...any) ([]domain.GroceryItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GroceryItem
	for rows.Next() {
		var g domain.GroceryItem
		var rating sql.NullFloat64
		var count sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Title, &g.SubCategory, &g.Price, &rating, &count); err != nil {
			return nil, err
		}
		if rating.Valid {
			g.RatingValue = rating.Float64
		}
		if count.Valid {
			g.RatingCount = int(count.Int64)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountGroceryItems returns the number of catalog rows.
func (s *SQLiteStore) CountGroceryItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM grocery_items`).Scan(&n)
	return n, err
}

// InsertGroceryItems bulk-inserts catalog rows.
func (s *SQLiteStore) InsertGroceryItems(ctx context.Context, items []domain.GroceryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grocery_items (title, sub_category, price, rating_value, rating_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Title, it.SubCategory, it.Price, it.RatingValue, it.RatingCount); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
