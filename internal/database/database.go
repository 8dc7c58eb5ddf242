package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ivyresort/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger

	mu        sync.RWMutex
	roomTypes map[string]models.RoomType
	sorted    []models.RoomType
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger, roomTypes: make(map[string]models.RoomType)}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            confirmation_id TEXT NOT NULL UNIQUE,
            guest_name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT,
            room_name TEXT NOT NULL,
            room_type TEXT,
            check_in TEXT NOT NULL,
            check_out TEXT NOT NULL,
            guests INTEGER NOT NULL DEFAULT 1,
            total_amount REAL NOT NULL DEFAULT 0,
            currency TEXT,
            special_requests TEXT,
            email_sent BOOLEAN NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS dashboard_users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            role TEXT NOT NULL DEFAULT 'staff',
            active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sync_tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            reservation_id INTEGER NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS cleanup_runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ran_at DATETIME NOT NULL,
            deleted_count INTEGER NOT NULL,
            window_days INTEGER NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_updated_at ON reservations(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_created_at ON reservations(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_tasks_status ON sync_tasks(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SetRoomTypes installs the static catalog loaded from config.
func (db *DB) SetRoomTypes(roomTypes []models.RoomType) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.roomTypes = make(map[string]models.RoomType, len(roomTypes))
	for _, rt := range roomTypes {
		db.roomTypes[rt.Name] = rt
	}
	db.sorted = roomTypes
}

func (db *DB) GetRoomTypes() []models.RoomType {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]models.RoomType, len(db.sorted))
	copy(out, db.sorted)
	return out
}

func (db *DB) GetRoomTypeByName(name string) (models.RoomType, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rt, ok := db.roomTypes[name]
	return rt, ok
}
