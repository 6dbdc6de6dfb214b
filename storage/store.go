// Package storage persists conversation transcripts and their annotations in
// a single SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"mealplan/config"
)

var (
	// ErrNotFound is returned when a conversation id does not exist, or when
	// the latest conversation is requested and none are stored.
	ErrNotFound = errors.New("conversation not found")

	// ErrIntegrity is returned when a write would break a referential or
	// uniqueness constraint. The whole write is rolled back.
	ErrIntegrity = errors.New("store integrity violation")

	// ErrEmptyConversation is returned when asked to persist no messages
	ErrEmptyConversation = errors.New("conversation has no messages")

	ErrInvalidLimit = errors.New("limit must be positive")
)

// Latest selects the most recently created conversation wherever an id is accepted
const Latest int64 = 0

// Store is the single long-lived handle to the transcript database
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One flow of control writes at a time; a single connection keeps the
	// foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'tool', 'system')),
		content TEXT NOT NULL,
		tool_name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (conversation_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_role ON messages(conversation_id, role, position);
	CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at);
	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL UNIQUE REFERENCES conversations(id) ON DELETE CASCADE,
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if err := s.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds columns introduced after the first release
func (s *Store) migrateSchema() error {
	for _, column := range []string{"likes", "dislikes"} {
		exists, err := s.columnExists("annotations", column)
		if err != nil {
			return fmt.Errorf("failed to check for %s column: %w", column, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE annotations ADD COLUMN %s TEXT NOT NULL DEFAULT '[]'`, column)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add %s column: %w", column, err)
		}
	}
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (s *Store) columnExists(tableName, columnName string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

// withTx runs fn inside one transaction. Any error from fn, or a panic,
// rolls back every statement fn issued.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[storage] rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// classify maps SQLite constraint failures onto ErrIntegrity
func classify(err error) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) && sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
