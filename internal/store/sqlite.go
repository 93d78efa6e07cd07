package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"roadmapper/internal/logging"
	"roadmapper/internal/types"
)

// SQLiteStore persists sessions as JSON blobs in a single SQLite table.
// Sessions are written back whole after each turn, so the row is the
// atomic unit of persistence.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at the given path and
// bootstraps the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logging.StoreDebug("Initializing session store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: path}, nil
}

// Save upserts the full session state.
func (st *SQLiteStore) Save(s *types.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session has no id")
	}

	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	_, err = st.db.Exec(
		`INSERT INTO sessions (session_id, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		s.ID, string(blob),
	)
	if err != nil {
		logging.StoreError("Failed to save session %s: %v", s.ID, err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	logging.StoreDebug("Session saved: id=%s messages=%d", s.ID, len(s.Messages))
	return nil
}

// Load returns the session for the id, or ErrSessionNotFound.
func (st *SQLiteStore) Load(id string) (*types.Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var blob string
	err := st.db.QueryRow("SELECT state FROM sessions WHERE session_id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		logging.StoreError("Failed to load session %s: %v", id, err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	logging.StoreDebug("Session loaded: id=%s messages=%d", id, len(s.Messages))
	return &s, nil
}

// Delete removes the session. Deleting an absent id is not an error.
func (st *SQLiteStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := st.db.Exec("DELETE FROM sessions WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns all stored session ids, most recently updated first.
func (st *SQLiteStore) List() ([]string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	rows, err := st.db.Query("SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the database handle.
func (st *SQLiteStore) Close() error {
	return st.db.Close()
}
