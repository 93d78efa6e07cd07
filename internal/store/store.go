// Package store persists conversation sessions between turns. The
// engine treats persistence as an opaque key-value contract keyed by
// session id; the SQLite implementation here is what the CLI wires in.
package store

import (
	"errors"

	"roadmapper/internal/types"
)

// ErrSessionNotFound is returned when no session exists for the id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the persistence contract for sessions, covering the
// conversation log, roadmap, work queue, and phase.
type SessionStore interface {
	Save(s *types.Session) error
	Load(id string) (*types.Session, error)
	Delete(id string) error
	List() ([]string, error)
	Close() error
}
