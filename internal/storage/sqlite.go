package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/tiermaker/internal/logging"
	"github.com/rs/zerolog"
)

var (
	// ErrOpen is returned when a store file cannot be opened or created.
	ErrOpen = errors.New("cannot open store")
	// ErrNotOpen is returned by Load and Save on a closed store.
	ErrNotOpen = errors.New("store is not open")
	// ErrConsistency is returned when stored rows do not describe a valid tier list.
	ErrConsistency = errors.New("inconsistent tier list data")
	// ErrThumbnail is returned when a thumbnail file cannot be read or written.
	ErrThumbnail = errors.New("thumbnail i/o failed")
)

// Store handles all database operations for one tier list file.
// A Store starts closed; Open, Load, Save and Close are serialized by an
// internal lock so reopening never races with a query in flight.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// New creates a closed Store
func New() *Store {
	return &Store{}
}

// Open creates a Store connected to the database at dbPath
func Open(ctx context.Context, dbPath string) (*Store, error) {
	s := New()
	if err := s.Open(ctx, dbPath); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects to the database at dbPath, creating the file if missing.
// A previously open connection is closed first.
func (s *Store) Open(ctx context.Context, dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger(ctx)

	if prev := s.path; s.db != nil {
		if err := s.closeLocked(); err != nil {
			return fmt.Errorf("%w: closing %s: %w", ErrOpen, prev, err)
		}
		log.Debug().Str("path", prev).Msg("previous store closed")
	}
	if dbPath == "" {
		return fmt.Errorf("%w: database path cannot be empty", ErrOpen)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %s: %w", ErrOpen, dbPath, err)
	}

	s.db = db
	s.path = dbPath
	log.Info().Str("path", dbPath).Msg("store opened")
	return nil
}

func logger(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(logging.WithComponent(ctx, "storage"))
}

// Close closes the database connection. Closing a closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Store) closeLocked() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.path = ""
	return err
}

// Path returns the path of the open database, or "" when closed
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// IsOpen reports whether the store holds a connection
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}
