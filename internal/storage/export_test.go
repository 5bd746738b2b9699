package storage

import (
	"context"
	"database/sql"
)

// DB exposes the raw connection to tests in storage_test
func (s *Store) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Migrate runs the schema migrations against the open connection
func (s *Store) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return migrate(ctx, s.db)
}
