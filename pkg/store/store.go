// Package store persists receipts between minting and export. Two
// backends share one schema: SQLite for local single-node use and
// Postgres for a kernel deployment.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/evidentsys/evident/pkg/contracts"
)

// ErrNotFound is returned when no receipt matches a lookup.
var ErrNotFound = errors.New("receipt not found")

// ReceiptStore persists and retrieves receipts grouped by session.
type ReceiptStore interface {
	Store(ctx context.Context, sessionID string, r *contracts.Receipt) error
	GetByReceiptID(ctx context.Context, receiptID string) (*contracts.Receipt, error)
	// GetReceipts returns a session's chain ordered by lamport_clock.
	GetReceipts(ctx context.Context, sessionID string) ([]*contracts.Receipt, error)
	// ListSessions derives session summaries from the stored chains.
	ListSessions(ctx context.Context) ([]contracts.Session, error)
	Close() error
}

// Open selects a backend by URL: postgres:// URLs get the Postgres
// store, anything else is treated as a SQLite file path.
func Open(databaseURL string) (ReceiptStore, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return NewPostgresReceiptStore(db), nil
	}
	db, err := sql.Open("sqlite", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLiteReceiptStore(db)
}
