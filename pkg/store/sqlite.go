package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/evidentsys/evident/pkg/contracts"
)

type SQLiteReceiptStore struct {
	db *sql.DB
}

func NewSQLiteReceiptStore(db *sql.DB) (*SQLiteReceiptStore, error) {
	s := &SQLiteReceiptStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteReceiptStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS receipts (
        receipt_id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        decision_id TEXT,
        effect_id TEXT,
        status TEXT NOT NULL,
        reason_code TEXT NOT NULL,
        output_hash TEXT,
        blob_hash TEXT NOT NULL,
        prev_hash TEXT NOT NULL DEFAULT '',
        lamport_clock INTEGER NOT NULL DEFAULT 0,
        signature TEXT NOT NULL,
        principal TEXT NOT NULL,
        timestamp TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_receipts_session ON receipts (session_id, lamport_clock);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteReceiptStore) Store(ctx context.Context, sessionID string, r *contracts.Receipt) error {
	query := `INSERT INTO receipts (
		receipt_id, session_id, decision_id, effect_id, status, reason_code, output_hash, blob_hash, prev_hash, lamport_clock, signature, principal, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return execStore(ctx, s.db, query, sessionID, r)
}

func (s *SQLiteReceiptStore) GetByReceiptID(ctx context.Context, receiptID string) (*contracts.Receipt, error) {
	query := selectColumns + ` FROM receipts WHERE receipt_id = ?`
	return queryOne(ctx, s.db, query, receiptID)
}

func (s *SQLiteReceiptStore) GetReceipts(ctx context.Context, sessionID string) ([]*contracts.Receipt, error) {
	query := selectColumns + ` FROM receipts WHERE session_id = ? ORDER BY lamport_clock ASC`
	return queryChain(ctx, s.db, query, sessionID)
}

func (s *SQLiteReceiptStore) ListSessions(ctx context.Context) ([]contracts.Session, error) {
	query := `
        SELECT session_id, MIN(timestamp), COUNT(*), MAX(lamport_clock)
        FROM receipts
        GROUP BY session_id
        ORDER BY MIN(timestamp) ASC`
	return querySessions(ctx, s.db, query)
}

func (s *SQLiteReceiptStore) Close() error {
	return s.db.Close()
}
