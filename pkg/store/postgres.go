package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/evidentsys/evident/pkg/contracts"
)

// PostgresReceiptStore is the durable SQL-based backend. Schema
// creation is a deployment concern; see migrate for the expected table.
type PostgresReceiptStore struct {
	db *sql.DB
}

func NewPostgresReceiptStore(db *sql.DB) *PostgresReceiptStore {
	return &PostgresReceiptStore{db: db}
}

func (s *PostgresReceiptStore) Store(ctx context.Context, sessionID string, r *contracts.Receipt) error {
	query := `INSERT INTO receipts (
		receipt_id, session_id, decision_id, effect_id, status, reason_code, output_hash, blob_hash, prev_hash, lamport_clock, signature, principal, timestamp
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (receipt_id) DO NOTHING`
	return execStore(ctx, s.db, query, sessionID, r)
}

func (s *PostgresReceiptStore) GetByReceiptID(ctx context.Context, receiptID string) (*contracts.Receipt, error) {
	query := selectColumns + ` FROM receipts WHERE receipt_id = $1`
	return queryOne(ctx, s.db, query, receiptID)
}

func (s *PostgresReceiptStore) GetReceipts(ctx context.Context, sessionID string) ([]*contracts.Receipt, error) {
	query := selectColumns + ` FROM receipts WHERE session_id = $1 ORDER BY lamport_clock ASC`
	return queryChain(ctx, s.db, query, sessionID)
}

func (s *PostgresReceiptStore) ListSessions(ctx context.Context) ([]contracts.Session, error) {
	query := `
        SELECT session_id, MIN(timestamp), COUNT(*), MAX(lamport_clock)
        FROM receipts
        GROUP BY session_id
        ORDER BY MIN(timestamp) ASC`
	return querySessions(ctx, s.db, query)
}

func (s *PostgresReceiptStore) Close() error {
	return s.db.Close()
}

// --- shared query helpers ---

const selectColumns = `SELECT receipt_id, decision_id, effect_id, status, reason_code, output_hash, blob_hash, prev_hash, lamport_clock, signature, principal, timestamp`

func execStore(ctx context.Context, db *sql.DB, query, sessionID string, r *contracts.Receipt) error {
	_, err := db.ExecContext(ctx, query,
		r.ReceiptID, sessionID, r.DecisionID, r.EffectID, r.Status, r.ReasonCode,
		r.OutputHash, r.BlobHash, r.PrevHash, r.LamportClock, r.Signature, r.Principal, r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func scanReceipt(row interface{ Scan(...any) error }) (*contracts.Receipt, error) {
	var r contracts.Receipt
	var timestamp sql.NullString
	err := row.Scan(&r.ReceiptID, &r.DecisionID, &r.EffectID, &r.Status, &r.ReasonCode,
		&r.OutputHash, &r.BlobHash, &r.PrevHash, &r.LamportClock, &r.Signature, &r.Principal, &timestamp)
	if err != nil {
		return nil, err
	}
	r.Timestamp = timestamp.String
	return &r, nil
}

func queryOne(ctx context.Context, db *sql.DB, query string, arg any) (*contracts.Receipt, error) {
	r, err := scanReceipt(db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func queryChain(ctx context.Context, db *sql.DB, query string, sessionID string) ([]*contracts.Receipt, error) {
	rows, err := db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receipts []*contracts.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}

func querySessions(ctx context.Context, db *sql.DB, query string) ([]contracts.Session, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []contracts.Session
	for rows.Next() {
		var s contracts.Session
		var createdAt sql.NullString
		if err := rows.Scan(&s.SessionID, &createdAt, &s.ReceiptCount, &s.LastLamportClock); err != nil {
			return nil, err
		}
		s.CreatedAt = createdAt.String
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
