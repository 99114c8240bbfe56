package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tipjar/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tip_attempts (
	id            TEXT PRIMARY KEY,
	staff_name    TEXT NOT NULL,
	recipient     TEXT NOT NULL,
	amount_wei    NUMERIC(78, 0) NOT NULL,
	message       TEXT NOT NULL,
	status        TEXT NOT NULL,
	tx_hash       TEXT,
	error_kind    TEXT,
	error_message TEXT,
	chain_id      BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
)`

// Store journals tip attempts in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the tip_attempts table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// RecordAttempt inserts or updates an attempt. A stored tx hash is never cleared.
func (s *Store) RecordAttempt(ctx context.Context, record model.AttemptRecord) error {
	if record.ID == "" {
		return fmt.Errorf("attempt id required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tip_attempts (
			id, staff_name, recipient, amount_wei, message, status, tx_hash,
			error_kind, error_message, chain_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			tx_hash = COALESCE(EXCLUDED.tx_hash, tip_attempts.tx_hash),
			error_kind = EXCLUDED.error_kind,
			error_message = EXCLUDED.error_message,
			chain_id = EXCLUDED.chain_id,
			updated_at = EXCLUDED.updated_at
	`,
		record.ID,
		record.StaffName,
		record.Recipient,
		nonEmpty(record.AmountWei, "0"),
		record.Message,
		record.Status,
		record.TxHash,
		record.ErrorKind,
		record.ErrorMessage,
		int64(record.ChainID),
		record.CreatedAt,
		record.UpdatedAt,
	)
	return err
}

// LoadAttempt returns the stored attempt for id.
func (s *Store) LoadAttempt(ctx context.Context, id string) (model.AttemptRecord, bool, error) {
	var (
		record       model.AttemptRecord
		txHash       *string
		errorKind    *string
		errorMessage *string
		chainID      int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, staff_name, recipient, amount_wei::text, message, status, tx_hash,
			error_kind, error_message, chain_id, created_at, updated_at
		FROM tip_attempts WHERE id=$1
	`, id)
	err := row.Scan(
		&record.ID,
		&record.StaffName,
		&record.Recipient,
		&record.AmountWei,
		&record.Message,
		&record.Status,
		&txHash,
		&errorKind,
		&errorMessage,
		&chainID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AttemptRecord{}, false, nil
		}
		return model.AttemptRecord{}, false, err
	}
	record.TxHash = deref(txHash)
	record.ErrorKind = deref(errorKind)
	record.ErrorMessage = deref(errorMessage)
	record.ChainID = uint64(chainID)
	return record, true, nil
}

func nonEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
