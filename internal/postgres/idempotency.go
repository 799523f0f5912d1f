package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/imrishuroy/royal-pizza/internal/idempotency"
)

// IdempotencyStore keeps Idempotency-Key records in the idempotency_keys
// table with the same claim rules as the DynamoDB store.
type IdempotencyStore struct {
	db        Pool
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewIdempotencyStore returns an IdempotencyStore whose keys expire after ttlWindow.
func NewIdempotencyStore(db Pool, ttlWindow time.Duration) *IdempotencyStore {
	return &IdempotencyStore{db: db, ttlWindow: ttlWindow, nowFunc: time.Now}
}

// Claim inserts an IN_PROGRESS row for key. An existing row is taken over
// only when it failed with the same fingerprint or has expired.
func (s *IdempotencyStore) Claim(ctx context.Context, key, fingerprint string) (bool, error) {
	now := s.nowFunc().UTC()
	tag, err := s.db.Exec(ctx,
		`INSERT INTO idempotency_keys
			(idempotency_key, status, fingerprint, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $4, $5)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			status = EXCLUDED.status,
			fingerprint = EXCLUDED.fingerprint,
			order_id = '',
			response_body = '',
			response_status = 0,
			note = '',
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
		WHERE (idempotency_keys.status = $6 AND idempotency_keys.fingerprint = EXCLUDED.fingerprint)
			OR idempotency_keys.expires_at < EXCLUDED.created_at`,
		key, idempotency.StatusInProgress, fingerprint, now, now.Add(s.ttlWindow), idempotency.StatusFailed)
	if err != nil {
		return false, errors.Wrap(err, "claim idempotency key")
	}
	return tag.RowsAffected() == 1, nil
}

// Get returns the record for key, or nil when there is none.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*idempotency.Record, error) {
	var (
		rec       idempotency.Record
		expiresAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT idempotency_key, status, fingerprint, order_id, response_body, response_status,
			note, created_at, updated_at, expires_at
		FROM idempotency_keys WHERE idempotency_key = $1`, key).
		Scan(&rec.IdempotencyKey, &rec.Status, &rec.Fingerprint, &rec.OrderID, &rec.ResponseBody,
			&rec.ResponseStatus, &rec.Note, &rec.CreatedAt, &rec.UpdatedAt, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get idempotency key")
	}
	rec.ExpiresAt = expiresAt.Unix()
	return &rec, nil
}

// MarkDone stores the response to replay for key.
func (s *IdempotencyStore) MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error {
	return s.update(ctx,
		`UPDATE idempotency_keys
		SET status = $2, order_id = $3, response_body = $4, response_status = $5, updated_at = $6
		WHERE idempotency_key = $1`,
		key, idempotency.StatusDone, orderID, responseBody, responseStatus, s.nowFunc().UTC())
}

// MarkFailed records that the attempt holding key failed so it can be retried.
func (s *IdempotencyStore) MarkFailed(ctx context.Context, key, note string) error {
	return s.update(ctx,
		`UPDATE idempotency_keys SET status = $2, note = $3, updated_at = $4 WHERE idempotency_key = $1`,
		key, idempotency.StatusFailed, note, s.nowFunc().UTC())
}

func (s *IdempotencyStore) update(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrapf(err, "update idempotency key %v", args[0])
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("idempotency key %v not found", args[0])
	}
	return nil
}
