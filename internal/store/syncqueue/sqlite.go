package syncqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwaylabs/scorecard/internal/dbx"
	"github.com/fairwaylabs/scorecard/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const queueColumns = `id, entity, op, entity_id, payload, attempts, last_error, enqueued_at, next_attempt_at, dead`

func scanItem(row interface{ Scan(...any) error }) (*models.QueueItem, error) {
	it := &models.QueueItem{}
	var nextAttempt sql.NullTime
	err := row.Scan(&it.ID, &it.Entity, &it.Op, &it.EntityID, &it.Payload,
		&it.Attempts, &it.LastError, &it.EnqueuedAt, &nextAttempt, &it.Dead)
	if err != nil {
		return nil, err
	}
	if nextAttempt.Valid {
		it.NextAttemptAt = nextAttempt.Time
	}
	return it, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, item *models.QueueItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (id, entity, op, entity_id, payload, attempts, last_error, enqueued_at, next_attempt_at, dead)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Entity, item.Op, item.EntityID, []byte(item.Payload),
		item.Attempts, item.LastError, item.EnqueuedAt, nullableTime(item.NextAttemptAt), item.Dead)
	if err != nil {
		return fmt.Errorf("failed to enqueue sync item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.QueueItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync queue: %w", err)
	}
	defer rows.Close()

	var result []models.QueueItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Due(ctx context.Context, now time.Time) ([]models.QueueItem, error) {
	return r.queryItems(ctx, `
		SELECT `+queueColumns+` FROM sync_queue
		WHERE dead = 0 AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		ORDER BY enqueued_at, id`, now)
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.QueueItem, error) {
	return r.queryItems(ctx, `SELECT `+queueColumns+` FROM sync_queue ORDER BY enqueued_at, id`)
}

func (r *SQLiteRepository) CountLive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sync_queue WHERE dead = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) HasLive(ctx context.Context, entity models.EntityKind, entityID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM sync_queue WHERE entity = ? AND entity_id = ? AND dead = 0`,
		entity, entityID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to probe sync queue: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove sync item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordFailure(ctx context.Context, id string, lastError string, nextAttempt time.Time) error {
	err := dbx.ExecExpectingRow(ctx, r.db, `
		UPDATE sync_queue SET attempts = attempts + 1, last_error = ?, next_attempt_at = ?
		WHERE id = ?`, lastError, nextAttempt, id)
	if err != nil {
		return fmt.Errorf("failed to record sync failure: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id string, lastError string) error {
	err := dbx.ExecExpectingRow(ctx, r.db, `
		UPDATE sync_queue SET dead = 1, attempts = attempts + 1, last_error = ?
		WHERE id = ?`, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to quarantine sync item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RefreshPayload(ctx context.Context, entity models.EntityKind, entityID int64, payload json.RawMessage) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue SET payload = ? WHERE entity = ? AND entity_id = ? AND dead = 0`,
		[]byte(payload), entity, entityID)
	if err != nil {
		return false, fmt.Errorf("failed to refresh queued payload: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) DeleteForEntity(ctx context.Context, entity models.EntityKind, entityID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE entity = ? AND entity_id = ?`,
		entity, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete queued items: %w", err)
	}
	return nil
}
