package rounds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwaylabs/scorecard/internal/common"
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

const roundColumns = `id, server_id, course_id, course_server_id, course_name, date, total_score, created_at, ended_at, sync_status`

func scanRound(row interface{ Scan(...any) error }) (*models.Round, error) {
	rd := &models.Round{}
	var serverID, courseID, courseServerID sql.NullInt64
	var endedAt sql.NullTime
	err := row.Scan(&rd.ID, &serverID, &courseID, &courseServerID, &rd.CourseName,
		&rd.Date, &rd.TotalScore, &rd.CreatedAt, &endedAt, &rd.Status)
	if err != nil {
		return nil, err
	}
	if serverID.Valid {
		rd.ServerID = &serverID.Int64
	}
	if courseID.Valid {
		rd.CourseID = &courseID.Int64
	}
	if courseServerID.Valid {
		rd.CourseServerID = &courseServerID.Int64
	}
	if endedAt.Valid {
		t := endedAt.Time
		rd.EndedAt = &t
	}
	return rd, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rd *models.Round) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rounds (server_id, course_id, course_server_id, course_name, date, total_score, created_at, ended_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ServerID, rd.CourseID, rd.CourseServerID, rd.CourseName, rd.Date,
		rd.TotalScore, rd.CreatedAt, rd.EndedAt, rd.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert round: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get round id: %w", err)
	}
	rd.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = ?`, id)
	rd, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return rd, nil
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, serverID int64) (*models.Round, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE server_id = ?`, serverID)
	rd, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round by server id: %w", err)
	}
	return rd, nil
}

func (r *SQLiteRepository) queryRounds(ctx context.Context, query string, args ...any) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select rounds: %w", err)
	}
	defer rows.Close()

	var result []models.Round
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Round, error) {
	return r.queryRounds(ctx, `SELECT `+roundColumns+` FROM rounds ORDER BY created_at DESC, id DESC`)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Round, error) {
	order := `created_at DESC, id DESC`
	if status == models.StatusSynced {
		order = `date DESC, id DESC`
	}
	return r.queryRounds(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE sync_status = ? ORDER BY `+order, status)
}

func (r *SQLiteRepository) Update(ctx context.Context, rd *models.Round) error {
	err := dbx.ExecExpectingRow(ctx, r.db, `
		UPDATE rounds SET server_id = ?, course_id = ?, course_server_id = ?, course_name = ?,
			date = ?, total_score = ?, ended_at = ?, sync_status = ?
		WHERE id = ?`,
		rd.ServerID, rd.CourseID, rd.CourseServerID, rd.CourseName,
		rd.Date, rd.TotalScore, rd.EndedAt, rd.Status, rd.ID)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error {
	err := dbx.ExecExpectingRow(ctx, r.db,
		`UPDATE rounds SET sync_status = ?, server_id = COALESCE(?, server_id) WHERE id = ?`,
		status, serverID, id)
	if err != nil {
		return fmt.Errorf("failed to set round sync state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetTotalScore(ctx context.Context, id int64, total int) error {
	err := dbx.ExecExpectingRow(ctx, r.db,
		`UPDATE rounds SET total_score = ? WHERE id = ?`, total, id)
	if err != nil {
		return fmt.Errorf("failed to set round total score: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return nil
}
