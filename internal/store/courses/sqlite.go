package courses

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

const courseColumns = `id, server_id, name, city, state, lat, lng, stage, sync_status`

func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	c := &models.Course{}
	var serverID sql.NullInt64
	err := row.Scan(&c.ID, &serverID, &c.Name, &c.City, &c.State, &c.Lat, &c.Lng, &c.Stage, &c.Status)
	if err != nil {
		return nil, err
	}
	if serverID.Valid {
		c.ServerID = &serverID.Int64
	}
	return c, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Course) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (server_id, name, city, state, lat, lng, stage, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ServerID, c.Name, c.City, c.State, c.Lat, c.Lng, c.Stage, c.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert course: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get course id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, serverID int64) (*models.Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE server_id = ?`, serverID)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by server id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select courses: %w", err)
	}
	defer rows.Close()

	var result []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	return r.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY name`)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Course, error) {
	return r.queryCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE sync_status = ? ORDER BY name`, status)
}

func (r *SQLiteRepository) ListByStage(ctx context.Context, stage models.CourseStage) ([]models.Course, error) {
	return r.queryCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE stage = ? ORDER BY name`, stage)
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Course) error {
	err := dbx.ExecExpectingRow(ctx, r.db, `
		UPDATE courses SET server_id = ?, name = ?, city = ?, state = ?, lat = ?, lng = ?, stage = ?, sync_status = ?
		WHERE id = ?`,
		c.ServerID, c.Name, c.City, c.State, c.Lat, c.Lng, c.Stage, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error {
	err := dbx.ExecExpectingRow(ctx, r.db,
		`UPDATE courses SET sync_status = ?, server_id = COALESCE(?, server_id) WHERE id = ?`,
		status, serverID, id)
	if err != nil {
		return fmt.Errorf("failed to set course sync state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}
