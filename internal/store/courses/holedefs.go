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

// SQLiteHoleDefinitionRepository implements HoleDefinitionRepository using a
// DBTX (either *sql.DB or *sql.Tx).
type SQLiteHoleDefinitionRepository struct {
	db dbx.DBTX
}

// NewSQLiteHoleDefinitionRepository returns a repository bound to the given DBTX.
func NewSQLiteHoleDefinitionRepository(db dbx.DBTX) *SQLiteHoleDefinitionRepository {
	return &SQLiteHoleDefinitionRepository{db: db}
}

const holeDefColumns = `id, server_id, course_id, number, par, handicap,
	front_lat, front_lng, middle_lat, middle_lng, back_lat, back_lng, geometry, tee_boxes`

func scanHoleDef(row interface{ Scan(...any) error }) (*models.HoleDefinition, error) {
	hd := &models.HoleDefinition{}
	var serverID sql.NullInt64
	var geometry, teeBoxes sql.NullString
	err := row.Scan(&hd.ID, &serverID, &hd.CourseID, &hd.Number, &hd.Par, &hd.Handicap,
		&hd.Front.Lat, &hd.Front.Lng, &hd.Middle.Lat, &hd.Middle.Lng,
		&hd.Back.Lat, &hd.Back.Lng, &geometry, &teeBoxes)
	if err != nil {
		return nil, err
	}
	if serverID.Valid {
		hd.ServerID = &serverID.Int64
	}
	if geometry.Valid {
		hd.Geometry = []byte(geometry.String)
	}
	if teeBoxes.Valid {
		hd.TeeBoxes = []byte(teeBoxes.String)
	}
	return hd, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (r *SQLiteHoleDefinitionRepository) Upsert(ctx context.Context, hd *models.HoleDefinition) error {
	query := `
		INSERT INTO hole_definitions (server_id, course_id, number, par, handicap,
			front_lat, front_lng, middle_lat, middle_lng, back_lat, back_lng, geometry, tee_boxes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_id, number) DO UPDATE SET
			server_id = COALESCE(excluded.server_id, hole_definitions.server_id),
			par = excluded.par,
			handicap = excluded.handicap,
			front_lat = excluded.front_lat,
			front_lng = excluded.front_lng,
			middle_lat = excluded.middle_lat,
			middle_lng = excluded.middle_lng,
			back_lat = excluded.back_lat,
			back_lng = excluded.back_lng,
			geometry = excluded.geometry,
			tee_boxes = excluded.tee_boxes
	`
	_, err := r.db.ExecContext(ctx, query,
		hd.ServerID, hd.CourseID, hd.Number, hd.Par, hd.Handicap,
		hd.Front.Lat, hd.Front.Lng, hd.Middle.Lat, hd.Middle.Lng,
		hd.Back.Lat, hd.Back.Lng, nullableJSON(hd.Geometry), nullableJSON(hd.TeeBoxes))
	if err != nil {
		return fmt.Errorf("failed to upsert hole definition: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM hole_definitions WHERE course_id = ? AND number = ?`,
		hd.CourseID, hd.Number).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to read back hole definition id: %w", err)
	}
	hd.ID = id
	return nil
}

func (r *SQLiteHoleDefinitionRepository) GetByID(ctx context.Context, id int64) (*models.HoleDefinition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+holeDefColumns+` FROM hole_definitions WHERE id = ?`, id)
	hd, err := scanHoleDef(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hole definition: %w", err)
	}
	return hd, nil
}

func (r *SQLiteHoleDefinitionRepository) GetByNumber(ctx context.Context, courseID int64, number int) (*models.HoleDefinition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+holeDefColumns+` FROM hole_definitions WHERE course_id = ? AND number = ?`,
		courseID, number)
	hd, err := scanHoleDef(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hole definition: %w", err)
	}
	return hd, nil
}

func (r *SQLiteHoleDefinitionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.HoleDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+holeDefColumns+` FROM hole_definitions WHERE course_id = ? ORDER BY number`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to select hole definitions: %w", err)
	}
	defer rows.Close()

	var result []models.HoleDefinition
	for rows.Next() {
		hd, err := scanHoleDef(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *hd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteHoleDefinitionRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM hole_definitions WHERE course_id = ?`, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete hole definitions: %w", err)
	}
	return nil
}
