package holes

import (
	"context"
	"database/sql"
	"encoding/json"
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

const holeColumns = `id, round_id, number, par, score, putts, fairway, gir, water_hazard, bunker, proximity, clubs`

func marshalClubs(clubs []int64) (string, error) {
	if clubs == nil {
		clubs = []int64{}
	}
	b, err := json.Marshal(clubs)
	if err != nil {
		return "", fmt.Errorf("failed to encode club sequence: %w", err)
	}
	return string(b), nil
}

func scanHole(row interface{ Scan(...any) error }) (*models.Hole, error) {
	h := &models.Hole{}
	var clubsJSON string
	err := row.Scan(&h.ID, &h.RoundID, &h.Number, &h.Par, &h.Score, &h.Putts,
		&h.Fairway, &h.GIR, &h.WaterHazard, &h.Bunker, &h.Proximity, &clubsJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(clubsJSON), &h.Clubs); err != nil {
		return nil, fmt.Errorf("failed to decode club sequence: %w", err)
	}
	return h, nil
}

// Upsert keys on (round_id, number); on conflict every result field is
// replaced with the new values.
func (r *SQLiteRepository) Upsert(ctx context.Context, h *models.Hole) error {
	clubsJSON, err := marshalClubs(h.Clubs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO holes (round_id, number, par, score, putts, fairway, gir, water_hazard, bunker, proximity, clubs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(round_id, number) DO UPDATE SET
			par = excluded.par,
			score = excluded.score,
			putts = excluded.putts,
			fairway = excluded.fairway,
			gir = excluded.gir,
			water_hazard = excluded.water_hazard,
			bunker = excluded.bunker,
			proximity = excluded.proximity,
			clubs = excluded.clubs
	`
	_, err = r.db.ExecContext(ctx, query,
		h.RoundID, h.Number, h.Par, h.Score, h.Putts, h.Fairway, h.GIR,
		h.WaterHazard, h.Bunker, h.Proximity, clubsJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert hole: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM holes WHERE round_id = ? AND number = ?`, h.RoundID, h.Number).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to read back hole id: %w", err)
	}
	h.ID = id
	return nil
}

func (r *SQLiteRepository) GetByRoundAndNumber(ctx context.Context, roundID int64, number int) (*models.Hole, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+holeColumns+` FROM holes WHERE round_id = ? AND number = ?`, roundID, number)
	h, err := scanHole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hole: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) ListByRound(ctx context.Context, roundID int64) ([]models.Hole, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+holeColumns+` FROM holes WHERE round_id = ? ORDER BY number`, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to select holes: %w", err)
	}
	defer rows.Close()

	var result []models.Hole
	for rows.Next() {
		h, err := scanHole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SumScores(ctx context.Context, roundID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM holes WHERE round_id = ?`, roundID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum hole scores: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) DeleteByRound(ctx context.Context, roundID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holes WHERE round_id = ?`, roundID); err != nil {
		return fmt.Errorf("failed to delete holes: %w", err)
	}
	return nil
}
