package clubs

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

const clubColumns = `id, server_id, name, category, sync_status`

func scanClub(row interface{ Scan(...any) error }) (*models.Club, error) {
	c := &models.Club{}
	var serverID sql.NullInt64
	if err := row.Scan(&c.ID, &serverID, &c.Name, &c.Category, &c.Status); err != nil {
		return nil, err
	}
	if serverID.Valid {
		c.ServerID = &serverID.Int64
	}
	return c, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Club) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clubs (server_id, name, category, sync_status) VALUES (?, ?, ?, ?)`,
		c.ServerID, c.Name, c.Category, c.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert club: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get club id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = ?`, id)
	c, err := scanClub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, serverID int64) (*models.Club, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE server_id = ?`, serverID)
	c, err := scanClub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club by server id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) queryClubs(ctx context.Context, query string, args ...any) ([]models.Club, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select clubs: %w", err)
	}
	defer rows.Close()

	var result []models.Club
	for rows.Next() {
		c, err := scanClub(rows)
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

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Club, error) {
	return r.queryClubs(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY category, name`)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.Club, error) {
	return r.queryClubs(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE sync_status = ? ORDER BY category, name`, status)
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Club) error {
	err := dbx.ExecExpectingRow(ctx, r.db,
		`UPDATE clubs SET server_id = ?, name = ?, category = ?, sync_status = ? WHERE id = ?`,
		c.ServerID, c.Name, c.Category, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update club: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetSyncState(ctx context.Context, id int64, status models.SyncStatus, serverID *int64) error {
	err := dbx.ExecExpectingRow(ctx, r.db,
		`UPDATE clubs SET sync_status = ?, server_id = COALESCE(?, server_id) WHERE id = ?`,
		status, serverID, id)
	if err != nil {
		return fmt.Errorf("failed to set club sync state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete club: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clubs`); err != nil {
		return fmt.Errorf("failed to empty bag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDefinitions(ctx context.Context) ([]models.ClubDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, loft FROM club_definitions ORDER BY category, loft`)
	if err != nil {
		return nil, fmt.Errorf("failed to select club definitions: %w", err)
	}
	defer rows.Close()

	var result []models.ClubDefinition
	for rows.Next() {
		var d models.ClubDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Loft); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
