package clubs

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/migrations"
	"github.com/fairwaylabs/scorecard/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func TestInsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Club{Name: "Driver", Category: models.ClubDriver, Status: models.StatusPending}
	id, err := r.Insert(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Driver", got.Name)
	assert.Equal(t, models.ClubDriver, got.Category)
	assert.Nil(t, got.ServerID)

	_, err = r.GetByID(ctx, 999)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetAll_OrderedByCategoryAndName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, c := range []models.Club{
		{Name: "PW", Category: models.ClubWedge, Status: models.StatusPending},
		{Name: "Driver", Category: models.ClubDriver, Status: models.StatusPending},
		{Name: "7 Iron", Category: models.ClubIron, Status: models.StatusPending},
		{Name: "5 Iron", Category: models.ClubIron, Status: models.StatusPending},
	} {
		club := c
		_, err := r.Insert(ctx, &club)
		require.NoError(t, err)
	}

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Driver", all[0].Name)
	assert.Equal(t, "5 Iron", all[1].Name)
	assert.Equal(t, "7 Iron", all[2].Name)
	assert.Equal(t, "PW", all[3].Name)
}

func TestSetSyncState(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Club{Name: "Putter", Category: models.ClubPutter, Status: models.StatusPending}
	_, err := r.Insert(ctx, c)
	require.NoError(t, err)

	serverID := int64(42)
	require.NoError(t, r.SetSyncState(ctx, c.ID, models.StatusSynced, &serverID))

	got, err := r.GetByServerID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, models.StatusSynced, got.Status)
}

func TestDeleteAndDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := &models.Club{Name: "A", Category: models.ClubIron, Status: models.StatusPending}
	b := &models.Club{Name: "B", Category: models.ClubIron, Status: models.StatusPending}
	_, err := r.Insert(ctx, a)
	require.NoError(t, err)
	_, err = r.Insert(ctx, b)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, a.ID))
	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, r.DeleteAll(ctx))
	all, err = r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListDefinitions_Seeded(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	defs, err := r.ListDefinitions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, defs)

	for _, d := range defs {
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Category)
	}
}
