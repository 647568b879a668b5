package holes

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

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

func insertRound(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO rounds (course_name, date, total_score, created_at, sync_status)
		VALUES ('Test', '2024-01-01', 0, ?, 'pending')`, time.Now().UTC())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestUpsert_InsertThenOverwrite(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	h := &models.Hole{RoundID: roundID, Number: 1, Par: 4, Score: 5, Putts: 2,
		Fairway: models.FairwayLeft, GIR: models.GIRShort, Clubs: []int64{1, 5, 9}}
	require.NoError(t, r.Upsert(ctx, h))
	assert.NotZero(t, h.ID)
	firstID := h.ID

	// same (round, number): exactly one record, second call's values win
	h2 := &models.Hole{RoundID: roundID, Number: 1, Par: 4, Score: 4, Putts: 1,
		Fairway: models.FairwayHit, GIR: models.GIRHit, Proximity: 3.5}
	require.NoError(t, r.Upsert(ctx, h2))
	assert.Equal(t, firstID, h2.ID)

	hs, err := r.ListByRound(ctx, roundID)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, 4, hs[0].Score)
	assert.Equal(t, 1, hs[0].Putts)
	assert.Equal(t, models.FairwayHit, hs[0].Fairway)
	assert.Equal(t, 3.5, hs[0].Proximity)
	assert.Empty(t, hs[0].Clubs)
}

func TestGetByRoundAndNumber(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	require.NoError(t, r.Upsert(ctx, &models.Hole{RoundID: roundID, Number: 3, Par: 3, Score: 3, Putts: 2}))

	got, err := r.GetByRoundAndNumber(ctx, roundID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Par)

	_, err = r.GetByRoundAndNumber(ctx, roundID, 4)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListByRound_OrderedByNumber(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, r.Upsert(ctx, &models.Hole{RoundID: roundID, Number: n, Par: 4, Score: 4, Putts: 2}))
	}

	hs, err := r.ListByRound(ctx, roundID)
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, 1, hs[0].Number)
	assert.Equal(t, 2, hs[1].Number)
	assert.Equal(t, 3, hs[2].Number)
}

func TestSumScores(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	total, err := r.SumScores(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	sum := 0
	for n := 1; n <= 18; n++ {
		score := 3 + n%3
		sum += score
		require.NoError(t, r.Upsert(ctx, &models.Hole{RoundID: roundID, Number: n, Par: 4, Score: score, Putts: 2}))
	}

	total, err = r.SumScores(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, sum, total)
}

func TestClubSequenceRoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	clubs := []int64{2, 7, 7, 12}
	require.NoError(t, r.Upsert(ctx, &models.Hole{RoundID: roundID, Number: 1, Par: 5, Score: 6, Putts: 2, Clubs: clubs}))

	got, err := r.GetByRoundAndNumber(ctx, roundID, 1)
	require.NoError(t, err)
	assert.Equal(t, clubs, got.Clubs)
}

func TestDeleteByRound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	roundID := insertRound(t, db)

	require.NoError(t, r.Upsert(ctx, &models.Hole{RoundID: roundID, Number: 1, Par: 4, Score: 4, Putts: 2}))
	require.NoError(t, r.DeleteByRound(ctx, roundID))

	hs, err := r.ListByRound(ctx, roundID)
	require.NoError(t, err)
	assert.Empty(t, hs)
}
