package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/store"
)

// fakeClient is an in-memory gateway.Client. Every method can be forced to
// fail via err; successful creates assign sequential server ids starting at
// nextID.
type fakeClient struct {
	err    error
	nextID int64

	serverRounds  []models.Round
	serverCourses []models.Course
	serverBag     []models.Club

	createRoundCalls  int
	updateRoundCalls  int
	deleteRoundCalls  int
	createCourseCalls int
	updateCourseCalls int
	updateHoleCalls   int
	replaceBagCalls   int
}

func newFakeClient() *fakeClient {
	return &fakeClient{nextID: 101}
}

func (f *fakeClient) assignID() *int64 {
	id := f.nextID
	f.nextID++
	return &id
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.err }

func (f *fakeClient) ListRounds(ctx context.Context) ([]models.Round, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.serverRounds, nil
}

func (f *fakeClient) CreateRound(ctx context.Context, rd models.Round) (*models.Round, error) {
	f.createRoundCalls++
	if f.err != nil {
		return nil, f.err
	}
	rd.ServerID = f.assignID()
	f.serverRounds = append(f.serverRounds, rd)
	return &rd, nil
}

func (f *fakeClient) UpdateRound(ctx context.Context, rd models.Round) (*models.Round, error) {
	f.updateRoundCalls++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.serverRounds {
		if f.serverRounds[i].ServerID != nil && rd.ServerID != nil &&
			*f.serverRounds[i].ServerID == *rd.ServerID {
			f.serverRounds[i] = rd
			return &rd, nil
		}
	}
	return &rd, nil
}

func (f *fakeClient) DeleteRound(ctx context.Context, serverID int64) error {
	f.deleteRoundCalls++
	if f.err != nil {
		return f.err
	}
	for i := range f.serverRounds {
		if f.serverRounds[i].ServerID != nil && *f.serverRounds[i].ServerID == serverID {
			f.serverRounds = append(f.serverRounds[:i], f.serverRounds[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.serverCourses, nil
}

func (f *fakeClient) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	f.createCourseCalls++
	if f.err != nil {
		return nil, f.err
	}
	c.ServerID = f.assignID()
	for i := range c.Holes {
		c.Holes[i].ServerID = f.assignID()
	}
	f.serverCourses = append(f.serverCourses, c)
	return &c, nil
}

func (f *fakeClient) UpdateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	f.updateCourseCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &c, nil
}

func (f *fakeClient) UpdateHoleDefinition(ctx context.Context, hd models.HoleDefinition) (*models.HoleDefinition, error) {
	f.updateHoleCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &hd, nil
}

func (f *fakeClient) GetBag(ctx context.Context) ([]models.Club, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.serverBag, nil
}

func (f *fakeClient) ReplaceBag(ctx context.Context, clubs []models.Club) ([]models.Club, error) {
	f.replaceBagCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Club, len(clubs))
	for i, c := range clubs {
		if c.ServerID == nil {
			c.ServerID = f.assignID()
		}
		out[i] = c
	}
	f.serverBag = out
	return out, nil
}

func setupStores(t *testing.T) *store.Stores {
	t.Helper()
	stores, err := store.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func countQueueItems(t *testing.T, stores *store.Stores, entity models.EntityKind, entityID int64) int {
	t.Helper()
	items, err := stores.Queue.All(context.Background())
	require.NoError(t, err)
	n := 0
	for _, it := range items {
		if it.Entity == entity && it.EntityID == entityID {
			n++
		}
	}
	return n
}

var errBoom = fmt.Errorf("%w: connection refused", common.ErrNetwork)
