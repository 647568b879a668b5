package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/netx"
	"github.com/fairwaylabs/scorecard/internal/store"
)

func newClubServiceOffline(t *testing.T, stores *store.Stores, remote *fakeClient) *ClubService {
	t.Helper()
	return NewClubService(stores.DB, stores.Clubs, stores.Queue,
		remote, &netx.StubChecker{Online: false}, testLogger())
}

func TestAddClub(t *testing.T) {
	stores := setupStores(t)
	svc := newClubServiceOffline(t, stores, newFakeClient())
	ctx := context.Background()

	c, err := svc.AddClub(ctx, "Driver", models.ClubDriver)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Nil(t, c.ServerID)

	// the whole bag syncs as one queue item
	assert.Equal(t, 1, countQueueItems(t, stores, models.EntityClub, models.BagEntityID))
}

func TestAddClub_Validation(t *testing.T) {
	stores := setupStores(t)
	svc := newClubServiceOffline(t, stores, newFakeClient())
	ctx := context.Background()

	_, err := svc.AddClub(ctx, "", models.ClubIron)
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = svc.AddClub(ctx, "Shovel", "shovel")
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestAddClub_SecondAddRefreshesBagItem(t *testing.T) {
	stores := setupStores(t)
	svc := newClubServiceOffline(t, stores, newFakeClient())
	ctx := context.Background()

	_, err := svc.AddClub(ctx, "Driver", models.ClubDriver)
	require.NoError(t, err)
	_, err = svc.AddClub(ctx, "Putter", models.ClubPutter)
	require.NoError(t, err)

	assert.Equal(t, 1, countQueueItems(t, stores, models.EntityClub, models.BagEntityID))

	items, err := stores.Queue.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, string(items[0].Payload), "Driver")
	assert.Contains(t, string(items[0].Payload), "Putter")
}

func TestRemoveClub(t *testing.T) {
	stores := setupStores(t)
	svc := newClubServiceOffline(t, stores, newFakeClient())
	ctx := context.Background()

	c, err := svc.AddClub(ctx, "Driver", models.ClubDriver)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveClub(ctx, c.ID))
	bag, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, bag)

	// unknown id is a no-op
	require.NoError(t, svc.RemoveClub(ctx, 999))
}

func TestSyncBag_AssignsServerIDsKeepingLocalIDs(t *testing.T) {
	stores := setupStores(t)
	remote := newFakeClient()
	svc := newClubServiceOffline(t, stores, remote)
	ctx := context.Background()

	driver, err := svc.AddClub(ctx, "Driver", models.ClubDriver)
	require.NoError(t, err)
	putter, err := svc.AddClub(ctx, "Putter", models.ClubPutter)
	require.NoError(t, err)

	bag, err := svc.SyncBag(ctx)
	require.NoError(t, err)
	require.Len(t, bag, 2)

	for _, c := range bag {
		assert.Equal(t, models.StatusSynced, c.Status)
		assert.NotNil(t, c.ServerID)
	}

	// local ids survive, so hole club sequences stay valid
	got, err := svc.GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, "Driver", got.Name)
	got, err = svc.GetByID(ctx, putter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Putter", got.Name)

	assert.Zero(t, countQueueItems(t, stores, models.EntityClub, models.BagEntityID))
	assert.Equal(t, 1, remote.replaceBagCalls)
}

func TestSyncBag_FailureKeepsQueueItem(t *testing.T) {
	stores := setupStores(t)
	remote := newFakeClient()
	svc := newClubServiceOffline(t, stores, remote)
	ctx := context.Background()

	_, err := svc.AddClub(ctx, "Driver", models.ClubDriver)
	require.NoError(t, err)

	remote.err = errBoom
	_, err = svc.SyncBag(ctx)
	require.Error(t, err)

	assert.Equal(t, 1, countQueueItems(t, stores, models.EntityClub, models.BagEntityID))
	bag, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, bag[0].Status)
}

func TestReplaceBag(t *testing.T) {
	stores := setupStores(t)
	svc := newClubServiceOffline(t, stores, newFakeClient())
	ctx := context.Background()

	_, err := svc.AddClub(ctx, "Old Driver", models.ClubDriver)
	require.NoError(t, err)

	bag, err := svc.ReplaceBag(ctx, []models.Club{
		{Name: "New Driver", Category: models.ClubDriver},
		{Name: "7 Iron", Category: models.ClubIron},
	})
	require.NoError(t, err)
	require.Len(t, bag, 2)

	names := []string{bag[0].Name, bag[1].Name}
	assert.Contains(t, names, "New Driver")
	assert.Contains(t, names, "7 Iron")
	assert.NotContains(t, names, "Old Driver")

	assert.Equal(t, 1, countQueueItems(t, stores, models.EntityClub, models.BagEntityID))
}

func TestFetchBag_ServerWinsWhenClean(t *testing.T) {
	stores := setupStores(t)
	remote := newFakeClient()
	svc := newClubServiceOffline(t, stores, remote)
	ctx := context.Background()

	sid := int64(5)
	remote.serverBag = []models.Club{{ServerID: &sid, Name: "Server Driver", Category: models.ClubDriver}}

	bag, err := svc.FetchBag(ctx)
	require.NoError(t, err)
	require.Len(t, bag, 1)
	assert.Equal(t, "Server Driver", bag[0].Name)
	assert.Equal(t, models.StatusSynced, bag[0].Status)
}

func TestFetchBag_LocalWinsWhileDirty(t *testing.T) {
	stores := setupStores(t)
	remote := newFakeClient()
	svc := newClubServiceOffline(t, stores, remote)
	ctx := context.Background()

	_, err := svc.AddClub(ctx, "Local Driver", models.ClubDriver)
	require.NoError(t, err)

	sid := int64(5)
	remote.serverBag = []models.Club{{ServerID: &sid, Name: "Server Driver", Category: models.ClubDriver}}

	bag, err := svc.FetchBag(ctx)
	require.NoError(t, err)
	require.Len(t, bag, 1)
	assert.Equal(t, "Local Driver", bag[0].Name)
}
