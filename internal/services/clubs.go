package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/dbx"
	"github.com/fairwaylabs/scorecard/internal/gateway"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/netx"
	"github.com/fairwaylabs/scorecard/internal/store/clubs"
	"github.com/fairwaylabs/scorecard/internal/store/syncqueue"
)

// ClubService is the entity store for the player's bag. The bag syncs
// wholesale: any change enqueues a single replace-bag operation carrying
// the full current set, and at most one such item is live at a time.
type ClubService struct {
	db      *sql.DB
	clubs   clubs.Repository
	queue   syncqueue.Repository
	remote  gateway.Client
	checker netx.Checker
	log     logging.Logger
}

func NewClubService(db *sql.DB, clubRepo clubs.Repository, queueRepo syncqueue.Repository,
	remote gateway.Client, checker netx.Checker, log logging.Logger) *ClubService {
	return &ClubService{
		db:      db,
		clubs:   clubRepo,
		queue:   queueRepo,
		remote:  remote,
		checker: checker,
		log:     log.With("service", "clubs"),
	}
}

func (s *ClubService) GetAll(ctx context.Context) ([]models.Club, error) {
	return s.clubs.GetAll(ctx)
}

func (s *ClubService) GetPending(ctx context.Context) ([]models.Club, error) {
	return s.clubs.ListByStatus(ctx, models.StatusPending)
}

func (s *ClubService) GetSynced(ctx context.Context) ([]models.Club, error) {
	return s.clubs.ListByStatus(ctx, models.StatusSynced)
}

func (s *ClubService) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	return s.clubs.GetByID(ctx, id)
}

// ListDefinitions returns the seeded catalog backing the add-club flow.
func (s *ClubService) ListDefinitions(ctx context.Context) ([]models.ClubDefinition, error) {
	return s.clubs.ListDefinitions(ctx)
}

func validClubCategory(cat models.ClubCategory) bool {
	switch cat {
	case models.ClubDriver, models.ClubWood, models.ClubHybrid,
		models.ClubIron, models.ClubWedge, models.ClubPutter:
		return true
	}
	return false
}

// AddClub appends one club to the bag and enqueues a replace-bag sync.
func (s *ClubService) AddClub(ctx context.Context, name string, category models.ClubCategory) (*models.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: club name is required", common.ErrValidation)
	}
	if !validClubCategory(category) {
		return nil, fmt.Errorf("%w: unknown club category %q", common.ErrValidation, category)
	}

	c := &models.Club{Name: name, Category: category, Status: models.StatusPending}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := clubs.NewSQLiteRepository(tx).Insert(ctx, c); err != nil {
			return err
		}
		return s.ensureBagItem(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx)
	return s.clubs.GetByID(ctx, c.ID)
}

// RemoveClub drops one club from the bag. The club row is removed outright
// even when synced; the enqueued replace-bag operation carries the post-
// removal set, so no tombstone is needed.
func (s *ClubService) RemoveClub(ctx context.Context, id int64) error {
	_, err := s.clubs.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := clubs.NewSQLiteRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.ensureBagItem(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.tryImmediateSync(ctx)
	return nil
}

// ReplaceBag swaps the entire bag for the given set in one transaction.
func (s *ClubService) ReplaceBag(ctx context.Context, newClubs []models.Club) ([]models.Club, error) {
	for _, c := range newClubs {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: club name is required", common.ErrValidation)
		}
		if !validClubCategory(c.Category) {
			return nil, fmt.Errorf("%w: unknown club category %q", common.ErrValidation, c.Category)
		}
	}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := clubs.NewSQLiteRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for i := range newClubs {
			newClubs[i].ID = 0
			newClubs[i].Status = models.StatusPending
			if _, err := repo.Insert(ctx, &newClubs[i]); err != nil {
				return err
			}
		}
		return s.ensureBagItem(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx)
	return s.clubs.GetAll(ctx)
}

// ensureBagItem refreshes the live replace-bag queue item with the current
// bag contents, or enqueues one when none is live. Bag items share the
// fixed entity id since they target the set, not a row.
func (s *ClubService) ensureBagItem(ctx context.Context, tx dbx.DBTX) error {
	bag, err := clubs.NewSQLiteRepository(tx).GetAll(ctx)
	if err != nil {
		return err
	}
	wire := make([]gateway.ClubWire, 0, len(bag))
	for _, c := range bag {
		wire = append(wire, gateway.ClubToWire(c))
	}

	q := syncqueue.NewSQLiteRepository(tx)
	payload, err := marshalPayload(wire)
	if err != nil {
		return err
	}
	refreshed, err := q.RefreshPayload(ctx, models.EntityClub, models.BagEntityID, payload)
	if err != nil {
		return err
	}
	if refreshed {
		return nil
	}

	item, err := newQueueItem(models.EntityClub, models.OpUpdate, models.BagEntityID, wire)
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, item)
}

// SyncBag pushes the full bag to the server and records the returned server
// ids. The server response is matched to local rows by name and category,
// which keeps local ids stable for hole club references.
func (s *ClubService) SyncBag(ctx context.Context) ([]models.Club, error) {
	bag, err := s.clubs.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	serverBag, err := s.remote.ReplaceBag(ctx, bag)
	if err != nil {
		return nil, fmt.Errorf("failed to sync bag: %w", err)
	}

	type key struct {
		name     string
		category models.ClubCategory
	}
	byIdentity := make(map[key]models.Club, len(serverBag))
	for _, c := range serverBag {
		byIdentity[key{c.Name, c.Category}] = c
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := clubs.NewSQLiteRepository(tx)
		for _, local := range bag {
			sc, ok := byIdentity[key{local.Name, local.Category}]
			if !ok {
				continue
			}
			if err := repo.SetSyncState(ctx, local.ID, models.StatusSynced, sc.ServerID); err != nil {
				return err
			}
		}
		return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityClub, models.BagEntityID)
	})
	if err != nil {
		return nil, err
	}

	return s.clubs.GetAll(ctx)
}

// FetchBag pulls the server's bag and merges it in. With a replace-bag
// queue item live the local set wins untouched; otherwise the local bag is
// replaced by the server's, stored as synced.
func (s *ClubService) FetchBag(ctx context.Context) ([]models.Club, error) {
	serverBag, err := s.remote.GetBag(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bag: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		q := syncqueue.NewSQLiteRepository(tx)
		// a live replace-bag item means local changes are still unpushed
		dirty, err := q.HasLive(ctx, models.EntityClub, models.BagEntityID)
		if err != nil {
			return err
		}
		if dirty {
			return nil
		}

		repo := clubs.NewSQLiteRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for i := range serverBag {
			serverBag[i].ID = 0
			serverBag[i].Status = models.StatusSynced
			if _, err := repo.Insert(ctx, &serverBag[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.clubs.GetAll(ctx)
}

func (s *ClubService) tryImmediateSync(ctx context.Context) {
	if s.checker == nil || !s.checker.IsOnline(ctx) {
		return
	}
	err := withFlushRetry(ctx, func(ctx context.Context) error {
		_, err := s.SyncBag(ctx)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "immediate bag sync failed, left queued", "error", err)
	}
}
