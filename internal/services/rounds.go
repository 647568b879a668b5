package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/dbx"
	"github.com/fairwaylabs/scorecard/internal/gateway"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/netx"
	"github.com/fairwaylabs/scorecard/internal/store/holes"
	"github.com/fairwaylabs/scorecard/internal/store/rounds"
	"github.com/fairwaylabs/scorecard/internal/store/syncqueue"
)

// RoundService is the entity store for played rounds and their holes.
type RoundService struct {
	db      *sql.DB
	rounds  rounds.Repository
	holes   holes.Repository
	queue   syncqueue.Repository
	remote  gateway.Client
	checker netx.Checker
	log     logging.Logger
}

func NewRoundService(db *sql.DB, roundRepo rounds.Repository, holeRepo holes.Repository,
	queueRepo syncqueue.Repository, remote gateway.Client, checker netx.Checker, log logging.Logger) *RoundService {
	return &RoundService{
		db:      db,
		rounds:  roundRepo,
		holes:   holeRepo,
		queue:   queueRepo,
		remote:  remote,
		checker: checker,
		log:     log.With("service", "rounds"),
	}
}

// RoundDraft carries the fields of a new round.
type RoundDraft struct {
	CourseID       *int64
	CourseServerID *int64
	CourseName     string
	Date           string
}

// RoundUpdate carries a partial edit; nil fields are left untouched.
type RoundUpdate struct {
	CourseName *string
	Date       *string
	TotalScore *int
	EndedAt    *time.Time
}

func (s *RoundService) hydrate(ctx context.Context, rd *models.Round) error {
	hs, err := s.holes.ListByRound(ctx, rd.ID)
	if err != nil {
		return err
	}
	rd.Holes = hs
	return nil
}

func (s *RoundService) hydrateAll(ctx context.Context, rds []models.Round) ([]models.Round, error) {
	result := make([]models.Round, 0, len(rds))
	for _, rd := range rds {
		if rd.Status == models.StatusDeleted {
			continue
		}
		if err := s.hydrate(ctx, &rd); err != nil {
			return nil, err
		}
		result = append(result, rd)
	}
	return result, nil
}

// GetAll returns every live (non-tombstoned) round, newest first, with
// holes hydrated.
func (s *RoundService) GetAll(ctx context.Context) ([]models.Round, error) {
	rds, err := s.rounds.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, rds)
}

// GetPending returns rounds never yet synced, newest first.
func (s *RoundService) GetPending(ctx context.Context) ([]models.Round, error) {
	rds, err := s.rounds.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, rds)
}

// GetSynced returns rounds mirroring server state, sorted by date.
func (s *RoundService) GetSynced(ctx context.Context) ([]models.Round, error) {
	rds, err := s.rounds.ListByStatus(ctx, models.StatusSynced)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, rds)
}

func (s *RoundService) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	rd, err := s.rounds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rd.Status == models.StatusDeleted {
		return nil, common.ErrNotFound
	}
	if err := s.hydrate(ctx, rd); err != nil {
		return nil, err
	}
	return rd, nil
}

// Create writes the round locally as pending, enqueues its create
// operation, and attempts an immediate flush when online.
func (s *RoundService) Create(ctx context.Context, draft RoundDraft) (*models.Round, error) {
	rd := &models.Round{
		CourseID:       draft.CourseID,
		CourseServerID: draft.CourseServerID,
		CourseName:     draft.CourseName,
		Date:           draft.Date,
		CreatedAt:      time.Now().UTC(),
		Status:         models.StatusPending,
	}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := rounds.NewSQLiteRepository(tx).Insert(ctx, rd); err != nil {
			return err
		}
		item, err := newQueueItem(models.EntityRound, models.OpCreate, rd.ID, gateway.RoundToWire(*rd))
		if err != nil {
			return err
		}
		return syncqueue.NewSQLiteRepository(tx).Enqueue(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx, rd.ID)
	return s.GetByID(ctx, rd.ID)
}

// Update applies a partial edit. A synced round is demoted to modified and
// an update operation enqueued; a round still pending keeps its original
// queue item, with the queued payload refreshed to current state. Returns
// common.ErrNotFound when the round does not exist (tombstones included).
func (s *RoundService) Update(ctx context.Context, id int64, upd RoundUpdate) (*models.Round, error) {
	rd, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.CourseName != nil {
		rd.CourseName = *upd.CourseName
	}
	if upd.Date != nil {
		rd.Date = *upd.Date
	}
	if upd.TotalScore != nil {
		rd.TotalScore = *upd.TotalScore
	}
	if upd.EndedAt != nil {
		rd.EndedAt = upd.EndedAt
	}

	if rd.Status == models.StatusSynced {
		next, terr := rd.Status.Transition(models.StatusModified)
		if terr != nil {
			return nil, terr
		}
		rd.Status = next
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := rounds.NewSQLiteRepository(tx).Update(ctx, rd); err != nil {
			return err
		}
		return s.refreshOrEnqueue(ctx, tx, rd)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx, id)
	return s.GetByID(ctx, id)
}

// refreshOrEnqueue keeps exactly one live queue item per dirty round:
// the existing item's payload is refreshed in place, or a new item is
// enqueued when none is live.
func (s *RoundService) refreshOrEnqueue(ctx context.Context, tx dbx.DBTX, rd *models.Round) error {
	q := syncqueue.NewSQLiteRepository(tx)

	payload, err := marshalPayload(gateway.RoundToWire(*rd))
	if err != nil {
		return err
	}
	refreshed, err := q.RefreshPayload(ctx, models.EntityRound, rd.ID, payload)
	if err != nil {
		return err
	}
	if refreshed {
		return nil
	}

	op := models.OpCreate
	if rd.ServerID != nil {
		op = models.OpUpdate
	}
	item, err := newQueueItem(models.EntityRound, op, rd.ID, gateway.RoundToWire(*rd))
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, item)
}

// SaveHole upserts one hole result by its (round, number) identity and
// recomputes the round's total score, all inside a single transaction so
// near-simultaneous saves of the same hole cannot produce duplicates.
func (s *RoundService) SaveHole(ctx context.Context, roundID int64, h models.Hole) (*models.Hole, error) {
	rd, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if rd.Status == models.StatusDeleted {
		return nil, common.ErrNotFound
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		hrepo := holes.NewSQLiteRepository(tx)
		rrepo := rounds.NewSQLiteRepository(tx)

		h.RoundID = roundID
		if err := hrepo.Upsert(ctx, &h); err != nil {
			return err
		}

		total, err := hrepo.SumScores(ctx, roundID)
		if err != nil {
			return err
		}
		if err := rrepo.SetTotalScore(ctx, roundID, total); err != nil {
			return err
		}
		rd.TotalScore = total

		if rd.Status == models.StatusSynced {
			next, terr := rd.Status.Transition(models.StatusModified)
			if terr != nil {
				return terr
			}
			rd.Status = next
			if err := rrepo.SetSyncState(ctx, roundID, next, nil); err != nil {
				return err
			}
		}

		hs, err := hrepo.ListByRound(ctx, roundID)
		if err != nil {
			return err
		}
		rd.Holes = hs

		return s.refreshOrEnqueue(ctx, tx, rd)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx, roundID)
	return &h, nil
}

// Delete removes a round. A never-synced round disappears immediately with
// its queued create; a synced round is tombstoned and a delete operation
// enqueued, with physical removal deferred until the server confirms.
func (s *RoundService) Delete(ctx context.Context, id int64) error {
	rd, err := s.rounds.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if rd.ServerID == nil {
		return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			if err := syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityRound, id); err != nil {
				return err
			}
			if err := holes.NewSQLiteRepository(tx).DeleteByRound(ctx, id); err != nil {
				return err
			}
			return rounds.NewSQLiteRepository(tx).Delete(ctx, id)
		})
	}

	next, err := rd.Status.Transition(models.StatusDeleted)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := rounds.NewSQLiteRepository(tx).SetSyncState(ctx, id, next, nil); err != nil {
			return err
		}
		q := syncqueue.NewSQLiteRepository(tx)
		// any queued create/update is moot; exactly one delete item remains
		if err := q.DeleteForEntity(ctx, models.EntityRound, id); err != nil {
			return err
		}
		item, err := newQueueItem(models.EntityRound, models.OpDelete, id,
			struct {
				ID int64 `json:"id"`
			}{*rd.ServerID})
		if err != nil {
			return err
		}
		return q.Enqueue(ctx, item)
	})
	if err != nil {
		return err
	}

	s.tryImmediateDelete(ctx, id)
	return nil
}

// SyncToServer pushes the round's pending create or modified update and, on
// success, records the server id and transitions to synced. The local
// record is untouched when the push fails: either it becomes fully synced
// or it stays exactly as it was.
func (s *RoundService) SyncToServer(ctx context.Context, id int64) (*models.Round, error) {
	rd, err := s.rounds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, rd); err != nil {
		return nil, err
	}

	switch rd.Status {
	case models.StatusSynced:
		return rd, nil

	case models.StatusDeleted:
		if err := s.CompleteDelete(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil

	case models.StatusPending:
		created, err := s.remote.CreateRound(ctx, *rd)
		if err != nil {
			return nil, fmt.Errorf("failed to create round on server: %w", err)
		}
		if created.ServerID == nil {
			return nil, fmt.Errorf("%w: server response lacks an id", common.ErrServer)
		}
		next, terr := rd.Status.Transition(models.StatusSynced)
		if terr != nil {
			return nil, terr
		}
		err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			if err := rounds.NewSQLiteRepository(tx).SetSyncState(ctx, id, next, created.ServerID); err != nil {
				return err
			}
			return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityRound, id)
		})
		if err != nil {
			return nil, err
		}

	case models.StatusModified:
		if _, err := s.remote.UpdateRound(ctx, *rd); err != nil {
			return nil, fmt.Errorf("failed to update round on server: %w", err)
		}
		next, terr := rd.Status.Transition(models.StatusSynced)
		if terr != nil {
			return nil, terr
		}
		err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			if err := rounds.NewSQLiteRepository(tx).SetSyncState(ctx, id, next, nil); err != nil {
				return err
			}
			return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityRound, id)
		})
		if err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// CompleteDelete pushes a queued deletion to the server and then removes
// the tombstoned row physically.
func (s *RoundService) CompleteDelete(ctx context.Context, id int64) error {
	rd, err := s.rounds.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		// row already gone; drop any stale queue items
		return s.queue.DeleteForEntity(ctx, models.EntityRound, id)
	}
	if err != nil {
		return err
	}

	if rd.ServerID != nil {
		if err := s.remote.DeleteRound(ctx, *rd.ServerID); err != nil {
			return fmt.Errorf("failed to delete round on server: %w", err)
		}
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := holes.NewSQLiteRepository(tx).DeleteByRound(ctx, id); err != nil {
			return err
		}
		if err := rounds.NewSQLiteRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityRound, id)
	})
}

// FetchFromServer pulls the authoritative round list and merges it into the
// local store: unknown server rounds are inserted as synced, synced locals
// are overwritten (server wins), and pending/modified/deleted locals are
// left alone (local wins until the pending change is pushed).
func (s *RoundService) FetchFromServer(ctx context.Context) ([]models.Round, error) {
	serverRounds, err := s.remote.ListRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rounds: %w", err)
	}

	for _, sr := range serverRounds {
		if sr.ServerID == nil {
			continue
		}
		local, err := s.rounds.GetByServerID(ctx, *sr.ServerID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			if err := s.insertFromServer(ctx, sr); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case local.Status == models.StatusSynced:
			if err := s.overwriteFromServer(ctx, local, sr); err != nil {
				return nil, err
			}
		default:
			// local wins while pending, modified, or tombstoned
		}
	}

	return s.GetSynced(ctx)
}

func (s *RoundService) insertFromServer(ctx context.Context, sr models.Round) error {
	sr.Status = models.StatusSynced
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := rounds.NewSQLiteRepository(tx).Insert(ctx, &sr)
		if err != nil {
			return err
		}
		hrepo := holes.NewSQLiteRepository(tx)
		for i := range sr.Holes {
			sr.Holes[i].RoundID = id
			if err := hrepo.Upsert(ctx, &sr.Holes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RoundService) overwriteFromServer(ctx context.Context, local *models.Round, sr models.Round) error {
	sr.ID = local.ID
	sr.CourseID = local.CourseID
	sr.Status = models.StatusSynced
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := rounds.NewSQLiteRepository(tx).Update(ctx, &sr); err != nil {
			return err
		}
		hrepo := holes.NewSQLiteRepository(tx)
		if err := hrepo.DeleteByRound(ctx, local.ID); err != nil {
			return err
		}
		for i := range sr.Holes {
			sr.Holes[i].RoundID = local.ID
			if err := hrepo.Upsert(ctx, &sr.Holes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RoundService) tryImmediateSync(ctx context.Context, id int64) {
	if s.checker == nil || !s.checker.IsOnline(ctx) {
		return
	}
	err := withFlushRetry(ctx, func(ctx context.Context) error {
		_, err := s.SyncToServer(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "immediate round sync failed, left queued", "round", id, "error", err)
	}
}

func (s *RoundService) tryImmediateDelete(ctx context.Context, id int64) {
	if s.checker == nil || !s.checker.IsOnline(ctx) {
		return
	}
	err := withFlushRetry(ctx, func(ctx context.Context) error {
		return s.CompleteDelete(ctx, id)
	})
	if err != nil {
		s.log.Warn(ctx, "immediate round delete failed, left queued", "round", id, "error", err)
	}
}
