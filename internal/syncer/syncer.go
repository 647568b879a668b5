// Package syncer drains the durable sync queue. Items are replayed against
// the backend strictly in enqueue order, one at a time; ordering between a
// record's create and its later update is therefore preserved without any
// per-item dependency tracking.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/store/syncqueue"
)

// RoundSyncer pushes round state to the backend.
type RoundSyncer interface {
	SyncToServer(ctx context.Context, id int64) (*models.Round, error)
	CompleteDelete(ctx context.Context, id int64) error
}

// BagSyncer pushes the club bag wholesale.
type BagSyncer interface {
	SyncBag(ctx context.Context) ([]models.Club, error)
}

// CourseSyncer pushes course and hole-definition state.
type CourseSyncer interface {
	SyncToServer(ctx context.Context, id int64) (*models.Course, error)
	SyncHoleDefinition(ctx context.Context, id int64) (*models.HoleDefinition, error)
}

// Stats summarizes one queue pass.
type Stats struct {
	Processed   int
	Succeeded   int
	Failed      int
	Quarantined int
}

// Processor drains the queue sequentially, continuing past individual
// failures. A failed item is rescheduled with exponential backoff; rejected
// payloads and items out of attempt budget are quarantined and never
// retried automatically. A network failure ends the pass without touching
// the item, since losing connectivity mid-pass says nothing about the
// payloads still queued.
type Processor struct {
	queue   syncqueue.Repository
	rounds  RoundSyncer
	bag     BagSyncer
	courses CourseSyncer
	log     logging.Logger

	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration

	now func() time.Time
}

type Option func(*Processor)

// WithMaxAttempts sets the attempt budget before quarantine.
func WithMaxAttempts(n int) Option {
	return func(p *Processor) { p.maxAttempts = n }
}

// WithBackoff sets the base delay and cap of the retry schedule.
func WithBackoff(base, cap time.Duration) Option {
	return func(p *Processor) {
		p.backoffBase = base
		p.backoffCap = cap
	}
}

func withClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(queue syncqueue.Repository, rounds RoundSyncer, bag BagSyncer,
	courses CourseSyncer, log logging.Logger, opts ...Option) *Processor {
	p := &Processor{
		queue:       queue,
		rounds:      rounds,
		bag:         bag,
		courses:     courses,
		log:         log.With("component", "syncer"),
		maxAttempts: 5,
		backoffBase: 2 * time.Second,
		backoffCap:  5 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessAll runs one pass over the due queue items.
func (p *Processor) ProcessAll(ctx context.Context) (Stats, error) {
	var stats Stats

	items, err := p.queue.Due(ctx, p.now().UTC())
	if err != nil {
		return stats, err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Processed++

		err := p.dispatch(ctx, item)
		if err == nil {
			stats.Succeeded++
			// the services clean their own queue rows; this covers
			// no-op dispatches that had nothing left to push
			if rerr := p.queue.Remove(ctx, item.ID); rerr != nil {
				return stats, rerr
			}
			continue
		}

		switch {
		case errors.Is(err, common.ErrNetwork):
			// connectivity is gone; leave the item untouched and stop
			stats.Processed--
			p.log.Info(ctx, "network unreachable, pass ended",
				"item", item.ID, "entity", item.Entity, "error", err)
			return stats, nil

		case errors.Is(err, common.ErrValidation):
			// the server will never accept this payload
			stats.Quarantined++
			p.log.Warn(ctx, "queue item rejected, quarantined",
				"item", item.ID, "entity", item.Entity, "op", item.Op, "error", err)
			if derr := p.queue.MarkDead(ctx, item.ID, err.Error()); derr != nil {
				return stats, derr
			}

		default:
			stats.Failed++
			if item.Attempts+1 >= p.maxAttempts {
				stats.Quarantined++
				p.log.Error(ctx, "queue item out of attempts, quarantined",
					"item", item.ID, "entity", item.Entity, "op", item.Op,
					"attempts", item.Attempts+1, "error", err)
				if derr := p.queue.MarkDead(ctx, item.ID, err.Error()); derr != nil {
					return stats, derr
				}
				continue
			}

			next := p.now().UTC().Add(p.delayFor(item.Attempts))
			p.log.Warn(ctx, "queue item failed, rescheduled",
				"item", item.ID, "entity", item.Entity, "op", item.Op,
				"attempts", item.Attempts+1, "next_attempt", next, "error", err)
			if rerr := p.queue.RecordFailure(ctx, item.ID, err.Error(), next); rerr != nil {
				return stats, rerr
			}
		}
	}

	return stats, nil
}

// delayFor computes the backoff delay after the given number of failed
// attempts.
func (p *Processor) delayFor(attempts int) time.Duration {
	b := retry.WithCappedDuration(p.backoffCap, retry.NewExponential(p.backoffBase))
	delay := p.backoffBase
	for i := 0; i <= attempts; i++ {
		d, stop := b.Next()
		if stop {
			break
		}
		delay = d
	}
	if delay > p.backoffCap {
		delay = p.backoffCap
	}
	return delay
}

func (p *Processor) dispatch(ctx context.Context, item models.QueueItem) error {
	switch item.Entity {
	case models.EntityRound:
		if item.Op == models.OpDelete {
			return p.rounds.CompleteDelete(ctx, item.EntityID)
		}
		_, err := p.rounds.SyncToServer(ctx, item.EntityID)
		return err

	case models.EntityClub:
		_, err := p.bag.SyncBag(ctx)
		return err

	case models.EntityCourse:
		_, err := p.courses.SyncToServer(ctx, item.EntityID)
		return err

	case models.EntityHoleDef:
		_, err := p.courses.SyncHoleDefinition(ctx, item.EntityID)
		return err
	}
	return errors.New("unknown queue entity: " + string(item.Entity))
}

// PendingCount reports live (non-dead) queue depth.
func (p *Processor) PendingCount(ctx context.Context) (int, error) {
	return p.queue.CountLive(ctx)
}

// DeadItems lists quarantined items for inspection.
func (p *Processor) DeadItems(ctx context.Context) ([]models.QueueItem, error) {
	items, err := p.queue.All(ctx)
	if err != nil {
		return nil, err
	}
	var dead []models.QueueItem
	for _, it := range items {
		if it.Dead {
			dead = append(dead, it)
		}
	}
	return dead, nil
}
