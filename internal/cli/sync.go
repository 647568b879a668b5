package cli

import (
	"context"
	"fmt"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/query"
)

// Sync drains the queue now. Unlike the background loops, this surfaces
// failures directly to the user.
func (a *App) Sync(ctx context.Context) error {
	if !a.probeOnline(ctx) {
		return common.ErrOffline
	}
	stats, err := a.processor.ProcessAll(ctx)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("rounds"))
	a.cache.Invalidate(query.Key("clubs"))
	a.cache.Invalidate(query.Key("courses"))

	printlnFn(fmt.Sprintf("Sync: %d processed, %d succeeded, %d failed, %d quarantined",
		stats.Processed, stats.Succeeded, stats.Failed, stats.Quarantined))
	return nil
}

// Fetch pulls rounds, courses, and the bag from the server.
func (a *App) Fetch(ctx context.Context) error {
	if !a.probeOnline(ctx) {
		return common.ErrOffline
	}
	if _, err := a.rounds.FetchFromServer(ctx); err != nil {
		return err
	}
	if _, err := a.courses.FetchFromServer(ctx); err != nil {
		return err
	}
	if _, err := a.clubs.FetchBag(ctx); err != nil {
		return err
	}

	a.cache.Invalidate(query.Key("rounds"))
	a.cache.Invalidate(query.Key("clubs"))
	a.cache.Invalidate(query.Key("courses"))
	printlnFn("Fetched server state")
	return nil
}

// Queue shows sync queue depth and quarantined items.
func (a *App) Queue(ctx context.Context) error {
	n, err := a.processor.PendingCount(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%d items queued", n))

	dead, err := a.processor.DeadItems(ctx)
	if err != nil {
		return err
	}
	for _, it := range dead {
		printlnFn(fmt.Sprintf("  dead: %s %s %s entity=%d attempts=%d last=%s",
			it.ID, it.Entity, it.Op, it.EntityID, it.Attempts, it.LastError))
	}
	return nil
}
