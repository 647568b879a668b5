package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetcher(value any) (Fetcher, *int) {
	calls := 0
	return func(ctx context.Context) (any, error) {
		calls++
		return value, nil
	}, &calls
}

func TestGet_ServesCachedValue(t *testing.T) {
	ctx := context.Background()
	c := New()
	fetch, calls := countingFetcher("rounds-v1")

	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, Key("rounds"), fetch)
		require.NoError(t, err)
		assert.Equal(t, "rounds-v1", got)
	}
	assert.Equal(t, 1, *calls)
}

func TestGet_RefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(WithStaleTTL(30*time.Second), withClock(func() time.Time { return now }))
	fetch, calls := countingFetcher("v")

	_, err := c.Get(ctx, Key("rounds"), fetch)
	require.NoError(t, err)

	now = now.Add(29 * time.Second)
	_, err = c.Get(ctx, Key("rounds"), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, Key("rounds"), fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestGet_ZeroTTLNeverGoesStale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(WithStaleTTL(0), withClock(func() time.Time { return now }))
	fetch, calls := countingFetcher("v")

	_, err := c.Get(ctx, Key("rounds"), fetch)
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	_, err = c.Get(ctx, Key("rounds"), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestGet_FetchFailurePropagates(t *testing.T) {
	ctx := context.Background()
	c := New()

	_, err := c.Get(ctx, Key("rounds"), func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("boom")
	})
	assert.Error(t, err)

	// the key was never populated, so the next read fetches again
	got, err := c.Get(ctx, Key("rounds"), func(ctx context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestInvalidate_MatchesByPrefix(t *testing.T) {
	ctx := context.Background()
	c := New()

	fetchAll, allCalls := countingFetcher("all")
	fetchDetail, detailCalls := countingFetcher("detail")
	fetchClubs, clubCalls := countingFetcher("clubs")

	_, _ = c.Get(ctx, Key("rounds"), fetchAll)
	_, _ = c.Get(ctx, Key("rounds", "detail", "42"), fetchDetail)
	_, _ = c.Get(ctx, Key("clubs"), fetchClubs)

	c.Invalidate(Key("rounds"))

	_, _ = c.Get(ctx, Key("rounds"), fetchAll)
	_, _ = c.Get(ctx, Key("rounds", "detail", "42"), fetchDetail)
	_, _ = c.Get(ctx, Key("clubs"), fetchClubs)

	assert.Equal(t, 2, *allCalls)
	assert.Equal(t, 2, *detailCalls)
	assert.Equal(t, 1, *clubCalls, "sibling prefixes are untouched")
}

func TestInvalidate_DoesNotMatchKeyTextPrefix(t *testing.T) {
	ctx := context.Background()
	c := New()

	fetch, calls := countingFetcher("v")
	_, _ = c.Get(ctx, Key("roundsummary"), fetch)

	c.Invalidate(Key("rounds"))

	_, _ = c.Get(ctx, Key("roundsummary"), fetch)
	assert.Equal(t, 1, *calls, "prefix match is per key segment, not per character")
}

func TestSubscribe_NotifiedOnMatchingInvalidate(t *testing.T) {
	c := New()

	ch, cancel := c.Subscribe(Key("rounds"))
	defer cancel()

	c.Invalidate(Key("rounds", "detail", "42"))

	select {
	case got := <-ch:
		assert.Equal(t, Key("rounds", "detail", "42"), got)
	default:
		t.Fatal("expected a notification")
	}

	c.Invalidate(Key("clubs"))
	select {
	case <-ch:
		t.Fatal("unrelated invalidation must not notify")
	default:
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	c := New()

	ch, cancel := c.Subscribe(Key("rounds"))
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// cancel twice is a no-op
	cancel()
}

func TestSubscribe_CancelDuringInvalidateIsSafe(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				c.Invalidate(Key("rounds"))
			}
		}
	}()

	// subscribers drain and cancel while invalidations are in flight; a
	// send racing a close would panic here
	for i := 0; i < 200; i++ {
		ch, cancel := c.Subscribe(Key("rounds"))
		select {
		case <-ch:
		default:
		}
		cancel()
	}

	close(done)
	wg.Wait()
}

func TestMutate_InvalidatesOnSuccessOnly(t *testing.T) {
	ctx := context.Background()
	c := New()
	fetch, calls := countingFetcher("v")

	_, _ = c.Get(ctx, Key("rounds"), fetch)

	err := c.Mutate(ctx, func(ctx context.Context) error {
		return fmt.Errorf("write failed")
	}, Key("rounds"))
	assert.Error(t, err)

	_, _ = c.Get(ctx, Key("rounds"), fetch)
	assert.Equal(t, 1, *calls, "failed writes leave the cache intact")

	err = c.Mutate(ctx, func(ctx context.Context) error { return nil }, Key("rounds"))
	require.NoError(t, err)

	_, _ = c.Get(ctx, Key("rounds"), fetch)
	assert.Equal(t, 2, *calls)
}
