package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

func marshalPayload(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode queue payload: %w", err)
	}
	return b, nil
}

func newQueueItem(entity models.EntityKind, op models.Operation, entityID int64, payload any) (*models.QueueItem, error) {
	b, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return &models.QueueItem{
		ID:         uuid.NewString(),
		Entity:     entity,
		Op:         op,
		EntityID:   entityID,
		Payload:    b,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// withFlushRetry runs fn with a short bounded exponential backoff, retrying
// only transient gateway failures. It covers the best-effort immediate
// flush; durable retries belong to the sync queue.
func withFlushRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrNetwork) || errors.Is(err, common.ErrServer) {
			return retry.RetryableError(err)
		}
		return err
	})
}
