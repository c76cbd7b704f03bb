package counter

import (
	"context"

	"github.com/pathcraft-app/pathcraft/internal/pkg/cache"
)

const webhookOutcomesKey = "billing:counters:webhook_outcomes"

// Webhook delivery outcomes tracked per event type.
const (
	OutcomeReceived  = "received"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// AddWebhookOutcome increments the delivery counter for an event type and
// outcome in Redis. Best effort; callers ignore the error on the hot path.
func AddWebhookOutcome(eventType, outcome string) error {
	ctx := context.Background()
	if eventType == "" {
		eventType = "unknown"
	}
	field := eventType + ":" + outcome
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, field, 1).Err()
}

// SnapshotWebhookOutcomes returns all delivery counters, keyed by
// "<event type>:<outcome>".
func SnapshotWebhookOutcomes() (map[string]string, error) {
	ctx := context.Background()
	return cache.GetClient().HGetAll(ctx, webhookOutcomesKey).Result()
}

// ResetWebhookOutcomes clears the delivery counters.
func ResetWebhookOutcomes() error {
	ctx := context.Background()
	return cache.GetClient().Del(ctx, webhookOutcomesKey).Err()
}
