package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/pathcraft-app/pathcraft/app/models"
)

// EventKind is the closed enumeration of webhook event types the state
// machine understands. Anything else parses to EventUnknown, which is
// acknowledged but never changes state.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSubscriptionActivated
	EventSubscriptionHalted
	EventSubscriptionCompleted
	EventSubscriptionCancelled
	EventSubscriptionCharged
	EventPaymentCaptured
	EventPaymentFailed
)

// ParseEventKind maps a wire event-type string onto the event enumeration.
func ParseEventKind(eventType string) EventKind {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "subscription.activated":
		return EventSubscriptionActivated
	case "subscription.halted":
		return EventSubscriptionHalted
	case "subscription.completed":
		return EventSubscriptionCompleted
	case "subscription.cancelled":
		return EventSubscriptionCancelled
	case "subscription.charged":
		return EventSubscriptionCharged
	case "payment.captured":
		return EventPaymentCaptured
	case "payment.failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}

// IsSubscriptionEvent reports whether the kind targets a subscription row.
func (k EventKind) IsSubscriptionEvent() bool {
	switch k {
	case EventSubscriptionActivated, EventSubscriptionHalted,
		EventSubscriptionCompleted, EventSubscriptionCancelled, EventSubscriptionCharged:
		return true
	default:
		return false
	}
}

// IsPaymentEvent reports whether the kind creates a payment record.
func (k EventKind) IsPaymentEvent() bool {
	return k == EventPaymentCaptured || k == EventPaymentFailed
}

// Event is the normalized payload the state machine consumes. Epoch fields
// are seconds as delivered by Razorpay; zero means absent.
type Event struct {
	Kind         EventKind
	CurrentStart int64
	CurrentEnd   int64
	EndedAt      int64
	PaidCount    int
}

// Transition is the outcome of applying an event to a subscription status.
// Nil pointer fields mean "leave unchanged". StaleData flags a numeric
// regression in the payload (applied-for-status, flagged-for-audit).
type Transition struct {
	NewStatus          string
	Changed            bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	EndedAt            *time.Time
	PaidCount          *int
	StaleData          bool
	Warning            string
}

// Apply is the pure transition function: (current status, paid count, event)
// to (new status, field updates). It performs no I/O; both the creation
// orchestrator and the webhook pipeline mutate subscriptions only through it.
func Apply(currentStatus string, currentPaidCount int, ev Event) (Transition, error) {
	tr := Transition{NewStatus: currentStatus}

	switch currentStatus {
	case models.SubscriptionStatusCreated, models.SubscriptionStatusActive,
		models.SubscriptionStatusHalted:
	case models.SubscriptionStatusCompleted, models.SubscriptionStatusCancelled:
		// Terminal statuses never move; a late event is acknowledged as a no-op.
		if ev.Kind.IsSubscriptionEvent() {
			tr.Warning = "subscription already " + currentStatus
		}
		return tr, nil
	default:
		return tr, fmt.Errorf("unrecognized subscription status %q", currentStatus)
	}

	switch ev.Kind {
	case EventSubscriptionActivated:
		tr.NewStatus = models.SubscriptionStatusActive
		tr.Changed = currentStatus != models.SubscriptionStatusActive
		applyPeriod(&tr, ev)
	case EventSubscriptionHalted:
		tr.NewStatus = models.SubscriptionStatusHalted
		tr.Changed = currentStatus != models.SubscriptionStatusHalted
	case EventSubscriptionCompleted:
		tr.NewStatus = models.SubscriptionStatusCompleted
		tr.Changed = true
		applyEnd(&tr, ev)
	case EventSubscriptionCancelled:
		tr.NewStatus = models.SubscriptionStatusCancelled
		tr.Changed = true
		applyEnd(&tr, ev)
	case EventSubscriptionCharged:
		// A charge does not move the status on its own but refreshes the
		// billing period alongside the paid counter.
		applyPeriod(&tr, ev)
	case EventPaymentCaptured, EventPaymentFailed:
		// Payment events do not touch subscription status.
		return tr, nil
	case EventUnknown:
		tr.Warning = "Unknown event type"
		return tr, nil
	}

	applyPaidCount(&tr, currentPaidCount, ev)
	return tr, nil
}

func applyPeriod(tr *Transition, ev Event) {
	if ev.CurrentStart > 0 {
		t := time.Unix(ev.CurrentStart, 0).UTC()
		tr.CurrentPeriodStart = &t
	}
	if ev.CurrentEnd > 0 {
		t := time.Unix(ev.CurrentEnd, 0).UTC()
		tr.CurrentPeriodEnd = &t
	}
}

func applyEnd(tr *Transition, ev Event) {
	at := ev.EndedAt
	if at <= 0 {
		at = time.Now().Unix()
	}
	t := time.Unix(at, 0).UTC()
	tr.EndedAt = &t
}

// applyPaidCount keeps paid_count monotone: a regressed value is not written
// but flagged so the audit trail records the out-of-order delivery.
func applyPaidCount(tr *Transition, current int, ev Event) {
	if ev.PaidCount <= 0 {
		return
	}
	if ev.PaidCount < current {
		tr.StaleData = true
		return
	}
	if ev.PaidCount > current {
		pc := ev.PaidCount
		tr.PaidCount = &pc
	}
}
