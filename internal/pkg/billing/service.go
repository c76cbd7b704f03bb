package billing

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathcraft-app/pathcraft/app/models"
	"github.com/pathcraft-app/pathcraft/internal/pkg/entitlements"
)

// Razorpay bills a subscription for a fixed number of cycles; these cover
// ten years for either interval.
const (
	totalCountMonthly = 120
	totalCountYearly  = 10
)

// Service is the billing core shared by both entry points: the synchronous
// creation orchestrator and the asynchronous webhook pipeline.
type Service struct {
	repo      Repository
	processor ProcessorClient
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, processor ProcessorClient) *Service {
	return &Service{repo: repo, processor: processor}
}

// NewServiceFromDB creates a billing service from a GORM DB handle with the
// Razorpay-backed processor client.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewRazorpayClientFromEnv())
}

// CreateSubscription runs the synchronous creation flow: validate, resolve
// the plan, reject duplicates, create the processor-side customer and
// subscription, persist locally. If persistence fails after the processor
// already created a live subscription, a single compensating cancellation is
// issued and its outcome reported in the error details.
func (s *Service) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*CreateSubscriptionResult, error) {
	tier := NormalizeTier(in.Tier)
	if tier == "" {
		return nil, newValidationError("unknown tier: " + in.Tier)
	}
	cycle := NormalizeBillingCycle(in.BillingCycle)
	if cycle == "" {
		return nil, newValidationError("billing cycle must be monthly or yearly")
	}
	if err := ValidateSeats(tier, in.Seats); err != nil {
		return nil, err
	}

	mapping, err := s.repo.FindActivePlanMapping(tier, cycle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newPlanNotConfiguredError(tier, cycle)
		}
		return nil, &ServiceError{Code: CodeDatabaseError, Message: "plan lookup failed", HTTPStatus: fiber.StatusInternalServerError}
	}

	existing, err := s.repo.FindNonTerminalByUserAndFamily(in.UserID, TierFamily(tier))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ServiceError{Code: CodeDatabaseError, Message: "subscription lookup failed", HTTPStatus: fiber.StatusInternalServerError}
	}
	if existing != nil && !IsUpgrade(existing.Tier, tier) {
		return nil, &ServiceError{
			Code:       CodeDuplicateSubscription,
			Message:    "an active subscription already exists in this tier family",
			HTTPStatus: fiber.StatusBadRequest,
			Details: map[string]interface{}{
				"existingTier":   existing.Tier,
				"existingStatus": existing.Status,
				"upgradeOptions": UpgradeOptions(existing.Tier),
			},
		}
	}

	name, email, contact := s.customerDetails(in)
	customerID, err := s.processor.FindOrCreateCustomer(ctx, name, email, contact)
	if err != nil {
		return nil, &ServiceError{
			Code:       CodeCustomerError,
			Message:    "could not create payment processor customer",
			HTTPStatus: fiber.StatusInternalServerError,
		}
	}

	notes := map[string]interface{}{
		"user_id":       strconv.FormatUint(uint64(in.UserID), 10),
		"tier":          tier,
		"billing_cycle": cycle,
		"seats":         strconv.Itoa(in.Seats),
	}
	for k, v := range in.Metadata {
		if _, reserved := notes[k]; !reserved {
			notes[k] = v
		}
	}

	totalCount := totalCountMonthly
	if cycle == models.BillingCycleYearly {
		totalCount = totalCountYearly
	}
	processorSub, err := s.processor.CreateSubscription(ctx, ProcessorSubscriptionInput{
		PlanID:     mapping.RazorpayPlanID,
		CustomerID: customerID,
		TotalCount: totalCount,
		Quantity:   in.Seats,
		Notes:      notes,
	})
	if err != nil {
		// Nothing local was persisted; a stray processor customer is harmless.
		return nil, &ServiceError{
			Code:       CodeSubscriptionError,
			Message:    "could not create payment processor subscription",
			HTTPStatus: fiber.StatusInternalServerError,
		}
	}

	sub := &models.Subscription{
		UUID:                   uuid.NewString(),
		UserID:                 in.UserID,
		RazorpaySubscriptionID: processorSub.ID,
		RazorpayCustomerID:     customerID,
		Tier:                   tier,
		TierFamily:             TierFamily(tier),
		BillingCycle:           cycle,
		Status:                 models.SubscriptionStatusCreated,
		Seats:                  in.Seats,
		RazorpayPlanID:         mapping.RazorpayPlanID,
		PlanName:               mapping.PlanName,
		PriceCents:             mapping.PriceCents,
		Currency:               mapping.Currency,
		ShortURL:               processorSub.ShortURL,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		// The processor now holds a live subscription the application has no
		// record of. Compensate with a single cancel attempt and report its
		// outcome distinctly so a double failure is never hidden.
		cancelled := true
		if cancelErr := s.processor.CancelSubscription(ctx, processorSub.ID); cancelErr != nil {
			cancelled = false
			log.Printf("billing: compensating cancel failed for %s: %v", processorSub.ID, cancelErr)
		}
		return nil, &ServiceError{
			Code:       CodeDatabaseError,
			Message:    "could not persist subscription",
			HTTPStatus: fiber.StatusInternalServerError,
			Details: map[string]interface{}{
				"subscriptionCancelled": cancelled,
			},
		}
	}

	result := &CreateSubscriptionResult{Subscription: sub}

	limits := entitlements.DefaultsFor(tier, in.Seats)
	profile := &models.UserProfile{
		UserID:                in.UserID,
		Tier:                  tier,
		BlueprintsPerMonth:    limits.BlueprintsPerMonth,
		RegenerationsPerMonth: limits.RegenerationsPerMonth,
		TeamSeats:             limits.TeamSeats,
	}
	if err := s.repo.UpsertUserProfile(profile); err != nil {
		log.Printf("billing: user profile upsert failed for user %d: %v", in.UserID, err)
		result.Warning = "subscription created but user profile defaults could not be updated"
	}
	return result, nil
}

// CancelSubscription cancels a user's subscription administratively: the
// processor-side cancel first, then the same state machine transition the
// webhook pipeline would apply.
func (s *Service) CancelSubscription(ctx context.Context, userID uint, subscriptionUUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUUID(userID, subscriptionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{Code: CodeNotFound, Message: "subscription not found", HTTPStatus: fiber.StatusNotFound}
		}
		return nil, &ServiceError{Code: CodeDatabaseError, Message: "subscription lookup failed", HTTPStatus: fiber.StatusInternalServerError}
	}
	if sub.IsTerminal() {
		return nil, newValidationError("subscription is already " + sub.Status)
	}

	if err := s.processor.CancelSubscription(ctx, sub.RazorpaySubscriptionID); err != nil {
		return nil, &ServiceError{
			Code:       CodeSubscriptionError,
			Message:    "could not cancel payment processor subscription",
			HTTPStatus: fiber.StatusInternalServerError,
		}
	}

	updated, err := s.repo.UpdateSubscriptionLocked(sub.RazorpaySubscriptionID, func(row *models.Subscription) error {
		tr, applyErr := Apply(row.Status, row.PaidCount, Event{Kind: EventSubscriptionCancelled})
		if applyErr != nil {
			return applyErr
		}
		applyTransition(row, tr)
		return nil
	})
	if err != nil {
		return nil, &ServiceError{Code: CodeDatabaseError, Message: "could not persist cancellation", HTTPStatus: fiber.StatusInternalServerError}
	}
	return updated, nil
}

// ListSubscriptions returns all subscriptions for a user, newest first.
func (s *Service) ListSubscriptions(ctx context.Context, userID uint) ([]models.Subscription, error) {
	_ = ctx
	return s.repo.ListSubscriptionsByUser(userID)
}

func (s *Service) customerDetails(in CreateSubscriptionInput) (name, email, contact string) {
	email = strings.TrimSpace(in.UserEmail)
	if in.CustomerInfo != nil {
		name = strings.TrimSpace(in.CustomerInfo.Name)
		contact = strings.TrimSpace(in.CustomerInfo.Contact)
		if e := strings.TrimSpace(in.CustomerInfo.Email); e != "" {
			email = e
		}
	}
	return name, email, contact
}

// applyTransition copies a state machine transition onto a subscription row.
func applyTransition(sub *models.Subscription, tr Transition) {
	sub.Status = tr.NewStatus
	if tr.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = tr.CurrentPeriodStart
	}
	if tr.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = tr.CurrentPeriodEnd
	}
	if tr.EndedAt != nil {
		sub.EndedAt = tr.EndedAt
	}
	if tr.PaidCount != nil {
		sub.PaidCount = *tr.PaidCount
	}
}
