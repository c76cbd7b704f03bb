package billing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pathcraft-app/pathcraft/app/models"
)

// fakeRepository is an in-memory Repository for orchestrator and pipeline
// tests. Failure modes are injected per method.
type fakeRepository struct {
	planMappings  map[string]*models.PlanMapping
	subscriptions map[string]*models.Subscription
	events        map[string]*models.WebhookEvent
	payments      map[string]*models.Payment
	profiles      map[uint]*models.UserProfile

	nextEventRowID uint

	createSubscriptionErr error
	upsertProfileErr      error
	ledgerErr             error
	lockedUpdateErr       error

	createSubscriptionCalls int
	lockedUpdateCalls       int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		planMappings:  make(map[string]*models.PlanMapping),
		subscriptions: make(map[string]*models.Subscription),
		events:        make(map[string]*models.WebhookEvent),
		payments:      make(map[string]*models.Payment),
		profiles:      make(map[uint]*models.UserProfile),
	}
}

func (f *fakeRepository) addPlanMapping(tier, cycle, planID string, priceCents int64) {
	f.planMappings[tier+"|"+cycle] = &models.PlanMapping{
		Tier:           tier,
		BillingCycle:   cycle,
		RazorpayPlanID: planID,
		PlanName:       tier,
		PriceCents:     priceCents,
		Currency:       "INR",
		IsActive:       true,
	}
}

func (f *fakeRepository) FindActivePlanMapping(tier, cycle string) (*models.PlanMapping, error) {
	if m, ok := f.planMappings[tier+"|"+cycle]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindNonTerminalByUserAndFamily(userID uint, family string) (*models.Subscription, error) {
	for _, sub := range f.subscriptions {
		if sub.UserID == userID && sub.TierFamily == family && !sub.IsTerminal() {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateSubscription(sub *models.Subscription) error {
	f.createSubscriptionCalls++
	if f.createSubscriptionErr != nil {
		return f.createSubscriptionErr
	}
	if _, exists := f.subscriptions[sub.RazorpaySubscriptionID]; exists {
		return errors.New("duplicate external id")
	}
	copied := *sub
	f.subscriptions[sub.RazorpaySubscriptionID] = &copied
	return nil
}

func (f *fakeRepository) GetSubscriptionByUUID(userID uint, uuid string) (*models.Subscription, error) {
	for _, sub := range f.subscriptions {
		if sub.UserID == userID && sub.UUID == uuid {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetSubscriptionByExternalID(externalID string) (*models.Subscription, error) {
	if sub, ok := f.subscriptions[externalID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subscriptions {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateSubscriptionLocked(externalID string, apply func(*models.Subscription) error) (*models.Subscription, error) {
	f.lockedUpdateCalls++
	if f.lockedUpdateErr != nil {
		return nil, f.lockedUpdateErr
	}
	sub, ok := f.subscriptions[externalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := apply(sub); err != nil {
		return nil, err
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if f.ledgerErr != nil {
		return false, nil, f.ledgerErr
	}
	if stored, ok := f.events[event.ProviderEventID]; ok {
		return false, stored, nil
	}
	f.nextEventRowID++
	event.ID = f.nextEventRowID
	f.events[event.ProviderEventID] = event
	return true, event, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processed bool, processingError string) error {
	for _, ev := range f.events {
		if ev.ID == id {
			ev.Processed = processed
			ev.ProcessingError = processingError
			return nil
		}
	}
	return fmt.Errorf("webhook event %d not found", id)
}

func (f *fakeRepository) CreatePaymentIfNotExists(payment *models.Payment) error {
	if _, ok := f.payments[payment.RazorpayPaymentID]; ok {
		return nil
	}
	f.payments[payment.RazorpayPaymentID] = payment
	return nil
}

func (f *fakeRepository) UpsertUserProfile(profile *models.UserProfile) error {
	if f.upsertProfileErr != nil {
		return f.upsertProfileErr
	}
	f.profiles[profile.UserID] = profile
	return nil
}

// fakeProcessor records processor calls and returns canned results.
type fakeProcessor struct {
	customerID  string
	customerErr error

	subscriptionID  string
	subscriptionErr error

	cancelErr error

	customerCalls int
	createCalls   int
	cancelCalls   []string

	lastInput ProcessorSubscriptionInput
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{customerID: "cust_test1", subscriptionID: "sub_test1"}
}

func (p *fakeProcessor) FindOrCreateCustomer(ctx context.Context, name, email, contact string) (string, error) {
	p.customerCalls++
	if p.customerErr != nil {
		return "", p.customerErr
	}
	return p.customerID, nil
}

func (p *fakeProcessor) CreateSubscription(ctx context.Context, in ProcessorSubscriptionInput) (*ProcessorSubscription, error) {
	p.createCalls++
	p.lastInput = in
	if p.subscriptionErr != nil {
		return nil, p.subscriptionErr
	}
	return &ProcessorSubscription{ID: p.subscriptionID, Status: "created", ShortURL: "https://rzp.io/i/test"}, nil
}

func (p *fakeProcessor) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.cancelCalls = append(p.cancelCalls, subscriptionID)
	return p.cancelErr
}
