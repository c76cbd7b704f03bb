package controllers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pathcraft-app/pathcraft/app/models"
	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
	"github.com/pathcraft-app/pathcraft/internal/pkg/usercontext"
)

const testWebhookSecret = "whsec_handler_test"

// stubRepository is the minimal in-memory billing.Repository the handler
// tests need. Orchestration details are covered by the billing package tests;
// here we only care that requests reach the service and come back with the
// right status and shape.
type stubRepository struct {
	planMappings  map[string]*models.PlanMapping
	subscriptions map[string]*models.Subscription
	events        map[string]*models.WebhookEvent
	payments      map[string]*models.Payment
	profiles      map[uint]*models.UserProfile

	nextEventRowID uint
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		planMappings:  make(map[string]*models.PlanMapping),
		subscriptions: make(map[string]*models.Subscription),
		events:        make(map[string]*models.WebhookEvent),
		payments:      make(map[string]*models.Payment),
		profiles:      make(map[uint]*models.UserProfile),
	}
}

func (s *stubRepository) FindActivePlanMapping(tier, cycle string) (*models.PlanMapping, error) {
	if m, ok := s.planMappings[tier+"|"+cycle]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) FindNonTerminalByUserAndFamily(userID uint, family string) (*models.Subscription, error) {
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.TierFamily == family && !sub.IsTerminal() {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) CreateSubscription(sub *models.Subscription) error {
	s.subscriptions[sub.RazorpaySubscriptionID] = sub
	return nil
}

func (s *stubRepository) GetSubscriptionByUUID(userID uint, uuid string) (*models.Subscription, error) {
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.UUID == uuid {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) GetSubscriptionByExternalID(externalID string) (*models.Subscription, error) {
	if sub, ok := s.subscriptions[externalID]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *stubRepository) UpdateSubscriptionLocked(externalID string, apply func(*models.Subscription) error) (*models.Subscription, error) {
	sub, ok := s.subscriptions[externalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := apply(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *stubRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if stored, ok := s.events[event.ProviderEventID]; ok {
		return false, stored, nil
	}
	s.nextEventRowID++
	event.ID = s.nextEventRowID
	s.events[event.ProviderEventID] = event
	return true, event, nil
}

func (s *stubRepository) MarkWebhookProcessed(id uint, processed bool, processingError string) error {
	for _, ev := range s.events {
		if ev.ID == id {
			ev.Processed = processed
			ev.ProcessingError = processingError
		}
	}
	return nil
}

func (s *stubRepository) CreatePaymentIfNotExists(payment *models.Payment) error {
	s.payments[payment.RazorpayPaymentID] = payment
	return nil
}

func (s *stubRepository) UpsertUserProfile(profile *models.UserProfile) error {
	s.profiles[profile.UserID] = profile
	return nil
}

type stubProcessor struct {
	cancelCalls []string
}

func (p *stubProcessor) FindOrCreateCustomer(ctx context.Context, name, email, contact string) (string, error) {
	return "cust_stub", nil
}

func (p *stubProcessor) CreateSubscription(ctx context.Context, in billing.ProcessorSubscriptionInput) (*billing.ProcessorSubscription, error) {
	return &billing.ProcessorSubscription{ID: "sub_stub", Status: "created", ShortURL: "https://rzp.io/i/stub"}, nil
}

func (p *stubProcessor) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.cancelCalls = append(p.cancelCalls, subscriptionID)
	return nil
}

// stubUserStore backs both the user and profile repositories for account
// handler tests.
type stubUserStore struct {
	users    map[string]*models.User
	profiles map[uint]*models.UserProfile
	nextID   uint
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:    make(map[string]*models.User),
		profiles: make(map[uint]*models.UserProfile),
	}
}

func (s *stubUserStore) Create(user *models.User) error {
	s.nextID++
	user.ID = s.nextID
	s.users[user.Email] = user
	return nil
}

func (s *stubUserStore) GetByID(id uint) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) GetByEmail(email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) GetByAPIKeyHash(hash string) (*models.User, error) {
	for _, u := range s.users {
		if u.APIKeyHash != "" && u.APIKeyHash == hash {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) Update(user *models.User) error {
	s.users[user.Email] = user
	return nil
}

func (s *stubUserStore) GetOrCreate(userID uint) (*models.UserProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	p := &models.UserProfile{UserID: userID}
	s.profiles[userID] = p
	return p, nil
}

func (s *stubUserStore) Save(profile *models.UserProfile) error {
	s.profiles[profile.UserID] = profile
	return nil
}

// newTestApp wires the controllers onto a fiber app the way the API router
// does, with a header-driven stand-in for the API key middleware.
func newTestApp(repo *stubRepository) *fiber.App {
	return newTestAppWithAccounts(repo, newStubUserStore())
}

func newTestAppWithAccounts(repo *stubRepository, store *stubUserStore) *fiber.App {
	svc := billing.NewService(repo, &stubProcessor{})
	subCtrl := NewSubscriptionController(svc)
	whCtrl := NewWebhookController(svc, testWebhookSecret)
	acctCtrl := NewAccountController(store, store)

	app := fiber.New()
	app.Post("/api/v1/webhooks/razorpay", whCtrl.HandleRazorpayWebhook)
	app.Post("/api/v1/users/register", acctCtrl.HandleRegister)
	app.Post("/api/v1/users/api-keys", acctCtrl.HandleCreateAPIKey)

	authed := app.Group("/api/v1", func(c *fiber.Ctx) error {
		if c.Get("X-Test-User") != "" {
			usercontext.SetUserContext(c, usercontext.UserContext{
				UserID:     7,
				Email:      "tester@example.com",
				IsLoggedIn: true,
				IsAdmin:    c.Get("X-Test-Admin") == "1",
			})
		}
		return c.Next()
	})
	authed.Post("/subscriptions", subCtrl.HandleCreateSubscription)
	authed.Get("/users/me/subscriptions", subCtrl.HandleListSubscriptions)
	authed.Get("/users/me/profile", acctCtrl.HandleGetProfile)
	authed.Post("/subscriptions/:id/cancel", subCtrl.HandleCancelSubscription)
	authed.Delete("/admin/webhook-stats", whCtrl.HandleResetWebhookStats)
	return app
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
