package billing

import (
	"github.com/pathcraft-app/pathcraft/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations shared by the creation orchestrator
// and the webhook pipeline. Both entry points mutate subscriptions only
// through it, so they cannot diverge in how a transition is persisted.
type Repository interface {
	FindActivePlanMapping(tier, cycle string) (*models.PlanMapping, error)
	FindNonTerminalByUserAndFamily(userID uint, family string) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	GetSubscriptionByUUID(userID uint, uuid string) (*models.Subscription, error)
	GetSubscriptionByExternalID(externalID string) (*models.Subscription, error)
	ListSubscriptionsByUser(userID uint) ([]models.Subscription, error)
	UpdateSubscriptionLocked(externalID string, apply func(*models.Subscription) error) (*models.Subscription, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processed bool, processingError string) error
	CreatePaymentIfNotExists(payment *models.Payment) error
	UpsertUserProfile(profile *models.UserProfile) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindActivePlanMapping(tier, cycle string) (*models.PlanMapping, error) {
	var m models.PlanMapping
	err := r.db.
		Where("tier = ? AND billing_cycle = ? AND is_active = ?", tier, cycle, true).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) FindNonTerminalByUserAndFamily(userID uint, family string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("user_id = ? AND tier_family = ? AND status NOT IN ?", userID, family,
			[]string{models.SubscriptionStatusCompleted, models.SubscriptionStatusCancelled}).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByUUID(userID uint, uuid string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ? AND uuid = ?", userID, uuid).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByExternalID(externalID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("razorpay_subscription_id = ?", externalID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Find(&subs).Error
	return subs, err
}

// UpdateSubscriptionLocked runs apply against the row under SELECT ... FOR
// UPDATE so concurrent webhook deliveries for the same external id serialize
// instead of interleaving status and period fields.
func (r *gormRepository) UpdateSubscriptionLocked(externalID string, apply func(*models.Subscription) error) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("razorpay_subscription_id = ?", externalID).
			First(&sub).Error; err != nil {
			return err
		}
		if err := apply(&sub); err != nil {
			return err
		}
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider_event_id = ?", event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processed bool, processingError string) error {
	updates := map[string]interface{}{
		"processed":        processed,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) CreatePaymentIfNotExists(payment *models.Payment) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "razorpay_payment_id"}},
		DoNothing: true,
	}).Create(payment).Error
}

func (r *gormRepository) UpsertUserProfile(profile *models.UserProfile) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier",
			"blueprints_per_month",
			"regenerations_per_month",
			"team_seats",
			"updated_at",
		}),
	}).Create(profile).Error
}
