package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile carries per-user usage-limit fields derived from the active
// subscription tier. Created or refreshed as a best-effort step after a
// subscription is created.
type UserProfile struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"not null;uniqueIndex:ux_user_profiles_user" json:"user_id"`
	Tier                  string    `gorm:"type:varchar(50);not null;default:''" json:"tier"`
	BlueprintsPerMonth    int       `gorm:"not null;default:0" json:"blueprints_per_month"`
	RegenerationsPerMonth int       `gorm:"not null;default:0" json:"regenerations_per_month"`
	TeamSeats             int       `gorm:"not null;default:0" json:"team_seats"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateUserProfile loads the profile for a user, creating a default row
// when none exists yet.
func GetOrCreateUserProfile(db *gorm.DB, userID uint) (*UserProfile, error) {
	var profile UserProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	profile = UserProfile{UserID: userID}
	if err := db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
