package repository

import (
	"github.com/pathcraft-app/pathcraft/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
}

// UserProfileRepository defines the interface for user profile operations
type UserProfileRepository interface {
	GetOrCreate(userID uint) (*models.UserProfile, error)
	Save(profile *models.UserProfile) error
}
