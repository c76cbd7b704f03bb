package repository

import (
	"github.com/pathcraft-app/pathcraft/app/models"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("api_key_hash = ?", hash).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

type userProfileRepository struct {
	db *gorm.DB
}

// NewUserProfileRepository creates a user profile repository backed by GORM.
func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) GetOrCreate(userID uint) (*models.UserProfile, error) {
	return models.GetOrCreateUserProfile(r.db, userID)
}

func (r *userProfileRepository) Save(profile *models.UserProfile) error {
	return r.db.Save(profile).Error
}
