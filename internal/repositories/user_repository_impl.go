package repositories

import (
	"context"
	"errors"
	"log"

	"kolo/internal/models"
	"kolo/internal/repositories/cache"

	"gorm.io/gorm"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB, cache *cache.CacheService) UserRepository {
	return &userRepository{
		db:    db,
		cache: cache,
	}
}

func (r *userRepository) Create(user *models.User) error {
	result := r.db.Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return ErrDatabaseOperation
	}
	return nil
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	// Try cache first
	key := r.cache.GenerateKey("user", "id", id)
	if user, err := r.cache.GetUser(context.Background(), key); err == nil {
		return user, nil
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := r.cache.CacheUser(context.Background(), &user); err != nil {
		log.Printf("Failed to cache user: %v", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getByField("email", email)
}

func (r *userRepository) GetByPhone(phone string) (*models.User, error) {
	return r.getByField("phone", phone)
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	return r.getByField("username", username)
}

func (r *userRepository) GetByWalletAddress(address string) (*models.User, error) {
	return r.getByField("wallet_address", address)
}

func (r *userRepository) getByField(field, value string) (*models.User, error) {
	var user models.User
	result := r.db.Where(field+" = ?", value).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabaseOperation
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	result := r.db.Save(user)
	if result.Error != nil {
		return ErrDatabaseOperation
	}

	if err := r.cache.InvalidateUser(context.Background(), user.ID); err != nil {
		log.Printf("Warning: Failed to invalidate user cache: %v", err)
	}

	return nil
}

func (r *userRepository) IncrementTokenVersion(userID uint) error {
	if err := r.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error; err != nil {
		return err
	}

	if err := r.cache.InvalidateUser(context.Background(), userID); err != nil {
		log.Printf("Cache invalidation error: %v", err)
	}
	return nil
}

func (r *userRepository) UpdateStatus(userID uint, status string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Update("status", status)
	if result.Error != nil {
		return ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	if err := r.cache.InvalidateUser(context.Background(), userID); err != nil {
		log.Printf("Cache invalidation error: %v", err)
	}
	return nil
}
