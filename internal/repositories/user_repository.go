package repositories

import (
	"errors"

	"kolo/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrPhoneTaken        = errors.New("phone number already taken")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the interface for member-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByWalletAddress(address string) (*models.User, error)
	Update(user *models.User) error
	IncrementTokenVersion(userID uint) error
	UpdateStatus(userID uint, status string) error
}
