// Package user manages member accounts and recipient resolution.
package user

import (
	"errors"
	"fmt"
	"strings"

	"kolo/internal/models"
	"kolo/internal/repositories"
	"kolo/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists       = errors.New("a member with this email, phone, or username already exists")
	ErrRecipientUnknown = errors.New("no member matches this recipient")
)

type Service interface {
	GetByID(id uint) (*models.User, error)
	Register(input *models.CreateUserInput) (*models.User, error)
	ResolveRecipient(identifier string) (*models.User, error)
	Update(user *models.User) error
	Deactivate(id uint) error
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	if repo == nil {
		panic("user repository is required")
	}
	return &service{repo: repo}
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// Register creates a member account with a fresh wallet address.
// Membership on the ledger side is provisioned out of band; until the
// ledger reports the wallet active the member can receive but not
// send.
func (s *service) Register(input *models.CreateUserInput) (*models.User, error) {
	if existing, _ := s.repo.GetByEmail(input.Email); existing != nil {
		return nil, ErrUserExists
	}
	if existing, _ := s.repo.GetByPhone(input.Phone); existing != nil {
		return nil, ErrUserExists
	}
	if existing, _ := s.repo.GetByUsername(input.Username); existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	addr, err := utils.GenerateUniqueID(20)
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet address: %w", err)
	}

	role := input.Role
	if role == "" {
		role = "user"
	}

	user := &models.User{
		Username:      input.Username,
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Password:      string(hashedPassword),
		WalletAddress: "0x" + addr,
		Role:          role,
		Status:        "active",
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// ResolveRecipient maps a user-supplied identifier to a member. The
// identifier may be a username, phone number, email, or wallet
// address; the first match wins.
func (s *service) ResolveRecipient(identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrRecipientUnknown
	}

	lookups := []func(string) (*models.User, error){
		s.repo.GetByUsername,
		s.repo.GetByPhone,
		s.repo.GetByEmail,
		s.repo.GetByWalletAddress,
	}
	for _, lookup := range lookups {
		u, err := lookup(identifier)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
	}

	return nil, ErrRecipientUnknown
}

func (s *service) Update(user *models.User) error {
	return s.repo.Update(user)
}

func (s *service) Deactivate(id uint) error {
	return s.repo.UpdateStatus(id, "suspended")
}
