package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a network member. The wallet itself lives on the ledger
// service; WalletAddress is a reference, not owned state.
type User struct {
	gorm.Model
	Username      string `gorm:"uniqueIndex;not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	Phone         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Name          string `gorm:"not null"`
	WalletAddress string `gorm:"uniqueIndex;not null"`
	Role          string `gorm:"default:'user'"`
	Status        string `gorm:"default:'active'"`
	LastLoginAt   time.Time
	TokenVersion  int `gorm:"default:1"`
}

// Active reports whether the member may send or receive transfers.
func (u *User) Active() bool {
	return u.Status == "active"
}
