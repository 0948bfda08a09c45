package models

import "time"

// CreditCard is a stored funding card. Only the processor token and
// the last four digits are persisted; the PAN never touches the
// database.
type CreditCard struct {
	ID          uint   `gorm:"primarykey"`
	UserID      uint   `gorm:"not null;index"`
	Token       string `gorm:"not null"`
	CardType    string `gorm:"not null"`
	ExpiryMonth string `gorm:"not null"`
	ExpiryYear  string `gorm:"not null"`
	LastFour    string `gorm:"not null"`
	IsDefault   bool   `gorm:"default:false"`
	Status      string `gorm:"default:'active'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CardToken is the processor-side tokenization result.
type CardToken struct {
	Token    string `json:"token"`
	Expiry   string `json:"expiry"`
	CardType string `json:"card_type"`
}

// CreateCardInput is the request body for linking a new card.
type CreateCardInput struct {
	CardNumber     string `json:"card_number"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CardHolderName string `json:"card_holder_name"`
}
