package escrow

import "errors"

// Service errors
var (
	ErrAlreadyClaimed   = errors.New("transfer already claimed")
	ErrEscrowExpired    = errors.New("transfer has expired")
	ErrTokenNotFound    = errors.New("claim token not recognized")
	ErrClaimantIsSender = errors.New("sender cannot claim their own transfer")
)
