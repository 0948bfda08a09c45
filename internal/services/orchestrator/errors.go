package orchestrator

import "errors"

// Service errors
var (
	ErrInvalidAmount     = errors.New("amount must be between 0.01 and 10000")
	ErrNoRecipient       = errors.New("no recipient specified")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrSenderInactive    = errors.New("sender account is not active")
	ErrRecipientInactive = errors.New("recipient account is not active")
	ErrNoteTooLong       = errors.New("note exceeds maximum length")
	ErrFundingBusy       = errors.New("another payment from this account is in progress")
	ErrTopUpShort        = errors.New("balance still short after top-up")
	ErrPaymentFailed     = errors.New("payment could not be completed")
)
