package funding

import "errors"

// Service errors
var (
	ErrNoFundingMethod = errors.New("no funding method available")
	ErrInvalidAmount   = errors.New("invalid amount")
)
