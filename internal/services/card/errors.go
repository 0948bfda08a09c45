package card

import "errors"

// Service errors
var (
	ErrCardNotFound  = errors.New("card not found")
	ErrCardNotActive = errors.New("card not active")
	ErrChargeDenied  = errors.New("card charge denied")
	ErrRefundFailed  = errors.New("card refund failed")
)
