package models

import "math"

// Conversion between the stable unit of account and ledger-native
// units is a fixed, versioned rate. Changing the rate requires a new
// version; nothing in the transfer path reads a floating exchange.
const (
	ConversionRateVersion = 1
	LedgerUnitsPerToken   = 100
)

// ToLedgerUnits converts a unit-of-account amount to ledger units.
func ToLedgerUnits(amount float64) int64 {
	return int64(math.Round(amount * LedgerUnitsPerToken))
}

// FromLedgerUnits converts ledger units to the display amount.
func FromLedgerUnits(units int64) float64 {
	return float64(units) / LedgerUnitsPerToken
}

// AmountToCents converts a unit-of-account amount to processor cents.
func AmountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
