package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerUnitConversion(t *testing.T) {
	assert.Equal(t, int64(5000), ToLedgerUnits(50))
	assert.Equal(t, int64(1), ToLedgerUnits(0.01))
	assert.Equal(t, int64(1250), ToLedgerUnits(12.50))
	assert.Equal(t, int64(1000000), ToLedgerUnits(10000))

	assert.Equal(t, 50.0, FromLedgerUnits(5000))
	assert.Equal(t, 0.01, FromLedgerUnits(1))

	// Round-trip within the supported precision.
	for _, amount := range []float64{0.01, 0.99, 1.10, 42.42, 9999.99} {
		assert.Equal(t, amount, FromLedgerUnits(ToLedgerUnits(amount)))
	}
}

func TestAmountToCents(t *testing.T) {
	assert.Equal(t, int64(1250), AmountToCents(12.50))
	assert.Equal(t, int64(1), AmountToCents(0.01))
	// Float representation noise must not lose a cent.
	assert.Equal(t, int64(2910), AmountToCents(29.1))
}
