package card

import (
	"strconv"
	"testing"
	"time"

	"kolo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"valid visa", "4242424242424242", true},
		{"valid mastercard", "5555555555554444", true},
		{"fails luhn", "4242424242424241", false},
		{"non numeric", "4242abcd42424242", false},
		{"empty", "", true}, // empty sums to zero; shape is checked before Luhn
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validCardNumber(tt.number))
		})
	}
}

func TestValidExpiryDate(t *testing.T) {
	now := time.Now()

	assert.True(t, validExpiryDate(int(now.Month()), now.Year()))
	assert.True(t, validExpiryDate(12, now.Year()+1))
	assert.False(t, validExpiryDate(int(now.Month()), now.Year()-1))
	assert.False(t, validExpiryDate(0, now.Year()+1))
	assert.False(t, validExpiryDate(13, now.Year()+1))
}

func TestTokenize(t *testing.T) {
	svc := &service{}
	future := strconv.Itoa(time.Now().Year() + 2)

	t.Run("stripe test token passes through", func(t *testing.T) {
		tok, err := svc.tokenize(models.CreateCardInput{
			CardNumber:  "tok_visa",
			ExpiryMonth: "12",
			ExpiryYear:  future,
		})
		require.NoError(t, err)
		assert.Equal(t, "tok_visa", tok.Token)
		assert.Equal(t, "Visa", tok.CardType)
	})

	t.Run("known test PAN maps to token", func(t *testing.T) {
		tok, err := svc.tokenize(models.CreateCardInput{
			CardNumber:  "5555555555554444",
			ExpiryMonth: "12",
			ExpiryYear:  future,
		})
		require.NoError(t, err)
		assert.Equal(t, "tok_mastercard", tok.Token)
		assert.Equal(t, "Mastercard", tok.CardType)
	})

	t.Run("luhn failure is rejected", func(t *testing.T) {
		_, err := svc.tokenize(models.CreateCardInput{
			CardNumber:  "4111111111111112",
			ExpiryMonth: "12",
			ExpiryYear:  future,
		})
		assert.Error(t, err)
	})

	t.Run("expired card is rejected", func(t *testing.T) {
		_, err := svc.tokenize(models.CreateCardInput{
			CardNumber:  "4111111111111111",
			ExpiryMonth: "01",
			ExpiryYear:  "2020",
		})
		assert.Error(t, err)
	})

	t.Run("raw PAN tokenization is unsupported", func(t *testing.T) {
		_, err := svc.tokenize(models.CreateCardInput{
			CardNumber:  "4111111111111111",
			ExpiryMonth: "12",
			ExpiryYear:  future,
		})
		assert.Error(t, err)
	})
}
