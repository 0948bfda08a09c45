package validation

import (
	"strings"
	"testing"

	"kolo/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSendPaymentValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       models.SendPaymentRequest
		wantValid bool
		wantField string
	}{
		{
			name:      "valid member payment",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 20},
			wantValid: true,
		},
		{
			name:      "valid contact payment",
			req:       models.SendPaymentRequest{Contact: "+15550001111", Amount: 20},
			wantValid: true,
		},
		{
			name:      "contact by email",
			req:       models.SendPaymentRequest{Contact: "new@example.com", Amount: 20},
			wantValid: true,
		},
		{
			name:      "no recipient at all",
			req:       models.SendPaymentRequest{Amount: 20},
			wantValid: false,
			wantField: "recipient",
		},
		{
			name:      "both recipient and contact",
			req:       models.SendPaymentRequest{Recipient: "alice", Contact: "+15550001111", Amount: 20},
			wantValid: false,
			wantField: "recipient",
		},
		{
			name:      "malformed contact",
			req:       models.SendPaymentRequest{Contact: "not-a-contact", Amount: 20},
			wantValid: false,
			wantField: "contact",
		},
		{
			name:      "amount below minimum",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 0.001},
			wantValid: false,
			wantField: "amount",
		},
		{
			name:      "amount above maximum",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 10000.01},
			wantValid: false,
			wantField: "amount",
		},
		{
			name:      "note too long",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 20, Note: strings.Repeat("x", MaxNoteLength+1)},
			wantValid: false,
			wantField: "note",
		},
		{
			name:      "unknown kind",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 20, Kind: "lottery"},
			wantValid: false,
			wantField: "kind",
		},
		{
			name:      "rent kind accepted",
			req:       models.SendPaymentRequest{Recipient: "alice", Amount: 20, Kind: "rent"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.SendPayment(&tt.req)
			assert.Equal(t, tt.wantValid, v.Valid(), "errors: %v", v.Errors)
			if !tt.wantValid {
				assert.Contains(t, v.Errors, tt.wantField)
			}
		})
	}
}

func TestRegistrationValidation(t *testing.T) {
	valid := models.CreateUserInput{
		Username: "alice",
		Name:     "Alice B",
		Email:    "alice@example.com",
		Phone:    "+15550001111",
		Password: "Str0ng!pass",
	}

	t.Run("valid input", func(t *testing.T) {
		v := New()
		v.Registration(&valid)
		assert.True(t, v.Valid(), "errors: %v", v.Errors)
	})

	t.Run("weak password", func(t *testing.T) {
		input := valid
		input.Password = "password"
		v := New()
		v.Registration(&input)
		assert.False(t, v.Valid())
		assert.Contains(t, v.Errors, "password")
	})

	t.Run("bad email", func(t *testing.T) {
		input := valid
		input.Email = "nope"
		v := New()
		v.Registration(&input)
		assert.False(t, v.Valid())
		assert.Contains(t, v.Errors, "email")
	})
}
