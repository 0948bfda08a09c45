package validation

import (
	"regexp"

	"kolo/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// SendPayment validates a payment request before it reaches the
// orchestration core. Exactly one of recipient and contact must be
// set; the core re-checks semantics, this catches malformed input at
// the edge.
func (v *Validator) SendPayment(req *models.SendPaymentRequest) {
	v.Required("amount", req.Amount)
	v.Range("amount", req.Amount, MinTransactionAmount, MaxTransactionAmount)

	if req.Recipient == "" && req.Contact == "" {
		v.AddError("recipient", "either recipient or contact is required")
	}
	if req.Recipient != "" && req.Contact != "" {
		v.AddError("recipient", "specify recipient or contact, not both")
	}
	if req.Contact != "" && !phoneRegex.MatchString(req.Contact) && !emailRegex.MatchString(req.Contact) {
		v.AddError("contact", "must be a valid phone number or email address")
	}

	v.MaxLength("note", req.Note, MaxNoteLength)

	if req.Kind != "" {
		v.Check(models.ValidTransferKind(req.Kind), "kind", "must be personal, rent, service, or storefront")
	}
}

// Registration validates a new member signup.
func (v *Validator) Registration(input *models.CreateUserInput) {
	v.Required("username", input.Username)
	v.MinLength("username", input.Username, 3)
	v.MaxLength("username", input.Username, 32)
	v.Required("name", input.Name)
	v.Email("email", input.Email)
	v.Phone("phone", input.Phone)
	v.Password("password", input.Password)
}

// CardInput validates a card-linking request. The number itself is
// Luhn-checked at tokenization; this only checks shape.
func (v *Validator) CardInput(input *models.CreateCardInput) {
	v.Required("card_number", input.CardNumber)
	v.Required("expiry_month", input.ExpiryMonth)
	v.Required("expiry_year", input.ExpiryYear)
	v.Required("card_holder_name", input.CardHolderName)
}
