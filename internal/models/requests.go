package models

// SendPaymentRequest is the request body for sending a payment.
// Recipient identifies a member (username, phone, or wallet address);
// Contact is a phone number or email for someone who is not a member
// yet. Exactly one must be set.
type SendPaymentRequest struct {
	Recipient string  `json:"recipient"`
	Contact   string  `json:"contact"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
	Kind      string  `json:"kind"`
}

// CreateUserInput is the request body for member registration.
type CreateUserInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"-"`
}

// LoginInput is the request body for login. Either email or phone
// identifies the member.
type LoginInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
