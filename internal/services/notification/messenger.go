package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kolo/internal/config"
)

// SMSMessenger delivers claim messages through an SMS gateway.
type SMSMessenger struct {
	baseURL string
	apiKey  string
	appURL  string
	client  *http.Client
}

// NewSMSMessenger creates a messenger from environment configuration.
func NewSMSMessenger() *SMSMessenger {
	return &SMSMessenger{
		baseURL: config.GetEnv("SMS_GATEWAY_URL", "http://localhost:9090"),
		apiKey:  config.GetEnv("SMS_GATEWAY_KEY", ""),
		appURL:  config.GetEnv("APP_URL", "http://localhost:3000"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendClaimMessage delivers the claim link out-of-band.
func (m *SMSMessenger) SendClaimMessage(ctx context.Context, contact, senderName string, amount float64, claimToken, note string) error {
	days := int(config.ClaimWindow().Hours() / 24)
	message := fmt.Sprintf("%s sent you %.2f on Kolo. Claim it within %d days: %s/claim/%s", senderName, amount, days, m.appURL, claimToken)
	if note != "" {
		message += fmt.Sprintf(" (%q)", note)
	}

	data, err := json.Marshal(smsPayload{To: contact, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal claim message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build claim message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver claim message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
