// Package ledger is the adapter for the external ledger service, the
// system of record for token balances and transfers. The core never
// owns this state; it reads and submits through this client.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrLedgerUnavailable means the ledger service could not be
	// reached. Callers must not treat this as a zero balance.
	ErrLedgerUnavailable = errors.New("ledger service unavailable")

	// ErrWalletNotFound means the address has no wallet on the
	// ledger. Distinct from a wallet holding a zero balance.
	ErrWalletNotFound = errors.New("wallet not found on ledger")

	// ErrSettlementAmbiguous means a submitted transfer timed out
	// with an unknown on-chain outcome. It must never be retried or
	// auto-refunded; it routes to manual reconciliation.
	ErrSettlementAmbiguous = errors.New("settlement outcome unknown")

	// ErrSettlementRejected means the ledger cleanly rejected the
	// transfer. Safe to compensate.
	ErrSettlementRejected = errors.New("settlement rejected by ledger")
)

// Client is the ledger service contract consumed by the core.
type Client interface {
	GetBalance(ctx context.Context, address string) (int64, error)
	Transfer(ctx context.Context, from, to string, amount int64) (string, error)
	Mint(ctx context.Context, to string, amount int64) (string, error)
	IsActiveMember(ctx context.Context, address string) (bool, error)
	EnsureGas(ctx context.Context, address string) error
}

// HTTPClient talks JSON over HTTP to the ledger gateway. Every call
// carries a bounded timeout; the ledger defines none of its own.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPClient creates a ledger client for the given gateway URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type transferResponse struct {
	TxRef string `json:"tx_ref"`
}

type memberResponse struct {
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

func (c *HTTPClient) GetBalance(ctx context.Context, address string) (int64, error) {
	var resp balanceResponse
	status, err := c.get(ctx, "/v1/balances/"+address, &resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	switch {
	case status == http.StatusNotFound:
		return 0, ErrWalletNotFound
	case status != http.StatusOK:
		return 0, fmt.Errorf("%w: status %d", ErrLedgerUnavailable, status)
	}
	return resp.Balance, nil
}

func (c *HTTPClient) Transfer(ctx context.Context, from, to string, amount int64) (string, error) {
	var resp transferResponse
	status, err := c.post(ctx, "/v1/transfers", transferRequest{From: from, To: to, Amount: amount}, &resp)
	if err != nil {
		// The request may have reached the ledger before the
		// timeout fired; the outcome is unknown either way.
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", ErrSettlementAmbiguous
		}
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return resp.TxRef, nil
	case status == http.StatusGatewayTimeout:
		return "", ErrSettlementAmbiguous
	case status >= 400 && status < 500:
		return "", fmt.Errorf("%w: status %d", ErrSettlementRejected, status)
	default:
		return "", fmt.Errorf("%w: status %d", ErrLedgerUnavailable, status)
	}
}

func (c *HTTPClient) Mint(ctx context.Context, to string, amount int64) (string, error) {
	var resp transferResponse
	status, err := c.post(ctx, "/v1/mint", transferRequest{To: to, Amount: amount}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("%w: mint status %d", ErrLedgerUnavailable, status)
	}
	return resp.TxRef, nil
}

func (c *HTTPClient) IsActiveMember(ctx context.Context, address string) (bool, error) {
	var resp memberResponse
	status, err := c.get(ctx, "/v1/members/"+address, &resp)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	switch {
	case status == http.StatusNotFound:
		return false, nil
	case status != http.StatusOK:
		return false, fmt.Errorf("%w: status %d", ErrLedgerUnavailable, status)
	}
	return resp.Active, nil
}

func (c *HTTPClient) EnsureGas(ctx context.Context, address string) error {
	status, err := c.post(ctx, "/v1/members/"+address+"/gas", struct{}{}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("%w: gas status %d", ErrLedgerUnavailable, status)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
