// Package ledger provides the HTTP client for the external Account/Ledger
// service.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
)

// Client calls the Account/Ledger service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a ledger HTTP client.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "ledger-client"),
	}
}

type mutationRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
	Description   string `json:"description,omitempty"`
	Type          string `json:"type"`
}

type limitsRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Type          string `json:"type"`
	Channel       string `json:"channel"`
}

type holdRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
	Reason        string `json:"reason"`
}

type releaseRequest struct {
	AccountNumber string `json:"accountNumber"`
	HoldID        string `json:"holdId"`
	Reference     string `json:"reference"`
	Reason        string `json:"reason"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type holdResponse struct {
	HoldID string `json:"holdId"`
}

type balanceResponse struct {
	AccountNumber string `json:"accountNumber"`
	Ledger        int64  `json:"ledgerBalance"`
	Reserved      int64  `json:"reservedBalance"`
	Currency      string `json:"currency"`
}

// ValidateLimits implements ledger.Client.
func (c *Client) ValidateLimits(ctx context.Context, accountNumber string, amount money.Money, txType transaction.Type, channel transaction.Channel) error {
	body := limitsRequest{
		AccountNumber: accountNumber,
		Amount:        amount.Amount(),
		Currency:      amount.Currency().String(),
		Type:          string(txType),
		Channel:       string(channel),
	}
	return c.post(ctx, "/accounts/limits/validate", body, nil)
}

// Debit implements ledger.Client. The ledger applies the mutation
// idempotently per reference.
func (c *Client) Debit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error {
	body := mutationRequest{
		AccountNumber: accountNumber,
		Amount:        amount.Amount(),
		Currency:      amount.Currency().String(),
		Reference:     reference,
		Description:   description,
		Type:          string(txType),
	}
	return c.post(ctx, "/accounts/debit", body, nil)
}

// Credit implements ledger.Client.
func (c *Client) Credit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error {
	body := mutationRequest{
		AccountNumber: accountNumber,
		Amount:        amount.Amount(),
		Currency:      amount.Currency().String(),
		Reference:     reference,
		Description:   description,
		Type:          string(txType),
	}
	return c.post(ctx, "/accounts/credit", body, nil)
}

// Hold implements ledger.Client.
func (c *Client) Hold(ctx context.Context, accountNumber string, amount money.Money, reference, reason string) (*ledger.Hold, error) {
	body := holdRequest{
		AccountNumber: accountNumber,
		Amount:        amount.Amount(),
		Currency:      amount.Currency().String(),
		Reference:     reference,
		Reason:        reason,
	}
	var resp holdResponse
	if err := c.post(ctx, "/accounts/holds", body, &resp); err != nil {
		return nil, err
	}
	return &ledger.Hold{
		HoldID:        resp.HoldID,
		AccountNumber: accountNumber,
		Amount:        amount,
		Reference:     reference,
		Reason:        reason,
	}, nil
}

// Release implements ledger.Client.
func (c *Client) Release(ctx context.Context, accountNumber, holdID, reference, reason string) error {
	body := releaseRequest{
		AccountNumber: accountNumber,
		HoldID:        holdID,
		Reference:     reference,
		Reason:        reason,
	}
	return c.post(ctx, "/accounts/holds/release", body, nil)
}

// GetBalance implements ledger.Client.
func (c *Client) GetBalance(ctx context.Context, accountNumber string) (*ledger.Balance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/accounts/"+accountNumber+"/balance", nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, c.mapError(httpResp)
	}
	var resp balanceResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode balance response: %w", err)
	}
	currency := money.Code(resp.Currency)
	booked, err := money.NewFromSmallestUnit(resp.Ledger, currency)
	if err != nil {
		return nil, err
	}
	reserved, err := money.NewFromSmallestUnit(resp.Reserved, currency)
	if err != nil {
		return nil, err
	}
	return &ledger.Balance{
		AccountNumber: resp.AccountNumber,
		Ledger:        booked,
		Reserved:      reserved,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.mapError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapError translates service error codes into the ledger sentinel errors.
func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var apiErr errorResponse
	_ = json.Unmarshal(raw, &apiErr)
	switch apiErr.Code {
	case "INSUFFICIENT_FUNDS":
		return ledger.ErrInsufficientFunds
	case "LIMIT_EXCEEDED":
		return ledger.ErrLimitExceeded
	case "UNSUPPORTED_CURRENCY":
		return ledger.ErrUnsupportedCurrency
	}
	c.logger.Error("ledger service error",
		"status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
	return fmt.Errorf("%w: status %d: %s", ledger.ErrUnavailable, resp.StatusCode, string(raw))
}

var _ ledger.Client = (*Client)(nil)
