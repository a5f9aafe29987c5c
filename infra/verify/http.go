// Package verify provides HTTP clients for the external PIN and OTP
// verification services used by the security gate.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Expected credential shapes. Malformed input is rejected locally before the
// verification call goes out.
const (
	MinPINLength = 4
	OTPLength    = 6
)

// Client calls the PIN and OTP services over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a verification client.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "verify-client"),
	}
}

type verifyRequest struct {
	AccountNumber string `json:"accountNumber"`
	Secret        string `json:"secret"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// VerifyPIN implements security.PINVerifier.
func (c *Client) VerifyPIN(ctx context.Context, accountNumber, pin string) (bool, error) {
	if len(pin) < MinPINLength {
		return false, nil
	}
	return c.verify(ctx, "/pin/verify", accountNumber, pin)
}

// VerifyOTP implements security.OTPVerifier.
func (c *Client) VerifyOTP(ctx context.Context, accountNumber, otp string) (bool, error) {
	if len(otp) != OTPLength {
		return false, nil
	}
	return c.verify(ctx, "/otp/verify", accountNumber, otp)
}

func (c *Client) verify(ctx context.Context, path, accountNumber, secret string) (bool, error) {
	payload, err := json.Marshal(verifyRequest{AccountNumber: accountNumber, Secret: secret})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("verification service unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("verification service error", "path", path, "status", resp.StatusCode)
		return false, fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}
	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Valid, nil
}
