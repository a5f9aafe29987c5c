// Package customer provides the HTTP client for the external customer and
// compliance service.
package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/obiora/bankcore/pkg/customer"
)

// Client calls the customer/compliance service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a customer HTTP client.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "customer-client"),
	}
}

type kycResponse struct {
	CustomerID string `json:"customerId"`
	Verified   bool   `json:"verified"`
	Level      string `json:"level"`
}

type amlResponse struct {
	CustomerID  string `json:"customerId"`
	Blocklisted bool   `json:"blocklisted"`
	RiskRating  string `json:"riskRating"`
}

// GetKYCStatus implements customer.Client.
func (c *Client) GetKYCStatus(ctx context.Context, customerID string) (*customer.KYCStatus, error) {
	var resp kycResponse
	if err := c.get(ctx, "/customers/"+customerID+"/kyc", &resp); err != nil {
		return nil, err
	}
	return &customer.KYCStatus{
		CustomerID: resp.CustomerID,
		Verified:   resp.Verified,
		Level:      resp.Level,
	}, nil
}

// GetAMLStatus implements customer.Client.
func (c *Client) GetAMLStatus(ctx context.Context, customerID string) (*customer.AMLStatus, error) {
	var resp amlResponse
	if err := c.get(ctx, "/customers/"+customerID+"/aml", &resp); err != nil {
		return nil, err
	}
	return &customer.AMLStatus{
		CustomerID:  resp.CustomerID,
		Blocklisted: resp.Blocklisted,
		RiskRating:  resp.RiskRating,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", customer.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("customer service error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", customer.ErrUnavailable, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ customer.Client = (*Client)(nil)
