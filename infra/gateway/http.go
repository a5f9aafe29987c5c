// Package gateway provides the HTTP client for the external payment gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/obiora/bankcore/pkg/gateway"
)

// Client calls the payment gateway over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a payment gateway HTTP client.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "gateway-client"),
	}
}

type transferRequest struct {
	SourceAccount      string `json:"sourceAccount"`
	DestinationBank    string `json:"destinationBank"`
	DestinationAccount string `json:"destinationAccount"`
	DestinationName    string `json:"destinationName"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	Reference          string `json:"reference"`
	Routing            string `json:"routing"`
}

type transferResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	ErrorMessage  string `json:"errorMessage"`
}

// ProcessTransfer implements gateway.Client.
func (c *Client) ProcessTransfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResponse, error) {
	payload, err := json.Marshal(transferRequest{
		SourceAccount:      req.SourceAccount,
		DestinationBank:    req.DestinationBank,
		DestinationAccount: req.DestinationAccount,
		DestinationName:    req.DestinationName,
		Amount:             req.Amount.Amount(),
		Currency:           req.Amount.Currency().String(),
		Reference:          req.Reference,
		Routing:            string(req.Routing),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transfers", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("gateway error", "reference", req.Reference, "status", httpResp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", gateway.ErrUnavailable, httpResp.StatusCode)
	}

	var resp transferResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &gateway.TransferResponse{
		Success:              resp.Success,
		GatewayTransactionID: resp.TransactionID,
		ErrorMessage:         resp.ErrorMessage,
	}, nil
}

var _ gateway.Client = (*Client)(nil)
