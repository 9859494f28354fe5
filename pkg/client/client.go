// Package client provides a typed HTTP client for the governance
// kernel API: session listing, receipt retrieval, and evidence pack
// export/verification. The client supplies the verification engine's
// inputs; it takes no part in verification itself.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evidentsys/evident/pkg/contracts"
)

// APIError is returned when the kernel responds with a non-2xx status.
// It carries the kernel's structured error body, including the reason
// code, so callers can treat kernel-reported and locally-detected
// denials uniformly.
type APIError struct {
	Status     int
	Message    string
	ReasonCode contracts.ReasonCode
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kernel api %d: %s (%s)", e.Status, e.Message, e.ReasonCode)
}

// Client is a typed client for the kernel API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// New creates a new Client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.APIKey = key }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope contracts.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			return &APIError{
				Status:     resp.StatusCode,
				Message:    envelope.Error.Message,
				ReasonCode: envelope.Error.ReasonCode,
			}
		}
		return &APIError{Status: resp.StatusCode, Message: "unknown error", ReasonCode: contracts.ReasonErrorInternal}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ListSessions calls GET /api/v1/proofgraph/sessions.
func (c *Client) ListSessions(ctx context.Context, limit, offset int) ([]contracts.Session, error) {
	var out []contracts.Session
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/proofgraph/sessions?limit=%d&offset=%d", limit, offset), nil, &out)
	return out, err
}

// GetReceipts calls GET /api/v1/proofgraph/sessions/{id}/receipts.
func (c *Client) GetReceipts(ctx context.Context, sessionID string) ([]contracts.Receipt, error) {
	var out []contracts.Receipt
	err := c.do(ctx, http.MethodGet, "/api/v1/proofgraph/sessions/"+sessionID+"/receipts", nil, &out)
	return out, err
}

// GetReceipt calls GET /api/v1/proofgraph/receipts/{hash}.
func (c *Client) GetReceipt(ctx context.Context, receiptHash string) (*contracts.Receipt, error) {
	var out contracts.Receipt
	err := c.do(ctx, http.MethodGet, "/api/v1/proofgraph/receipts/"+receiptHash, nil, &out)
	return &out, err
}

// ExportRequest is the body of POST /api/v1/evidence/export.
type ExportRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Format    string `json:"format,omitempty"`
}

// ExportEvidence calls POST /api/v1/evidence/export and returns the
// raw tar.gz bundle.
func (c *Client) ExportEvidence(ctx context.Context, sessionID string) ([]byte, error) {
	body, err := json.Marshal(ExportRequest{SessionID: sessionID, Format: "tar.gz"})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/evidence/export", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Message: "export failed", ReasonCode: contracts.ReasonErrorInternal}
	}
	return io.ReadAll(resp.Body)
}

// VerifyEvidence calls POST /api/v1/evidence/verify — the server-side
// mirror of the local verification engine. Given the same bundle, its
// verdict must match the local one.
func (c *Client) VerifyEvidence(ctx context.Context, bundle []byte) (*contracts.VerificationResult, error) {
	var out contracts.VerificationResult
	err := c.do(ctx, http.MethodPost, "/api/v1/evidence/verify", map[string]any{"bundle_b64": bundle}, &out)
	return &out, err
}
