// Package instagram is a minimal Graph API client for outbound replies.
package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmelo/gram-dispatch/internal/registry"
)

const defaultBaseURL = "https://graph.facebook.com/v18.0"

// Client sends messages and comment replies on behalf of a tenant, using
// the credentials carried in the tenant snapshot. Requests are bounded by
// the HTTP client timeout so a hung API cannot stall a dispatch past it.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a Graph API client. timeout bounds each request; zero means
// 10 seconds.
func New(timeout time.Duration) *Client {
	return NewWithBaseURL(defaultBaseURL, timeout)
}

// NewWithBaseURL points the client at a non-default API host (tests,
// sandbox deployments).
func NewWithBaseURL(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// APIError is a non-2xx Graph API response.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (http %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Transient reports whether retrying the request can plausibly succeed.
// Rate limiting and server errors are transient; other 4xx responses
// (bad recipient, revoked credential) are definitive rejections.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SendMessage delivers a direct message to recipientID as the tenant.
func (c *Client) SendMessage(ctx context.Context, tenant *registry.TenantRecord, recipientID, text string) error {
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, tenant.AccountID)
	payload := map[string]any{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}
	return c.post(ctx, endpoint, tenant.AccessToken, payload)
}

// ReplyToComment posts a reply under the given comment as the tenant.
func (c *Client) ReplyToComment(ctx context.Context, tenant *registry.TenantRecord, commentID, text string) error {
	endpoint := fmt.Sprintf("%s/%s/replies", c.baseURL, commentID)
	payload := map[string]string{"message": text}
	return c.post(ctx, endpoint, tenant.AccessToken, payload)
}

func (c *Client) post(ctx context.Context, url, accessToken string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	q := req.URL.Query()
	q.Set("access_token", accessToken)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiResp struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiResp)
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiResp.Error.Code,
			Message:    apiResp.Error.Message,
		}
	}
	return nil
}
