package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDispatcher talks to a running dispatcher over its admin HTTP API.
type HTTPDispatcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPDispatcher(baseURL string) *HTTPDispatcher {
	return &HTTPDispatcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPDispatcher) CreateClient(ctx context.Context, req *CreateClientRequest) (*CreateClientResponse, error) {
	var resp CreateClientResponse
	if err := c.do(ctx, http.MethodPost, "/clients", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPDispatcher) ListClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := c.do(ctx, http.MethodGet, "/clients", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *HTTPDispatcher) GetClient(ctx context.Context, id string) (*Client, error) {
	var client Client
	if err := c.do(ctx, http.MethodGet, "/clients/"+id, nil, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *HTTPDispatcher) UpdateClient(ctx context.Context, id string, req *UpdateClientRequest) (*Client, error) {
	var client Client
	if err := c.do(ctx, http.MethodPatch, "/clients/"+id, req, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *HTTPDispatcher) DeleteClient(ctx context.Context, id string, purge bool) error {
	path := "/clients/" + id
	if purge {
		path += "?purge=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPDispatcher) GetStats(ctx context.Context, id string) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/clients/"+id+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPDispatcher) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatcher request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("dispatcher returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
