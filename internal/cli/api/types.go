package api

import (
	"time"
)

type KeywordRule struct {
	Keyword  string `json:"keyword"`
	Response string `json:"response"`
}

type Client struct {
	TenantID        string        `json:"tenant_id"`
	Name            string        `json:"name,omitempty"`
	RoutingToken    string        `json:"routing_token,omitempty"`
	AccountID       string        `json:"account_id"`
	Active          bool          `json:"active"`
	Keywords        []KeywordRule `json:"keywords,omitempty"`
	MentionResponse string        `json:"mention_response,omitempty"`
	DailyLimit      int           `json:"daily_limit"`
	Timezone        string        `json:"timezone,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty"`
}

type CreateClientRequest struct {
	TenantID        string        `json:"tenant_id"`
	Name            string        `json:"name,omitempty"`
	AccountID       string        `json:"account_id"`
	AccessToken     string        `json:"access_token"`
	Keywords        []KeywordRule `json:"keywords,omitempty"`
	MentionResponse string        `json:"mention_response,omitempty"`
	DailyLimit      *int          `json:"daily_limit,omitempty"`
	Timezone        string        `json:"timezone,omitempty"`
}

type CreateClientResponse struct {
	Client     Client `json:"client"`
	WebhookURL string `json:"webhook_url"`
}

type UpdateClientRequest struct {
	AccessToken     *string        `json:"access_token,omitempty"`
	Keywords        *[]KeywordRule `json:"keywords,omitempty"`
	MentionResponse *string        `json:"mention_response,omitempty"`
	DailyLimit      *int           `json:"daily_limit,omitempty"`
	Timezone        *string        `json:"timezone,omitempty"`
	Active          *bool          `json:"active,omitempty"`
}

type Stats struct {
	TenantID   string `json:"tenant_id"`
	Active     bool   `json:"active"`
	DailyLimit int    `json:"daily_limit"`
	UsedToday  int    `json:"used_today"`
	Remaining  *int   `json:"remaining,omitempty"`
}
