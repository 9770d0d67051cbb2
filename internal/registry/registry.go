package registry

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RoutingTokenIndex is the GSI used to resolve webhook deliveries to tenants.
const RoutingTokenIndex = "routing_token-index"

// KeywordRule binds a keyword to the response sent when the keyword occurs
// in an inbound message. Rules are evaluated in table order; the first match
// wins, so tenants control precedence by ordering.
type KeywordRule struct {
	Keyword  string `dynamodbav:"keyword" json:"keyword"`
	Response string `dynamodbav:"response" json:"response"`
}

// TenantRecord is the DynamoDB schema for a tenant. The dispatch engine
// treats a returned record as an immutable snapshot; only the registry
// mutates tenant configuration.
type TenantRecord struct {
	TenantID        string        `dynamodbav:"tenant_id" json:"tenant_id"`
	Name            string        `dynamodbav:"name" json:"name"`
	RoutingToken    string        `dynamodbav:"routing_token" json:"routing_token,omitempty"`
	AccessToken     string        `dynamodbav:"access_token,omitempty" json:"access_token,omitempty"`
	AccountID       string        `dynamodbav:"account_id" json:"account_id"`
	Active          bool          `dynamodbav:"active" json:"active"`
	Keywords        []KeywordRule `dynamodbav:"keywords" json:"keywords"`
	MentionResponse string        `dynamodbav:"mention_response,omitempty" json:"mention_response,omitempty"`
	DailyLimit      int           `dynamodbav:"daily_limit" json:"daily_limit"`
	Timezone        string        `dynamodbav:"timezone,omitempty" json:"timezone,omitempty"`
	CreatedAt       time.Time     `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `dynamodbav:"updated_at" json:"updated_at"`
}

// Location returns the tenant's quota-day time zone, defaulting to UTC when
// unset or unparseable.
func (r *TenantRecord) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Redacted returns a copy safe for API responses (credentials stripped).
func (r *TenantRecord) Redacted() *TenantRecord {
	cp := *r
	cp.AccessToken = ""
	return &cp
}

// NewRoutingToken generates an opaque URL-safe routing token. Tokens are
// unique per tenant and immutable once issued.
func NewRoutingToken() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Client is the interface for tenant registry operations
type Client interface {
	Resolve(ctx context.Context, routingToken string) (*TenantRecord, error)
	GetTenant(ctx context.Context, tenantID string) (*TenantRecord, error)
	CreateTenant(ctx context.Context, record *TenantRecord) error
	UpdateKeywords(ctx context.Context, tenantID string, rules []KeywordRule) error
	UpdateMentionResponse(ctx context.Context, tenantID, response string) error
	UpdateAccessToken(ctx context.Context, tenantID, accessToken string) error
	UpdateDailyLimit(ctx context.Context, tenantID string, limit int) error
	UpdateTimezone(ctx context.Context, tenantID, tz string) error
	SetActive(ctx context.Context, tenantID string, active bool) error
	ListAll(ctx context.Context) ([]*TenantRecord, error)
	DeleteTenant(ctx context.Context, tenantID string) error
}

// DynamoClient implements Client using AWS DynamoDB
type DynamoClient struct {
	db        *dynamodb.Client
	tableName string
}

// New creates a new DynamoDB-backed registry client
func New(db *dynamodb.Client, tableName string) *DynamoClient {
	return &DynamoClient{db: db, tableName: tableName}
}

// Resolve fetches the tenant that owns a routing token. Returns (nil, nil)
// when no tenant is bound to the token.
func (c *DynamoClient) Resolve(ctx context.Context, routingToken string) (*TenantRecord, error) {
	out, err := c.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		IndexName:              aws.String(RoutingTokenIndex),
		KeyConditionExpression: aws.String("routing_token = :rt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rt": &types.AttributeValueMemberS{Value: routingToken},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb Query: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var rec TenantRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, fmt.Errorf("unmarshal tenant: %w", err)
	}
	return &rec, nil
}

// GetTenant fetches a tenant record by ID
func (c *DynamoClient) GetTenant(ctx context.Context, tenantID string) (*TenantRecord, error) {
	out, err := c.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"tenant_id": &types.AttributeValueMemberS{Value: tenantID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var rec TenantRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal tenant: %w", err)
	}
	return &rec, nil
}

// CreateTenant creates a new tenant record (fails if already exists)
func (c *DynamoClient) CreateTenant(ctx context.Context, record *TenantRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal tenant: %w", err)
	}
	_, err = c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(tenant_id)"),
	})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem: %w", err)
	}
	return nil
}

// UpdateKeywords replaces the tenant's keyword table, preserving order
func (c *DynamoClient) UpdateKeywords(ctx context.Context, tenantID string, rules []KeywordRule) error {
	list, err := attributevalue.MarshalList(rules)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	return c.updateField(ctx, tenantID, "keywords", &types.AttributeValueMemberL{Value: list})
}

// UpdateMentionResponse updates the reply sent for story mentions
func (c *DynamoClient) UpdateMentionResponse(ctx context.Context, tenantID, response string) error {
	return c.updateField(ctx, tenantID, "mention_response", &types.AttributeValueMemberS{Value: response})
}

// UpdateAccessToken updates the Graph API access token for a tenant
func (c *DynamoClient) UpdateAccessToken(ctx context.Context, tenantID, accessToken string) error {
	return c.updateField(ctx, tenantID, "access_token", &types.AttributeValueMemberS{Value: accessToken})
}

// UpdateDailyLimit updates the daily send quota (0 = unlimited)
func (c *DynamoClient) UpdateDailyLimit(ctx context.Context, tenantID string, limit int) error {
	return c.updateField(ctx, tenantID, "daily_limit", &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", limit)})
}

// UpdateTimezone updates the tenant's quota-day time zone (IANA name)
func (c *DynamoClient) UpdateTimezone(ctx context.Context, tenantID, tz string) error {
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}
	return c.updateField(ctx, tenantID, "timezone", &types.AttributeValueMemberS{Value: tz})
}

// SetActive activates or deactivates a tenant (soft delete)
func (c *DynamoClient) SetActive(ctx context.Context, tenantID string, active bool) error {
	return c.updateField(ctx, tenantID, "active", &types.AttributeValueMemberBOOL{Value: active})
}

func (c *DynamoClient) updateField(ctx context.Context, tenantID, field string, value types.AttributeValue) error {
	_, err := c.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"tenant_id": &types.AttributeValueMemberS{Value: tenantID},
		},
		UpdateExpression: aws.String("SET #f = :v, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#f": field,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v":  value,
			":ua": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(tenant_id)"),
	})
	if err != nil {
		return fmt.Errorf("dynamodb UpdateItem %s: %w", field, err)
	}
	return nil
}

// ListAll returns all tenant records
func (c *DynamoClient) ListAll(ctx context.Context) ([]*TenantRecord, error) {
	out, err := c.db.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(c.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb Scan: %w", err)
	}
	var records []*TenantRecord
	for _, item := range out.Items {
		var rec TenantRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

// DeleteTenant removes a tenant record permanently
func (c *DynamoClient) DeleteTenant(ctx context.Context, tenantID string) error {
	_, err := c.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"tenant_id": &types.AttributeValueMemberS{Value: tenantID},
		},
	})
	return err
}
