package registry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient is an in-memory registry for testing
type MockClient struct {
	mu      sync.RWMutex
	tenants map[string]*TenantRecord
}

func NewMock() *MockClient {
	return &MockClient{tenants: make(map[string]*TenantRecord)}
}

func (m *MockClient) Resolve(_ context.Context, routingToken string) (*TenantRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.tenants {
		if r.RoutingToken == routingToken {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockClient) GetTenant(_ context.Context, tenantID string) (*TenantRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.tenants[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MockClient) CreateTenant(_ context.Context, record *TenantRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[record.TenantID]; ok {
		return &ConditionalCheckFailed{TenantID: record.TenantID}
	}
	cp := *record
	m.tenants[record.TenantID] = &cp
	return nil
}

func (m *MockClient) UpdateKeywords(_ context.Context, tenantID string, rules []KeywordRule) error {
	return m.update(tenantID, func(r *TenantRecord) {
		r.Keywords = append([]KeywordRule(nil), rules...)
	})
}

func (m *MockClient) UpdateMentionResponse(_ context.Context, tenantID, response string) error {
	return m.update(tenantID, func(r *TenantRecord) { r.MentionResponse = response })
}

func (m *MockClient) UpdateAccessToken(_ context.Context, tenantID, accessToken string) error {
	return m.update(tenantID, func(r *TenantRecord) { r.AccessToken = accessToken })
}

func (m *MockClient) UpdateDailyLimit(_ context.Context, tenantID string, limit int) error {
	return m.update(tenantID, func(r *TenantRecord) { r.DailyLimit = limit })
}

func (m *MockClient) UpdateTimezone(_ context.Context, tenantID, tz string) error {
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}
	return m.update(tenantID, func(r *TenantRecord) { r.Timezone = tz })
}

func (m *MockClient) SetActive(_ context.Context, tenantID string, active bool) error {
	return m.update(tenantID, func(r *TenantRecord) { r.Active = active })
}

func (m *MockClient) update(tenantID string, fn func(*TenantRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tenants[tenantID]
	if !ok {
		return &ConditionalCheckFailed{TenantID: tenantID}
	}
	fn(r)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockClient) ListAll(_ context.Context) ([]*TenantRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*TenantRecord
	for _, r := range m.tenants {
		cp := *r
		records = append(records, &cp)
	}
	return records, nil
}

func (m *MockClient) DeleteTenant(_ context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tenants, tenantID)
	return nil
}

// ConditionalCheckFailed is returned when a conditional write fails
type ConditionalCheckFailed struct {
	TenantID string
}

func (e *ConditionalCheckFailed) Error() string {
	return "conditional check failed for tenant: " + e.TenantID
}
