package api

import (
	"context"
)

// MockDispatcher for testing
type MockDispatcher struct {
	CreateClientFunc func(ctx context.Context, req *CreateClientRequest) (*CreateClientResponse, error)
	ListClientsFunc  func(ctx context.Context) ([]Client, error)
	GetClientFunc    func(ctx context.Context, id string) (*Client, error)
	UpdateClientFunc func(ctx context.Context, id string, req *UpdateClientRequest) (*Client, error)
	DeleteClientFunc func(ctx context.Context, id string, purge bool) error
	GetStatsFunc     func(ctx context.Context, id string) (*Stats, error)
}

func (m *MockDispatcher) CreateClient(ctx context.Context, req *CreateClientRequest) (*CreateClientResponse, error) {
	if m.CreateClientFunc != nil {
		return m.CreateClientFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockDispatcher) ListClients(ctx context.Context) ([]Client, error) {
	if m.ListClientsFunc != nil {
		return m.ListClientsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDispatcher) GetClient(ctx context.Context, id string) (*Client, error) {
	if m.GetClientFunc != nil {
		return m.GetClientFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDispatcher) UpdateClient(ctx context.Context, id string, req *UpdateClientRequest) (*Client, error) {
	if m.UpdateClientFunc != nil {
		return m.UpdateClientFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockDispatcher) DeleteClient(ctx context.Context, id string, purge bool) error {
	if m.DeleteClientFunc != nil {
		return m.DeleteClientFunc(ctx, id, purge)
	}
	return nil
}

func (m *MockDispatcher) GetStats(ctx context.Context, id string) (*Stats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, id)
	}
	return nil, nil
}
