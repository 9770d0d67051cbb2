package api

import (
	"context"
)

// Dispatcher is the interface for talking to the dispatcher admin API
type Dispatcher interface {
	CreateClient(ctx context.Context, req *CreateClientRequest) (*CreateClientResponse, error)
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id string) (*Client, error)
	UpdateClient(ctx context.Context, id string, req *UpdateClientRequest) (*Client, error)
	DeleteClient(ctx context.Context, id string, purge bool) error
	GetStats(ctx context.Context, id string) (*Stats, error)
}
