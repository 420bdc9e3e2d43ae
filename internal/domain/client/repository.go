// internal/domain/client/repository.go
package client

import "context"

type Repository interface {
	Create(ctx context.Context, req *CreateClientRequest) (*Client, error)
	FindByID(ctx context.Context, id string) (*Client, error)
	Update(ctx context.Context, id string, req *UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context) ([]Client, error)
	ListByStatus(ctx context.Context, status Status) ([]Client, error)
	SearchByCompany(ctx context.Context, prefix string) ([]Client, error)

	// Detail enrichment
	ListNumbers(ctx context.Context, c *Client) ([]NumberSummary, error)
	GetBilling(ctx context.Context, c *Client) (*Billing, error)
	SetBilling(ctx context.Context, clientID string, req *SetBillingRequest) (*Billing, error)
}
