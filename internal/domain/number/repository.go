// internal/domain/number/repository.go
package number

import "context"

type Repository interface {
	// Numbers
	Create(ctx context.Context, req *CreateNumberRequest) (*PhoneNumber, error)
	FindByID(ctx context.Context, id string) (*PhoneNumber, error)
	Update(ctx context.Context, id string, req *UpdateNumberRequest) (*PhoneNumber, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]PhoneNumber, error)
	ListByStatus(ctx context.Context, status Status) ([]PhoneNumber, error)
	ListByCompany(ctx context.Context, company string) ([]PhoneNumber, error)
	ResolveClientID(ctx context.Context, company string) (string, error)

	// Interactions
	CreateInteraction(ctx context.Context, numberID string, req *RegisterInteractionRequest) (*Interaction, error)
	TouchActivity(ctx context.Context, numberID string) error
	ListInteractions(ctx context.Context, numberID string, limit int) ([]Interaction, error)

	// Heating plans
	CreateHeatingPlan(ctx context.Context, numberID string, plan *HeatingPlan) (*HeatingPlan, error)
	UpdateHeatingPlan(ctx context.Context, numberID, planID string, req *UpdateHeatingPlanRequest) (*HeatingPlan, error)
	CurrentHeatingPlan(ctx context.Context, numberID string) (*HeatingPlan, error)
	FindHeatingPlan(ctx context.Context, numberID, planID string) (*HeatingPlan, error)

	// Health
	SaveHealth(ctx context.Context, numberID string, req *SaveHealthRequest) (*NumberHealth, error)
	GetHealth(ctx context.Context, numberID string) (*NumberHealth, error)
}
