// internal/service/client/client.go
package client

import (
	"context"
	"errors"
	"strings"

	"warmup-service/internal/domain/client"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	actionList         = "Erro ao listar clientes"
	actionGet          = "Erro ao buscar cliente"
	actionCreate       = "Erro ao criar cliente"
	actionUpdate       = "Erro ao atualizar cliente"
	actionDelete       = "Erro ao deletar cliente"
	actionListByStatus = "Erro ao listar clientes por status"
	actionSearch       = "Erro ao buscar clientes"
)

type ClientService struct {
	repo     client.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewClientService(repo client.Repository, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// ========== Reads ==========

// List applies at most one filter: status wins over the company prefix.
func (s *ClientService) List(ctx context.Context, filters *client.ClientListFilters) ([]client.Client, error) {
	if filters != nil && filters.Status != "" {
		return s.ListByStatus(ctx, client.Status(filters.Status))
	}
	if filters != nil && filters.Company != "" {
		return s.SearchByCompany(ctx, filters.Company)
	}

	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, xerrors.Op(actionList, err)
	}
	return clients, nil
}

// GetByID returns the client with its numbers and billing, or nil when it does not exist.
func (s *ClientService) GetByID(ctx context.Context, id string) (*client.ClientDetails, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionGet, err)
	}

	numbers, err := s.repo.ListNumbers(ctx, c)
	if err != nil {
		return nil, xerrors.Op(actionGet, err)
	}

	details := &client.ClientDetails{Client: *c, Numbers: numbers}

	billing, err := s.repo.GetBilling(ctx, c)
	switch {
	case err == nil:
		details.BillingInfo = billing
	case !errors.Is(err, xerrors.ErrNotFound):
		return nil, xerrors.Op(actionGet, err)
	}

	return details, nil
}

func (s *ClientService) ListByStatus(ctx context.Context, status client.Status) ([]client.Client, error) {
	if !status.IsValid() {
		return nil, xerrors.NewFieldValidation("status", "Status inválido")
	}

	clients, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, xerrors.Op(actionListByStatus, err)
	}
	return clients, nil
}

// SearchByCompany is a case-sensitive prefix search.
func (s *ClientService) SearchByCompany(ctx context.Context, prefix string) ([]client.Client, error) {
	clients, err := s.repo.SearchByCompany(ctx, prefix)
	if err != nil {
		return nil, xerrors.Op(actionSearch, err)
	}
	return clients, nil
}

// ========== Writes ==========

func (s *ClientService) Create(ctx context.Context, req *client.CreateClientRequest) (*client.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Company = strings.TrimSpace(req.Company)

	if err := s.validate.Struct(req); err != nil {
		return nil, xerrors.NewValidation("Preencha todos os campos obrigatórios")
	}

	c, err := s.repo.Create(ctx, req)
	if err != nil {
		s.logger.Error("failed to create client", zap.String("company", req.Company), zap.Error(err))
		return nil, xerrors.Op(actionCreate, err)
	}

	s.logger.Info("client created",
		zap.String("client_id", c.ID),
		zap.String("company", c.Company),
		zap.String("created_by", req.CreatedBy),
	)

	return c, nil
}

// Update merges the provided fields. A missing client yields nil, nil.
func (s *ClientService) Update(ctx context.Context, id string, req *client.UpdateClientRequest) (*client.Client, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, xerrors.NewFieldValidation("status", "Status inválido")
	}

	c, err := s.repo.Update(ctx, id, req)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionUpdate, err)
	}

	s.logger.Info("client updated", zap.String("client_id", id))
	return c, nil
}

func (s *ClientService) UpdateStatus(ctx context.Context, id string, status client.Status) (*client.Client, error) {
	return s.Update(ctx, id, &client.UpdateClientRequest{Status: &status})
}

// Delete is unconditional; deleting a missing client is not an error.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return xerrors.Op(actionDelete, err)
	}

	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

// SetBilling replaces the current billing record. A missing client yields nil, nil.
func (s *ClientService) SetBilling(ctx context.Context, id string, req *client.SetBillingRequest) (*client.Billing, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, xerrors.NewFieldValidation("monthly_value", "O valor mensal não pode ser negativo")
	}

	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionUpdate, err)
	}

	billing, err := s.repo.SetBilling(ctx, c.ID, req)
	if err != nil {
		return nil, xerrors.Op(actionUpdate, err)
	}
	if billing.Plan == "" {
		billing.Plan = c.Plan
	}

	s.logger.Info("client billing updated", zap.String("client_id", id), zap.String("plan", billing.Plan))
	return billing, nil
}
