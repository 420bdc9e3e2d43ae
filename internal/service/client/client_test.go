package client

import (
	"context"
	"errors"
	"testing"

	"warmup-service/internal/domain/client"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) Create(ctx context.Context, req *client.CreateClientRequest) (*client.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepo) FindByID(ctx context.Context, id string) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepo) Update(ctx context.Context, id string, req *client.UpdateClientRequest) (*client.Client, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClientRepo) List(ctx context.Context) ([]client.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepo) ListByStatus(ctx context.Context, status client.Status) ([]client.Client, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepo) SearchByCompany(ctx context.Context, prefix string) ([]client.Client, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepo) ListNumbers(ctx context.Context, c *client.Client) ([]client.NumberSummary, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.NumberSummary), args.Error(1)
}

func (m *MockClientRepo) GetBilling(ctx context.Context, c *client.Client) (*client.Billing, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Billing), args.Error(1)
}

func (m *MockClientRepo) SetBilling(ctx context.Context, clientID string, req *client.SetBillingRequest) (*client.Billing, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Billing), args.Error(1)
}

func newService() (*ClientService, *MockClientRepo) {
	repo := new(MockClientRepo)
	return NewClientService(repo, zap.NewNop()), repo
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingFieldsNeverReachStore", func(t *testing.T) {
		svc, repo := newService()

		_, err := svc.Create(ctx, &client.CreateClientRequest{Name: "Ana", Email: "  ", Company: "Acme"})
		require.Error(t, err)
		assert.True(t, xerrors.IsValidation(err))
		assert.Equal(t, "Preencha todos os campos obrigatórios", err.Error())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		svc, repo := newService()
		req := &client.CreateClientRequest{Name: " Ana ", Email: "ana@acme.com", Company: "Acme"}
		repo.On("Create", ctx, req).Return(&client.Client{ID: "c1", Name: "Ana", Status: client.StatusActive}, nil)

		c, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
		assert.Equal(t, "Ana", req.Name)
		repo.AssertExpectations(t)
	})

	t.Run("StoreErrorIsTranslated", func(t *testing.T) {
		svc, repo := newService()
		req := &client.CreateClientRequest{Name: "Ana", Email: "ana@acme.com", Company: "Acme"}
		repo.On("Create", ctx, req).Return(nil, &pgconn.PgError{Code: "23505"})

		_, err := svc.Create(ctx, req)
		require.Error(t, err)
		assert.Equal(t, "Erro ao criar cliente: Este registro já existe.", err.Error())
	})
}

func TestClientService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingIsNil", func(t *testing.T) {
		svc, repo := newService()
		repo.On("FindByID", ctx, "gone").Return(nil, xerrors.ErrNotFound)

		details, err := svc.GetByID(ctx, "gone")
		assert.NoError(t, err)
		assert.Nil(t, details)
	})

	t.Run("WithNumbersNoBilling", func(t *testing.T) {
		svc, repo := newService()
		c := &client.Client{ID: "c1", Company: "Acme"}
		repo.On("FindByID", ctx, "c1").Return(c, nil)
		repo.On("ListNumbers", ctx, c).Return([]client.NumberSummary{{ID: "n1", Status: "heating"}}, nil)
		repo.On("GetBilling", ctx, c).Return(nil, xerrors.ErrNotFound)

		details, err := svc.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Len(t, details.Numbers, 1)
		assert.Nil(t, details.BillingInfo)
		repo.AssertExpectations(t)
	})

	t.Run("NumbersFailure", func(t *testing.T) {
		svc, repo := newService()
		c := &client.Client{ID: "c1"}
		repo.On("FindByID", ctx, "c1").Return(c, nil)
		repo.On("ListNumbers", ctx, c).Return(nil, errors.New("boom"))

		_, err := svc.GetByID(ctx, "c1")
		require.Error(t, err)
		assert.Equal(t, "Erro ao buscar cliente: boom", err.Error())
	})
}

func TestClientService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	repo.On("Delete", ctx, "c1").Return(nil)
	repo.On("FindByID", ctx, "c1").Return(nil, xerrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "c1"))
	details, err := svc.GetByID(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, details)
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidStatus", func(t *testing.T) {
		svc, repo := newService()

		_, err := svc.UpdateStatus(ctx, "c1", client.Status("archived"))
		require.Error(t, err)
		assert.Equal(t, "Status inválido", err.Error())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StatusOnly", func(t *testing.T) {
		svc, repo := newService()
		repo.On("Update", ctx, "c1", mock.MatchedBy(func(req *client.UpdateClientRequest) bool {
			return req.Status != nil && *req.Status == client.StatusSuspended && req.Name == nil && req.Company == nil
		})).Return(&client.Client{ID: "c1", Status: client.StatusSuspended}, nil)

		c, err := svc.UpdateStatus(ctx, "c1", client.StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, client.StatusSuspended, c.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Missing", func(t *testing.T) {
		svc, repo := newService()
		name := "x"
		req := &client.UpdateClientRequest{Name: &name}
		repo.On("Update", ctx, "gone", req).Return(nil, xerrors.ErrNotFound)

		c, err := svc.Update(ctx, "gone", req)
		assert.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("StatusFilter", func(t *testing.T) {
		svc, repo := newService()
		repo.On("ListByStatus", ctx, client.StatusInactive).Return([]client.Client{{ID: "c1"}}, nil)

		clients, err := svc.List(ctx, &client.ClientListFilters{Status: "inactive", Company: "ignored"})
		require.NoError(t, err)
		assert.Len(t, clients, 1)
		repo.AssertNotCalled(t, "SearchByCompany", mock.Anything, mock.Anything)
	})

	t.Run("CompanyPrefix", func(t *testing.T) {
		svc, repo := newService()
		repo.On("SearchByCompany", ctx, "Eco").Return([]client.Client{{Company: "EcoBrasil"}, {Company: "Ecovia"}}, nil)

		clients, err := svc.List(ctx, &client.ClientListFilters{Company: "Eco"})
		require.NoError(t, err)
		assert.Len(t, clients, 2)
	})

	t.Run("ErrorPrefix", func(t *testing.T) {
		svc, repo := newService()
		repo.On("List", ctx).Return(nil, context.DeadlineExceeded)

		_, err := svc.List(ctx, nil)
		require.Error(t, err)
		assert.Equal(t, "Erro ao listar clientes: A operação excedeu o tempo limite.", err.Error())
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestClientService_SetBilling(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	c := &client.Client{ID: "c1", Plan: "pro"}
	req := &client.SetBillingRequest{MonthlyValue: 99}
	repo.On("FindByID", ctx, "c1").Return(c, nil)
	repo.On("SetBilling", ctx, "c1", req).Return(&client.Billing{MonthlyValue: 99}, nil)

	b, err := svc.SetBilling(ctx, "c1", req)
	require.NoError(t, err)
	assert.Equal(t, "pro", b.Plan)

	_, err = svc.SetBilling(ctx, "c1", &client.SetBillingRequest{MonthlyValue: -1})
	assert.True(t, xerrors.IsValidation(err))
}
