// internal/service/number/number.go
package number

import (
	"context"
	"errors"
	"strings"

	"warmup-service/internal/domain/number"
	xerrors "warmup-service/internal/pkg/errors"
	"warmup-service/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	actionList                = "Erro ao listar números"
	actionGet                 = "Erro ao buscar número"
	actionCreate              = "Erro ao criar número"
	actionUpdate              = "Erro ao atualizar número"
	actionDelete              = "Erro ao deletar número"
	actionRegisterInteraction = "Erro ao registrar interação"
	actionGetInteractions     = "Erro ao buscar interações"
	actionSetPlan             = "Erro ao configurar plano"
	actionUpdatePlan          = "Erro ao atualizar plano"
	actionSaveHealth          = "Erro ao salvar saúde do número"
	actionListByStatus        = "Erro ao listar números por status"
	actionListByCompany       = "Erro ao listar números por empresa"
)

type NumberService struct {
	repo     number.Repository
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewNumberService(repo number.Repository, m *metrics.Metrics, logger *zap.Logger) *NumberService {
	return &NumberService{
		repo:     repo,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
	}
}

// ========== Reads ==========

// List applies at most one filter: status wins over company.
func (s *NumberService) List(ctx context.Context, filters *number.NumberListFilters) ([]number.PhoneNumber, error) {
	if filters != nil && filters.Status != "" {
		return s.ListByStatus(ctx, number.Status(filters.Status))
	}
	if filters != nil && filters.Company != "" {
		return s.ListByCompany(ctx, filters.Company)
	}

	numbers, err := s.repo.List(ctx)
	if err != nil {
		return nil, xerrors.Op(actionList, err)
	}
	return numbers, nil
}

// GetByID returns the number with its current plan, current health and full interaction
// history. Missing plan or health is left out. A missing number yields nil, nil.
func (s *NumberService) GetByID(ctx context.Context, id string) (*number.NumberDetails, error) {
	n, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionGet, err)
	}

	details := &number.NumberDetails{PhoneNumber: *n}

	plan, err := s.repo.CurrentHeatingPlan(ctx, id)
	switch {
	case err == nil:
		details.HeatingPlan = plan
	case !errors.Is(err, xerrors.ErrNotFound):
		return nil, xerrors.Op(actionGet, err)
	}

	health, err := s.repo.GetHealth(ctx, id)
	switch {
	case err == nil:
		details.Health = health
	case !errors.Is(err, xerrors.ErrNotFound):
		return nil, xerrors.Op(actionGet, err)
	}

	details.Interactions, err = s.repo.ListInteractions(ctx, id, 0)
	if err != nil {
		return nil, xerrors.Op(actionGet, err)
	}

	return details, nil
}

func (s *NumberService) ListByStatus(ctx context.Context, status number.Status) ([]number.PhoneNumber, error) {
	if !status.IsValid() {
		return nil, xerrors.NewFieldValidation("status", "Status inválido")
	}

	numbers, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, xerrors.Op(actionListByStatus, err)
	}
	return numbers, nil
}

func (s *NumberService) ListByCompany(ctx context.Context, company string) ([]number.PhoneNumber, error) {
	numbers, err := s.repo.ListByCompany(ctx, company)
	if err != nil {
		return nil, xerrors.Op(actionListByCompany, err)
	}
	return numbers, nil
}

// GetInteractions returns interactions newest first; limit <= 0 returns all.
func (s *NumberService) GetInteractions(ctx context.Context, numberID string, limit int) ([]number.Interaction, error) {
	interactions, err := s.repo.ListInteractions(ctx, numberID, limit)
	if err != nil {
		return nil, xerrors.Op(actionGetInteractions, err)
	}
	return interactions, nil
}

// ========== Number writes ==========

// Create always stores the number paused at 0% progress. Without an explicit client id
// the number is linked to the only client with the same company, if there is one.
func (s *NumberService) Create(ctx context.Context, req *number.CreateNumberRequest) (*number.PhoneNumber, error) {
	req.Number = strings.TrimSpace(req.Number)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Company = strings.TrimSpace(req.Company)

	if err := s.validate.Struct(req); err != nil {
		return nil, xerrors.NewValidation("Preencha todos os campos obrigatórios")
	}

	if req.ClientID == "" {
		clientID, err := s.repo.ResolveClientID(ctx, req.Company)
		if err != nil {
			return nil, xerrors.Op(actionCreate, err)
		}
		req.ClientID = clientID
	}

	n, err := s.repo.Create(ctx, req)
	if err != nil {
		s.logger.Error("failed to create number", zap.String("number", req.Number), zap.Error(err))
		return nil, xerrors.Op(actionCreate, err)
	}

	s.logger.Info("number created",
		zap.String("number_id", n.ID),
		zap.String("company", n.Company),
		zap.String("client_id", n.ClientID),
	)

	return n, nil
}

// Update merges the provided fields. A missing number yields nil, nil.
func (s *NumberService) Update(ctx context.Context, id string, req *number.UpdateNumberRequest) (*number.PhoneNumber, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, xerrors.NewFieldValidation("status", "Status inválido")
	}

	n, err := s.repo.Update(ctx, id, req)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Op(actionUpdate, err)
	}

	fields := []zap.Field{zap.String("number_id", id)}
	if req.Status != nil {
		fields = append(fields, zap.String("status", string(*req.Status)))
	}
	s.logger.Info("number updated", fields...)

	return n, nil
}

func (s *NumberService) UpdateStatus(ctx context.Context, id string, status number.Status) (*number.PhoneNumber, error) {
	return s.Update(ctx, id, &number.UpdateNumberRequest{Status: &status})
}

// Delete removes the number together with its interactions, plans and health.
func (s *NumberService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return xerrors.Op(actionDelete, err)
	}

	s.logger.Info("number deleted", zap.String("number_id", id))
	return nil
}

// ========== Interactions ==========

// RegisterInteraction appends the interaction and then stamps the number's last activity.
// The two writes are not atomic: when the stamp fails the interaction stays stored and
// the stamp error is returned.
func (s *NumberService) RegisterInteraction(ctx context.Context, numberID string, req *number.RegisterInteractionRequest) (*number.Interaction, error) {
	if !req.Type.IsValid() {
		return nil, xerrors.NewFieldValidation("type", "Tipo de interação inválido")
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return nil, xerrors.NewFieldValidation("description", "Descreva a interação")
	}

	interaction, err := s.repo.CreateInteraction(ctx, numberID, req)
	if err != nil {
		s.metrics.InteractionRegistered(string(req.Type), "error")
		return nil, xerrors.Op(actionRegisterInteraction, err)
	}

	if err := s.repo.TouchActivity(ctx, numberID); err != nil {
		s.metrics.InteractionRegistered(string(req.Type), "touch_failed")
		s.logger.Error("interaction stored but last activity not updated",
			zap.String("number_id", numberID),
			zap.String("interaction_id", interaction.ID),
			zap.Error(err),
		)
		return nil, xerrors.Op(actionRegisterInteraction, err)
	}

	s.metrics.InteractionRegistered(string(req.Type), "ok")
	s.logger.Info("interaction registered",
		zap.String("number_id", numberID),
		zap.String("interaction_id", interaction.ID),
		zap.String("type", string(interaction.Type)),
	)

	return interaction, nil
}

// ========== Heating plans ==========

// SetHeatingPlan appends a new plan, which becomes the current one. Omitted fields take
// the form defaults.
func (s *NumberService) SetHeatingPlan(ctx context.Context, numberID string, req *number.SetHeatingPlanRequest) (*number.HeatingPlan, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, xerrors.NewValidation("Os limites de mensagens não podem ser negativos")
	}

	plan := &number.HeatingPlan{
		NumberID:           numberID,
		DailyMessageLimit:  intOr(req.DailyMessageLimit, number.DefaultDailyMessageLimit),
		WeeklyMessageLimit: intOr(req.WeeklyMessageLimit, number.DefaultWeeklyMessageLimit),
		MessageTypes:       req.MessageTypes,
	}
	if plan.MessageTypes == nil {
		plan.MessageTypes = []number.MessageType{number.MessageText}
	}
	plan.InteractionRequirements = withRequirementDefaults(req.InteractionRequirements)

	if err := validatePlan(plan.DailyMessageLimit, plan.WeeklyMessageLimit, plan.MessageTypes); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateHeatingPlan(ctx, numberID, plan)
	if err != nil {
		return nil, xerrors.Op(actionSetPlan, err)
	}

	s.logger.Info("heating plan set",
		zap.String("number_id", numberID),
		zap.String("plan_id", created.ID),
		zap.Int("daily_limit", created.DailyMessageLimit),
		zap.Int("weekly_limit", created.WeeklyMessageLimit),
	)

	return created, nil
}

// UpdateHeatingPlan changes one plan record in place, current or older. The weekly/daily
// rule is checked against that record's stored value for any limit the request leaves out.
func (s *NumberService) UpdateHeatingPlan(ctx context.Context, numberID, planID string, req *number.UpdateHeatingPlanRequest) (*number.HeatingPlan, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, xerrors.NewValidation("Os limites de mensagens não podem ser negativos")
	}
	if req.MessageTypes != nil {
		if err := validateMessageTypes(req.MessageTypes); err != nil {
			return nil, err
		}
	}

	if req.DailyMessageLimit != nil || req.WeeklyMessageLimit != nil {
		daily, weekly := req.DailyMessageLimit, req.WeeklyMessageLimit
		if daily == nil || weekly == nil {
			stored, err := s.repo.FindHeatingPlan(ctx, numberID, planID)
			if err != nil {
				return nil, xerrors.Op(actionUpdatePlan, err)
			}
			if daily == nil {
				daily = &stored.DailyMessageLimit
			}
			if weekly == nil {
				weekly = &stored.WeeklyMessageLimit
			}
		}
		if *weekly < *daily {
			return nil, xerrors.NewFieldValidation("weekly_message_limit", "O limite semanal deve ser maior ou igual ao diário")
		}
	}

	plan, err := s.repo.UpdateHeatingPlan(ctx, numberID, planID, req)
	if err != nil {
		return nil, xerrors.Op(actionUpdatePlan, err)
	}

	s.logger.Info("heating plan updated", zap.String("number_id", numberID), zap.String("plan_id", planID))
	return plan, nil
}

// ========== Health ==========

// SaveNumberHealth upserts the current health record and stamps last_calculated.
func (s *NumberService) SaveNumberHealth(ctx context.Context, numberID string, req *number.SaveHealthRequest) (*number.NumberHealth, error) {
	health, err := s.repo.SaveHealth(ctx, numberID, req)
	if err != nil {
		return nil, xerrors.Op(actionSaveHealth, err)
	}

	s.logger.Info("number health saved",
		zap.String("number_id", numberID),
		zap.Float64("response_rate", health.ResponseRate),
		zap.Float64("block_rate", health.BlockRate),
	)

	return health, nil
}

// ========== Helpers ==========

func validatePlan(daily, weekly int, types []number.MessageType) error {
	if err := validateMessageTypes(types); err != nil {
		return err
	}
	if weekly < daily {
		return xerrors.NewFieldValidation("weekly_message_limit", "O limite semanal deve ser maior ou igual ao diário")
	}
	return nil
}

func validateMessageTypes(types []number.MessageType) error {
	if len(types) == 0 {
		return xerrors.NewFieldValidation("message_types", "Selecione pelo menos um tipo de mensagem")
	}
	for _, t := range types {
		if !t.IsValid() {
			return xerrors.NewFieldValidation("message_types", "Tipo de mensagem inválido")
		}
	}
	return nil
}

func withRequirementDefaults(in *number.InteractionRequirements) number.InteractionRequirements {
	out := number.InteractionRequirements{}
	if in != nil {
		out = *in
	}
	if out.ResponseRate == nil {
		rate := number.DefaultResponseRate
		out.ResponseRate = &rate
	}
	if out.GroupJoins == nil {
		joins := number.DefaultGroupJoins
		out.GroupJoins = &joins
	}
	if out.ManualInteractions == nil {
		manual := number.DefaultManualInteractions
		out.ManualInteractions = &manual
	}
	return out
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
