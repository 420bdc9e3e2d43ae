// internal/domain/number/dto.go
package number

type CreateNumberRequest struct {
	Number       string `json:"number" validate:"required"`
	DisplayName  string `json:"display_name" validate:"required"`
	Company      string `json:"company" validate:"required"`
	ClientID     string `json:"client_id"`
	Operator     string `json:"operator"`
	ProfilePhoto string `json:"profile_photo"`
}

// UpdateNumberRequest carries only the fields to change; nil means "leave as stored".
type UpdateNumberRequest struct {
	DisplayName  *string `json:"display_name"`
	ProfilePhoto *string `json:"profile_photo"`
	Status       *Status `json:"status"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

type RegisterInteractionRequest struct {
	Type        InteractionType      `json:"type"`
	Description string               `json:"description"`
	Metadata    *InteractionMetadata `json:"metadata"`
	CreatedBy   string               `json:"-"`
}

type SetHeatingPlanRequest struct {
	DailyMessageLimit       *int                     `json:"daily_message_limit" validate:"omitempty,gte=0"`
	WeeklyMessageLimit      *int                     `json:"weekly_message_limit" validate:"omitempty,gte=0"`
	MessageTypes            []MessageType            `json:"message_types"`
	InteractionRequirements *InteractionRequirements `json:"interaction_requirements"`
}

type UpdateHeatingPlanRequest struct {
	DailyMessageLimit       *int                     `json:"daily_message_limit" validate:"omitempty,gte=0"`
	WeeklyMessageLimit      *int                     `json:"weekly_message_limit" validate:"omitempty,gte=0"`
	MessageTypes            []MessageType            `json:"message_types"`
	InteractionRequirements *InteractionRequirements `json:"interaction_requirements"`
}

type SaveHealthRequest struct {
	ResponseRate          *float64         `json:"response_rate"`
	BlockRate             *float64         `json:"block_rate"`
	AverageMessagesPerDay *float64         `json:"average_messages_per_day"`
	FormatDiversity       *FormatDiversity `json:"format_diversity"`
}

type NumberListFilters struct {
	Status  string `form:"status"`
	Company string `form:"company"` // exact match
}

type InteractionListFilters struct {
	Limit int `form:"limit"`
}

// Heating plan form defaults applied when a field is omitted.
const (
	DefaultDailyMessageLimit  = 50
	DefaultWeeklyMessageLimit = 300
	DefaultResponseRate       = 60.0
	DefaultGroupJoins         = 2
	DefaultManualInteractions = 5
)
