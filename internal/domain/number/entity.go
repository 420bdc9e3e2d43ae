// internal/domain/number/entity.go
package number

import "time"

type Status string

const (
	StatusHeating Status = "heating"
	StatusPaused  Status = "paused"
	StatusReady   Status = "ready"
	StatusBanned  Status = "banned"
)

// DefaultStatus is used when a stored row carries no status.
const DefaultStatus = StatusPaused

func (s Status) IsValid() bool {
	switch s {
	case StatusHeating, StatusPaused, StatusReady, StatusBanned:
		return true
	}
	return false
}

type InteractionType string

const (
	InteractionMessageSent       InteractionType = "message_sent"
	InteractionMessageReceived   InteractionType = "message_received"
	InteractionGroupJoined       InteractionType = "group_joined"
	InteractionBlockAlert        InteractionType = "block_alert"
	InteractionManualInteraction InteractionType = "manual_interaction"
	InteractionProfileUpdate     InteractionType = "profile_update"
)

func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionMessageSent, InteractionMessageReceived, InteractionGroupJoined,
		InteractionBlockAlert, InteractionManualInteraction, InteractionProfileUpdate:
		return true
	}
	return false
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
)

func (t MessageType) IsValid() bool {
	switch t {
	case MessageText, MessageAudio, MessageImage, MessageVideo:
		return true
	}
	return false
}

type PhoneNumber struct {
	ID           string `json:"id" db:"id"`
	Number       string `json:"number" db:"number"`
	DisplayName  string `json:"display_name" db:"display_name"`
	ProfilePhoto string `json:"profile_photo" db:"profile_photo"`
	Company      string `json:"company" db:"company"`
	ClientID     string `json:"client_id,omitempty" db:"client_id"`
	Status       Status `json:"status" db:"status"`
	Operator     string `json:"operator" db:"operator"`

	HeatingStartDate time.Time `json:"heating_start_date" db:"heating_start_date"`
	LastActivity     time.Time `json:"last_activity" db:"last_activity"`
	ProgressPercent  int       `json:"progress_percent" db:"progress_percent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type InteractionMetadata struct {
	MessageCount  *int   `json:"message_count,omitempty"`
	ResponseCount *int   `json:"response_count,omitempty"`
	GroupName     string `json:"group_name,omitempty"`
	BlockReason   string `json:"block_reason,omitempty"`
}

// Interaction is append-only: nothing updates or deletes it once written.
type Interaction struct {
	ID          string               `json:"id" db:"id"`
	NumberID    string               `json:"number_id" db:"number_id"`
	Type        InteractionType      `json:"type" db:"type"`
	Description string               `json:"description" db:"description"`
	Metadata    *InteractionMetadata `json:"metadata,omitempty" db:"metadata"`
	Timestamp   time.Time            `json:"timestamp" db:"timestamp"`
	CreatedBy   string               `json:"created_by,omitempty" db:"created_by"`
}

type InteractionRequirements struct {
	ResponseRate       *float64 `json:"response_rate,omitempty"`
	GroupJoins         *int     `json:"group_joins,omitempty"`
	ManualInteractions *int     `json:"manual_interactions,omitempty"`
}

// HeatingPlan records form an append-only log per number; the newest by CreatedAt is current.
type HeatingPlan struct {
	ID                      string                  `json:"id" db:"id"`
	NumberID                string                  `json:"number_id" db:"number_id"`
	DailyMessageLimit       int                     `json:"daily_message_limit" db:"daily_message_limit"`
	WeeklyMessageLimit      int                     `json:"weekly_message_limit" db:"weekly_message_limit"`
	MessageTypes            []MessageType           `json:"message_types" db:"message_types"`
	InteractionRequirements InteractionRequirements `json:"interaction_requirements" db:"interaction_requirements"`
	CreatedAt               time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at" db:"updated_at"`
}

// FormatDiversity holds per-type percentages. They are not normalized to 100.
type FormatDiversity struct {
	Text  float64 `json:"text"`
	Audio float64 `json:"audio"`
	Image float64 `json:"image"`
	Video float64 `json:"video"`
}

type NumberHealth struct {
	NumberID              string          `json:"number_id" db:"number_id"`
	ResponseRate          float64         `json:"response_rate" db:"response_rate"`
	BlockRate             float64         `json:"block_rate" db:"block_rate"`
	AverageMessagesPerDay float64         `json:"average_messages_per_day" db:"average_messages_per_day"`
	FormatDiversity       FormatDiversity `json:"format_diversity" db:"format_diversity"`
	LastCalculated        time.Time       `json:"last_calculated" db:"last_calculated"`
}

type NumberDetails struct {
	PhoneNumber
	HeatingPlan  *HeatingPlan  `json:"heating_plan,omitempty"`
	Health       *NumberHealth `json:"health,omitempty"`
	Interactions []Interaction `json:"interactions"`
}
