// internal/domain/client/entity.go
package client

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// DefaultStatus is used when a stored row carries no status.
const DefaultStatus = StatusActive

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

type Client struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Phone    string `json:"phone" db:"phone"`
	Company  string `json:"company" db:"company"`
	Document string `json:"document" db:"document"`
	Status   Status `json:"status" db:"status"`
	Plan     string `json:"plan" db:"plan"`

	// Counters are maintained outside this service; create forces both to 0.
	TotalNumbers  int `json:"total_numbers" db:"total_numbers"`
	ActiveNumbers int `json:"active_numbers" db:"active_numbers"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
}

// NumberSummary is the projection of a phone number shown on a client detail.
type NumberSummary struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// Billing is the single "current" billing record of a client.
type Billing struct {
	Plan          string     `json:"plan" db:"plan"`
	MonthlyValue  float64    `json:"monthly_value" db:"monthly_value"`
	NextBilling   *time.Time `json:"next_billing,omitempty" db:"next_billing"`
	PaymentMethod string     `json:"payment_method,omitempty" db:"payment_method"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type ClientDetails struct {
	Client
	Numbers     []NumberSummary `json:"numbers"`
	BillingInfo *Billing        `json:"billing_info,omitempty"`
}
