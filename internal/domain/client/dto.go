// internal/domain/client/dto.go
package client

import "time"

type CreateClientRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone"`
	Company   string `json:"company" validate:"required"`
	Document  string `json:"document"`
	Plan      string `json:"plan"`
	CreatedBy string `json:"-"`
}

// UpdateClientRequest carries only the fields to change; nil means "leave as stored".
type UpdateClientRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	Document *string `json:"document"`
	Status   *Status `json:"status"`
	Plan     *string `json:"plan"`
}

// IsEmpty reports whether no field was provided.
func (r *UpdateClientRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Company == nil &&
		r.Document == nil && r.Status == nil && r.Plan == nil
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

type SetBillingRequest struct {
	Plan          string     `json:"plan"`
	MonthlyValue  float64    `json:"monthly_value" validate:"gte=0"`
	NextBilling   *time.Time `json:"next_billing"`
	PaymentMethod string     `json:"payment_method"`
}

type ClientListFilters struct {
	Status  string `form:"status"`
	Company string `form:"company"` // prefix, case-sensitive
}
