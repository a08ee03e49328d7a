package models

import (
	"time"

	"github.com/google/uuid"
)

// Workshop is the tenant record. Tenants created before the subscriptions
// table existed carry their plan name and trial boundary directly on this
// row; the entitlement resolver falls back to these fields when no
// subscription record exists.
type Workshop struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Phone       *string    `json:"phone" db:"phone"`
	Status      string     `json:"status" db:"status"`
	PlanName    *string    `json:"plan_name" db:"plan_name"`
	TrialEndsAt *time.Time `json:"trial_ends_at" db:"trial_ends_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
