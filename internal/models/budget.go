package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a service quote (orçamento) issued to a client.
type Budget struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ClientID    uuid.UUID `json:"client_id" db:"client_id"`
	Description string    `json:"description" db:"description"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
