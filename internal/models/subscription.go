package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanType identifies a plan offering. Values mirror the payment provider's
// price catalog plus the two internal trial plans.
type PlanType string

const (
	PlanEssencialMensal    PlanType = "essencial_mensal"
	PlanEssencialAnual     PlanType = "essencial_anual"
	PlanPremiumMensal      PlanType = "premium_mensal"
	PlanPremiumAnual       PlanType = "premium_anual"
	PlanFreeTrialEssencial PlanType = "free_trial_essencial"
	PlanFreeTrialPremium   PlanType = "free_trial_premium"
)

// SubscriptionStatus is the lifecycle status of a subscription record.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrialing  SubscriptionStatus = "trialing"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription is a per-tenant subscription record. Checkout and the
// payment-provider webhook write these rows; the entitlement resolver only
// reads them. Among active/trialing rows the most recently created one is
// authoritative for a tenant.
type Subscription struct {
	ID                     uuid.UUID          `json:"id" db:"id"`
	TenantID               uuid.UUID          `json:"tenant_id" db:"tenant_id"`
	PlanType               PlanType           `json:"plan_type" db:"plan_type"`
	Status                 SubscriptionStatus `json:"status" db:"status"`
	StartsAt               time.Time          `json:"starts_at" db:"starts_at"`
	EndsAt                 *time.Time         `json:"ends_at" db:"ends_at"`
	TrialEndsAt            *time.Time         `json:"trial_ends_at" db:"trial_ends_at"`
	ProviderCustomerID     *string            `json:"provider_customer_id" db:"provider_customer_id"`
	ProviderSubscriptionID *string            `json:"provider_subscription_id" db:"provider_subscription_id"`
	IsManual               bool               `json:"is_manual" db:"is_manual"`
	CreatedAt              time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at" db:"updated_at"`
}
