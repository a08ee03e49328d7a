package entitlement

import (
	"context"
	"log"
	"math"
	"time"

	"oficinagil/internal/models"

	"github.com/google/uuid"
)

// Source names the backing store that produced a resolved plan status.
type Source string

const (
	SourceSubscription   Source = "subscription"
	SourceLegacyWorkshop Source = "legacy_workshop"
	SourceNone           Source = "none"
)

// NoExpirationDays is the days-remaining sentinel for subscriptions with no
// boundary date (manual indefinite grants).
const NoExpirationDays = 999

const defaultLookupTimeout = 5 * time.Second

// ResolvedPlanStatus is the computed entitlement state for a tenant. It is
// recomputed on every check and never persisted.
type ResolvedPlanStatus struct {
	PlanName      string          `json:"plan_name"`
	PlanType      models.PlanType `json:"plan_type,omitempty"`
	IsActive      bool            `json:"is_active"`
	IsExpired     bool            `json:"is_expired"`
	InTrial       bool            `json:"in_trial"`
	DaysRemaining int             `json:"days_remaining"`
	Source        Source          `json:"source"`
}

// SubscriptionStore is the subscription table read surface the resolver needs.
type SubscriptionStore interface {
	FindLatestByTenant(ctx context.Context, tenantID uuid.UUID, statuses []models.SubscriptionStatus) (*models.Subscription, error)
}

// WorkshopStore is the legacy workshop table read surface.
type WorkshopStore interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Workshop, error)
}

// planSource is one resolution strategy. A nil status with nil error means
// the source has nothing for the tenant and the next one is tried.
type planSource interface {
	name() string
	resolve(ctx context.Context, tenantID uuid.UUID) (*ResolvedPlanStatus, error)
}

// Resolver determines a tenant's plan status by consulting sources in
// priority order: subscription table first, legacy workshop row second,
// Free/none default last.
type Resolver struct {
	sources       []planSource
	lookupTimeout time.Duration
}

func NewResolver(subscriptions SubscriptionStore, workshops WorkshopStore) *Resolver {
	return &Resolver{
		sources: []planSource{
			&subscriptionSource{store: subscriptions},
			&legacyWorkshopSource{store: workshops},
		},
		lookupTimeout: defaultLookupTimeout,
	}
}

// Resolve never fails: a store read error is logged, that source is skipped,
// and resolution continues down the chain. Entitlement checks favor a fast
// conservative default over retrying.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID) *ResolvedPlanStatus {
	for _, src := range r.sources {
		lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
		status, err := src.resolve(lookupCtx, tenantID)
		cancel()
		if err != nil {
			log.Printf("plan resolution via %s failed for tenant %s: %v", src.name(), tenantID, err)
			continue
		}
		if status != nil {
			return status
		}
	}
	return freePlanStatus()
}

func freePlanStatus() *ResolvedPlanStatus {
	return &ResolvedPlanStatus{
		PlanName:  "Free",
		IsActive:  false,
		IsExpired: true,
		Source:    SourceNone,
	}
}

type subscriptionSource struct {
	store SubscriptionStore
}

func (s *subscriptionSource) name() string { return string(SourceSubscription) }

func (s *subscriptionSource) resolve(ctx context.Context, tenantID uuid.UUID) (*ResolvedPlanStatus, error) {
	sub, err := s.store.FindLatestByTenant(ctx, tenantID, []models.SubscriptionStatus{
		models.SubscriptionActive,
		models.SubscriptionTrialing,
	})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return statusFromSubscription(sub, time.Now()), nil
}

// statusFromSubscription applies the boundary rules: the record is active if
// EITHER the trial boundary or the paid boundary has not passed. A record in
// active status with no boundary at all is an indefinite grant. A trialing
// record with no boundary is treated as expired (fail closed).
func statusFromSubscription(sub *models.Subscription, now time.Time) *ResolvedPlanStatus {
	status := &ResolvedPlanStatus{
		PlanName: PlanDisplayName(sub.PlanType),
		PlanType: sub.PlanType,
		Source:   SourceSubscription,
	}

	var boundary *time.Time
	if sub.TrialEndsAt != nil && !now.After(*sub.TrialEndsAt) {
		status.IsActive = true
		status.InTrial = true
		boundary = sub.TrialEndsAt
	} else if sub.EndsAt != nil && !now.After(*sub.EndsAt) {
		status.IsActive = true
		boundary = sub.EndsAt
	}

	if !status.IsActive {
		if sub.TrialEndsAt == nil && sub.EndsAt == nil && sub.Status == models.SubscriptionActive {
			status.IsActive = true
			status.DaysRemaining = NoExpirationDays
			return status
		}
		status.IsExpired = true
		return status
	}

	status.DaysRemaining = daysUntil(now, *boundary)
	return status
}

type legacyWorkshopSource struct {
	store WorkshopStore
}

func (s *legacyWorkshopSource) name() string { return string(SourceLegacyWorkshop) }

func (s *legacyWorkshopSource) resolve(ctx context.Context, tenantID uuid.UUID) (*ResolvedPlanStatus, error) {
	workshop, err := s.store.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if workshop == nil || workshop.TrialEndsAt == nil {
		return nil, nil
	}

	now := time.Now()
	planName := "Free"
	if workshop.PlanName != nil && *workshop.PlanName != "" {
		planName = *workshop.PlanName
	}

	status := &ResolvedPlanStatus{
		PlanName: planName,
		Source:   SourceLegacyWorkshop,
	}
	if now.After(*workshop.TrialEndsAt) {
		status.IsExpired = true
		return status, nil
	}
	status.IsActive = true
	status.InTrial = true
	status.DaysRemaining = daysUntil(now, *workshop.TrialEndsAt)
	return status, nil
}

// daysUntil is a calendar-day ceiling: a boundary 30 hours away is 2 days
// remaining, not 1. Clamped at zero.
func daysUntil(now, boundary time.Time) int {
	days := int(math.Ceil(boundary.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
