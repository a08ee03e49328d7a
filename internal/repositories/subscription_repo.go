package repositories

import (
	"context"
	"errors"

	"oficinagil/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	// FindLatestByTenant returns the most recently created subscription for
	// the tenant among the given statuses, or nil when none exists.
	FindLatestByTenant(ctx context.Context, tenantID uuid.UUID, statuses []models.SubscriptionStatus) (*models.Subscription, error)
	Upsert(ctx context.Context, subscription *models.Subscription) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, tenant_id, plan_type, status, starts_at, ends_at, trial_ends_at, provider_customer_id, provider_subscription_id, is_manual, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.PlanType, &sub.Status, &sub.StartsAt, &sub.EndsAt, &sub.TrialEndsAt, &sub.ProviderCustomerID, &sub.ProviderSubscriptionID, &sub.IsManual, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) FindLatestByTenant(ctx context.Context, tenantID uuid.UUID, statuses []models.SubscriptionStatus) (*models.Subscription, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1
	`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, tenantID, statusStrings))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, plan_type, status, starts_at, ends_at, trial_ends_at, provider_customer_id, provider_subscription_id, is_manual, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET plan_type = EXCLUDED.plan_type, status = EXCLUDED.status, starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at, trial_ends_at = EXCLUDED.trial_ends_at, provider_customer_id = EXCLUDED.provider_customer_id, provider_subscription_id = EXCLUDED.provider_subscription_id, is_manual = EXCLUDED.is_manual, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, subscription.ID, subscription.TenantID, subscription.PlanType, subscription.Status, subscription.StartsAt, subscription.EndsAt, subscription.TrialEndsAt, subscription.ProviderCustomerID, subscription.ProviderSubscriptionID, subscription.IsManual)
	return err
}

func (r *subscriptionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscriptions []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, sub)
	}
	return subscriptions, rows.Err()
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE status = $1`
	err := r.db.QueryRow(ctx, query, string(status)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ExpireOverdue flips active/trialing rows whose boundaries have all passed
// to expired. Rows with no boundary at all are manual indefinite grants and
// are left alone.
func (r *subscriptionRepo) ExpireOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status IN ('active', 'trialing')
		  AND NOT (trial_ends_at IS NULL AND ends_at IS NULL)
		  AND (trial_ends_at IS NULL OR trial_ends_at < NOW())
		  AND (ends_at IS NULL OR ends_at < NOW())
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
