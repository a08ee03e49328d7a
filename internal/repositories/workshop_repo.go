package repositories

import (
	"context"
	"errors"

	"oficinagil/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WorkshopRepository interface {
	Create(ctx context.Context, workshop *models.Workshop) error
	// FindByTenant returns the workshop row for the tenant, or nil when it
	// does not exist.
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Workshop, error)
	Update(ctx context.Context, workshop *models.Workshop) error
	CountAll(ctx context.Context) (int, error)
}

type workshopRepo struct {
	db Database
}

func NewWorkshopRepo(db Database) WorkshopRepository {
	return &workshopRepo{db: db}
}

func (r *workshopRepo) Create(ctx context.Context, workshop *models.Workshop) error {
	query := `
		INSERT INTO workshops (id, name, phone, status, plan_name, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, workshop.ID, workshop.Name, workshop.Phone, workshop.Status, workshop.PlanName, workshop.TrialEndsAt)
	return err
}

func (r *workshopRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Workshop, error) {
	workshop := &models.Workshop{}
	query := `
		SELECT id, name, phone, status, plan_name, trial_ends_at, created_at, updated_at
		FROM workshops
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&workshop.ID, &workshop.Name, &workshop.Phone, &workshop.Status, &workshop.PlanName, &workshop.TrialEndsAt, &workshop.CreatedAt, &workshop.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return workshop, nil
}

func (r *workshopRepo) Update(ctx context.Context, workshop *models.Workshop) error {
	query := `
		UPDATE workshops
		SET name = $1, phone = $2, status = $3, plan_name = $4, trial_ends_at = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, workshop.Name, workshop.Phone, workshop.Status, workshop.PlanName, workshop.TrialEndsAt, workshop.ID)
	return err
}

func (r *workshopRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workshops`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
