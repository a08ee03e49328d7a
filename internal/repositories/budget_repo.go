package repositories

import (
	"context"

	"oficinagil/internal/models"

	"github.com/google/uuid"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Budget, error)
	Update(ctx context.Context, budget *models.Budget) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Budget, error)
}

type budgetRepo struct {
	db Database
}

func NewBudgetRepo(db Database) BudgetRepository {
	return &budgetRepo{db: db}
}

func (r *budgetRepo) Create(ctx context.Context, budget *models.Budget) error {
	query := `
		INSERT INTO budgets (id, tenant_id, client_id, description, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, budget.ID, budget.TenantID, budget.ClientID, budget.Description, budget.TotalAmount, budget.Status)
	return err
}

func (r *budgetRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Budget, error) {
	budget := &models.Budget{}
	query := `
		SELECT id, tenant_id, client_id, description, total_amount, status, created_at, updated_at
		FROM budgets
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&budget.ID, &budget.TenantID, &budget.ClientID, &budget.Description, &budget.TotalAmount, &budget.Status, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (r *budgetRepo) Update(ctx context.Context, budget *models.Budget) error {
	query := `
		UPDATE budgets
		SET client_id = $1, description = $2, total_amount = $3, status = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, budget.ClientID, budget.Description, budget.TotalAmount, budget.Status, budget.TenantID, budget.ID)
	return err
}

func (r *budgetRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM budgets WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *budgetRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Budget, error) {
	query := `
		SELECT id, tenant_id, client_id, description, total_amount, status, created_at, updated_at
		FROM budgets
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget := &models.Budget{}
		if err := rows.Scan(&budget.ID, &budget.TenantID, &budget.ClientID, &budget.Description, &budget.TotalAmount, &budget.Status, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}
