package handlers

import (
	"log"
	"net/http"

	"oficinagil/internal/common"
	"oficinagil/internal/models"
	"oficinagil/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var validBudgetStatuses = map[string]bool{
	"draft":    true,
	"sent":     true,
	"approved": true,
	"rejected": true,
}

// BudgetHandlers handles service quote (orçamento) CRUD.
type BudgetHandlers struct {
	budgetRepo repositories.BudgetRepository
	clientRepo repositories.ClientRepository
}

func NewBudgetHandlers(budgetRepo repositories.BudgetRepository, clientRepo repositories.ClientRepository) *BudgetHandlers {
	return &BudgetHandlers{
		budgetRepo: budgetRepo,
		clientRepo: clientRepo,
	}
}

type budgetRequest struct {
	ClientID    string  `json:"client_id"`
	Description string  `json:"description"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

func (h *BudgetHandlers) ListBudgets(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ValidatePaginationParams(intQueryParam(c, "limit"), intQueryParam(c, "offset"))
	budgets, err := h.budgetRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		log.Printf("failed to list budgets for tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to list budgets")
	}
	return c.JSON(http.StatusOK, budgets)
}

func (h *BudgetHandlers) CreateBudget(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req budgetRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendValidationError(c, "client_id", err.Error())
	}
	if err := common.ValidateRequiredString(req.Description, "description"); err != nil {
		return common.SendValidationError(c, "description", err.Error())
	}
	if req.TotalAmount < 0 {
		return common.SendValidationError(c, "total_amount", "must not be negative")
	}
	if req.Status == "" {
		req.Status = "draft"
	}
	if !validBudgetStatuses[req.Status] {
		return common.SendValidationError(c, "status", "must be one of: draft, sent, approved, rejected")
	}

	// The client must belong to the same tenant.
	if _, err := h.clientRepo.GetByID(ctx, tenantID, clientID); err != nil {
		return common.SendNotFoundError(c, "Client")
	}

	budget := &models.Budget{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ClientID:    clientID,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Status:      req.Status,
	}
	if err := h.budgetRepo.Create(ctx, budget); err != nil {
		log.Printf("failed to create budget for tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to create budget")
	}
	return c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandlers) GetBudget(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	budget, err := h.budgetRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Budget")
	}
	return c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandlers) UpdateBudget(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	budget, err := h.budgetRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Budget")
	}

	var req budgetRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Status != "" && !validBudgetStatuses[req.Status] {
		return common.SendValidationError(c, "status", "must be one of: draft, sent, approved, rejected")
	}
	if req.TotalAmount < 0 {
		return common.SendValidationError(c, "total_amount", "must not be negative")
	}

	if req.Description != "" {
		budget.Description = req.Description
	}
	if req.TotalAmount > 0 {
		budget.TotalAmount = req.TotalAmount
	}
	if req.Status != "" {
		budget.Status = req.Status
	}
	if err := h.budgetRepo.Update(ctx, budget); err != nil {
		log.Printf("failed to update budget %s: %v", id, err)
		return common.SendServerError(c, "Failed to update budget")
	}
	return c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandlers) DeleteBudget(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.budgetRepo.Delete(ctx, tenantID, id); err != nil {
		log.Printf("failed to delete budget %s: %v", id, err)
		return common.SendServerError(c, "Failed to delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}
