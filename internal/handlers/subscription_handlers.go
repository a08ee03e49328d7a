package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"oficinagil/internal/common"
	"oficinagil/internal/entitlement"
	"oficinagil/internal/models"
	"oficinagil/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers exposes subscription history to tenants and the
// manual-grant operation to back-office admins.
type SubscriptionHandlers struct {
	subRepo repositories.SubscriptionRepository
}

func NewSubscriptionHandlers(subRepo repositories.SubscriptionRepository) *SubscriptionHandlers {
	return &SubscriptionHandlers{subRepo: subRepo}
}

// ListSubscriptions lists the authenticated tenant's subscription records.
func (h *SubscriptionHandlers) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ValidatePaginationParams(intQueryParam(c, "limit"), intQueryParam(c, "offset"))
	subs, err := h.subRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		log.Printf("failed to list subscriptions for tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to list subscriptions")
	}

	return c.JSON(http.StatusOK, subs)
}

// GrantRequest is the manual subscription grant payload. Zero duration_days
// means an indefinite grant (no boundary date at all).
type GrantRequest struct {
	TenantID     string `json:"tenant_id"`
	PlanType     string `json:"plan_type"`
	DurationDays int    `json:"duration_days"`
}

// Grant writes a manual subscription record for a tenant, the back-office
// path for courtesy or support-granted access.
func (h *SubscriptionHandlers) Grant(c echo.Context) error {
	ctx := c.Request().Context()

	var req GrantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	planType := models.PlanType(req.PlanType)
	if _, ok := entitlement.AvailablePlans()[planType]; !ok {
		return common.SendValidationError(c, "plan_type", "unknown plan type")
	}
	if req.DurationDays < 0 {
		return common.SendValidationError(c, "duration_days", "must not be negative")
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:       uuid.New(),
		TenantID: tenantID,
		PlanType: planType,
		Status:   models.SubscriptionActive,
		StartsAt: now,
		IsManual: true,
	}
	if req.DurationDays > 0 {
		endsAt := now.AddDate(0, 0, req.DurationDays)
		sub.EndsAt = &endsAt
	}

	if err := h.subRepo.Upsert(ctx, sub); err != nil {
		log.Printf("failed to grant subscription to tenant %s: %v", tenantID, err)
		return common.SendServerError(c, "Failed to grant subscription")
	}

	return c.JSON(http.StatusCreated, sub)
}

// intQueryParam parses an integer query parameter, defaulting to zero so the
// pagination clamp picks sane values.
func intQueryParam(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}
