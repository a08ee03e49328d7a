package handlers

import (
	"net/http"

	"oficinagil/internal/common"
	"oficinagil/internal/entitlement"

	"github.com/labstack/echo/v4"
)

// EntitlementHandlers exposes the tenant's resolved plan and feature checks.
type EntitlementHandlers struct {
	resolver *entitlement.Resolver
	gate     *entitlement.Gate
}

func NewEntitlementHandlers(resolver *entitlement.Resolver, gate *entitlement.Gate) *EntitlementHandlers {
	return &EntitlementHandlers{
		resolver: resolver,
		gate:     gate,
	}
}

// GetPlan returns the resolved plan status for the authenticated tenant.
func (h *EntitlementHandlers) GetPlan(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	status := h.resolver.Resolve(ctx, tenantID)
	return c.JSON(http.StatusOK, status)
}

// FeatureCheckResponse reports a single feature decision.
type FeatureCheckResponse struct {
	Feature           string `json:"feature"`
	Allowed           bool   `json:"allowed"`
	PremiumAccessible bool   `json:"premium_accessible"`
}

// CheckFeature answers whether the named feature is accessible to the caller.
// Unknown feature names resolve to denied, never to an error.
func (h *EntitlementHandlers) CheckFeature(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	isAdmin := common.GetIsAdminFromContext(ctx)

	feature := c.Param("name")
	status := h.resolver.Resolve(ctx, tenantID)

	return c.JSON(http.StatusOK, FeatureCheckResponse{
		Feature:           feature,
		Allowed:           h.gate.HasPermission(status, isAdmin, feature),
		PremiumAccessible: h.gate.IsPremiumAccessible(status, isAdmin),
	})
}

// ListPlans returns the plan catalog.
func (h *EntitlementHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, entitlement.AvailablePlans())
}
