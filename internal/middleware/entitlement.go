package middleware

import (
	"net/http"

	"oficinagil/internal/common"
	"oficinagil/internal/entitlement"

	"github.com/labstack/echo/v4"
)

// EntitlementMiddleware gates routes on the tenant's resolved plan.
type EntitlementMiddleware struct {
	resolver *entitlement.Resolver
	gate     *entitlement.Gate
}

func NewEntitlementMiddleware(resolver *entitlement.Resolver, gate *entitlement.Gate) *EntitlementMiddleware {
	return &EntitlementMiddleware{
		resolver: resolver,
		gate:     gate,
	}
}

// RequireFeature resolves the tenant's plan and denies the request when the
// feature is not part of it. Admins pass unconditionally.
func (m *EntitlementMiddleware) RequireFeature(feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
			}
			isAdmin := common.GetIsAdminFromContext(ctx)

			status := m.resolver.Resolve(ctx, tenantID)
			if !m.gate.HasPermission(status, isAdmin, feature) {
				return echo.NewHTTPError(http.StatusForbidden, "Your plan does not include this feature")
			}

			return next(c)
		}
	}
}
