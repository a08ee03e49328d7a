package handlers

import (
	"net/http"

	"oficinagil/internal/adminstats"

	"github.com/labstack/echo/v4"
)

// AdminHandlers serves the back-office dashboard endpoints.
type AdminHandlers struct {
	reporter *adminstats.Reporter
}

func NewAdminHandlers(reporter *adminstats.Reporter) *AdminHandlers {
	return &AdminHandlers{reporter: reporter}
}

// GetStats returns the aggregate dashboard counts, served from the
// five-minute cache when fresh.
func (h *AdminHandlers) GetStats(c echo.Context) error {
	stats := h.reporter.GetStats(c.Request().Context())
	return c.JSON(http.StatusOK, stats)
}

// RefreshStats forces a cache refresh. A refresh already in flight makes
// this a no-op.
func (h *AdminHandlers) RefreshStats(c echo.Context) error {
	h.reporter.Refresh(c.Request().Context())
	return c.JSON(http.StatusAccepted, map[string]string{"status": "refreshing"})
}
