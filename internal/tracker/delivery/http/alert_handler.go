package http

import (
	"net/http"

	"golang-ratchet-tracker/internal/tracker/service"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertHandler handles HTTP requests for the breach history.
type AlertHandler struct {
	alertService service.AlertService
	logger       *logger.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService service.AlertService, logger *logger.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// RegisterRoutes registers the alert routes to the Echo group.
func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListAlerts)
}

func (h *AlertHandler) ListAlerts(c echo.Context) error {
	alerts, err := h.alertService.List(c.Request().Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error("Failed to list alerts", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, alerts)
}
