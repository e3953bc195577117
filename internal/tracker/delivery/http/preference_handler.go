package http

import (
	"errors"
	"net/http"

	"golang-ratchet-tracker/internal/tracker/dto"
	"golang-ratchet-tracker/internal/tracker/service"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PreferenceHandler handles HTTP requests for notification preferences.
type PreferenceHandler struct {
	userService service.UserService
	logger      *logger.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(userService service.UserService, logger *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{userService: userService, logger: logger}
}

// RegisterRoutes registers the preference routes to the Echo group.
func (h *PreferenceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPreferences)
	g.PUT("", h.UpdatePreferences)
}

func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	prefs, err := h.userService.GetPreferences(c.Request().Context(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to get preferences", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	var req dto.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	prefs, err := h.userService.UpdatePreferences(c.Request().Context(), userIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFrequency):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to update preferences", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, prefs)
}
