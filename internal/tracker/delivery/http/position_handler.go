package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-ratchet-tracker/internal/tracker/dto"
	"golang-ratchet-tracker/internal/tracker/service"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PositionHandler handles HTTP requests for tracked positions.
type PositionHandler struct {
	positionService service.PositionService
	logger          *logger.Logger
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService service.PositionService, logger *logger.Logger) *PositionHandler {
	return &PositionHandler{positionService: positionService, logger: logger}
}

// RegisterRoutes registers the position routes to the Echo group.
func (h *PositionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListPositions)
	g.POST("", h.CreatePosition)
	g.PUT("/:id/price", h.SetPrice)
	g.DELETE("/:id", h.DeletePosition)
}

// RegisterVolatilityRoutes registers the volatility helper route.
func (h *PositionHandler) RegisterVolatilityRoutes(g *echo.Group) {
	g.POST("/suggest", h.SuggestVolatility)
}

func (h *PositionHandler) ListPositions(c echo.Context) error {
	positions, err := h.positionService.List(c.Request().Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error("Failed to list positions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, positions)
}

func (h *PositionHandler) CreatePosition(c echo.Context) error {
	var req dto.CreatePositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	position, err := h.positionService.Create(c.Request().Context(), userIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSymbolRequired),
			errors.Is(err, service.ErrInvalidPrice),
			errors.Is(err, service.ErrNotDoubled),
			errors.Is(err, service.ErrDeclineTooLarge):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrSymbolExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to create position", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusCreated, position)
}

func (h *PositionHandler) SetPrice(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid position ID"})
	}

	var req dto.SetPriceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	position, err := h.positionService.SetPrice(c.Request().Context(), userIDFromContext(c), uint(id), req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPrice):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPositionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to set price", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) DeletePosition(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid position ID"})
	}

	if err := h.positionService.Delete(c.Request().Context(), userIDFromContext(c), uint(id)); err != nil {
		if errors.Is(err, service.ErrPositionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to delete position", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PositionHandler) SuggestVolatility(c echo.Context) error {
	var req dto.SuggestVolatilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	return c.JSON(http.StatusOK, h.positionService.SuggestVolatility(req.Closes))
}
