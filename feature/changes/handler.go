package changes

import (
	"errors"

	"cloud-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for change reports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the change report routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/changes")
	group.Get("/", h.HandleListTypes)
	group.Get("/:type", h.HandleGetReport)
	group.Get("/:type/:key/history", h.HandleGetHistory)
}

// History page size bounds.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HandleListTypes returns the resource types that can be reported on.
func (h *Handler) HandleListTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"types": h.service.Types()})
}

// HandleGetReport classifies one resource type and returns the report.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	resourceType := c.Params("type")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("resource", resourceType))

	report, err := h.service.Report(c.UserContext(), resourceType)
	if errors.Is(err, ErrUnknownType) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Change report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Change report served", zap.Int("entries", len(report.Entries)))
	return c.JSON(report)
}

// HandleGetHistory returns the journaled sync attempts for one resource,
// newest first.
func (h *Handler) HandleGetHistory(c *fiber.Ctx) error {
	resourceType, key := c.Params("type"), c.Params("key")
	l := logger.WithRayID(h.service.logger, c).With(
		zap.String("resource", resourceType),
		zap.String("key", key),
	)

	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	entries, err := h.service.History(c.UserContext(), resourceType, key, limit)
	if errors.Is(err, ErrUnknownType) || errors.Is(err, ErrNoHistory) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("History query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"entries": entries})
}
