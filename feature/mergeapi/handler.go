package mergeapi

import (
	"errors"

	"bulk-merge/core/database"
	"bulk-merge/core/logger"
	"bulk-merge/core/merge"
	"bulk-merge/core/schema"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for merge operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the merge routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merge")
	group.Post("/:table", h.HandleMerge)
}

// HandleMerge runs one merge invocation against the named table.
func (h *Handler) HandleMerge(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	table := c.Params("table")

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	res, err := h.service.Run(c.Context(), table, req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrTableNotFound):
			l.Warn("Merge target missing", zap.String("table", table))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrUnknownMode),
			errors.Is(err, ErrBadBatchSource),
			errors.Is(err, merge.ErrInvalidColumns),
			errors.Is(err, merge.ErrInvalidTxn),
			errors.Is(err, schema.ErrInvalidSchema):
			l.Warn("Merge rejected", zap.String("table", table), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			l.Error("Merge failed", zap.String("table", table), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	l.Info("Merge complete",
		zap.String("table", table),
		zap.String("mode", req.Mode),
		zap.Int64("replaced", res.Replaced),
		zap.Int64("ignored", res.Ignored),
		zap.Int64("inserted", res.Inserted),
	)
	return c.JSON(res)
}
