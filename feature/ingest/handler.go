package ingest

import (
	"errors"
	"strconv"

	"results-ingest/core/database"
	"results-ingest/core/logger"
	"results-ingest/core/middleware/auth"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/upsert"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the ingestion HTTP API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ingestion routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ingest/events/:eventId")
	group.Post("/feed", h.HandleIngestFeed)
	group.Get("/competitors/:competitorId/protocol", h.HandleGetProtocol)
}

// HandleIngestFeed applies an uploaded feed to the event.
// @Summary Ingest Feed
// @Description Reconcile a parsed result, start or class list into the event. The body is the document tree as JSON or YAML.
// @Tags ingest
// @Accept json
// @Accept x-yaml
// @Produce json
// @Param eventId path int true "Event ID"
// @Success 200 {object} ingest.Report "Ingestion report"
// @Failure 400 {object} map[string]string "Invalid feed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ingest/events/{eventId}/feed [post]
func (h *Handler) HandleIngestFeed(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	eventID, err := idParam(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	feed, err := DecodeFeed(c.Body(), FormatFromContentType(c.Get(fiber.HeaderContentType)))
	if err != nil {
		l.Warn("Rejected feed", zap.Uint("event_id", eventID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.service.Ingest(c.UserContext(), eventID, feed, auth.Author(c, h.service.opts.Author))
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, upsert.ErrMalformed) || errors.Is(err, extract.ErrUnknownDocument) {
			status = fiber.StatusBadRequest
		}
		l.Error("Feed ingestion failed", zap.Uint("event_id", eventID), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}

// HandleGetProtocol lists the audit trail of a competitor.
// @Summary Get Competitor Protocol
// @Description List every recorded field change of a competitor, oldest first.
// @Tags ingest
// @Produce json
// @Param eventId path int true "Event ID"
// @Param competitorId path int true "Competitor ID"
// @Success 200 {array} models.Protocol "Audit entries"
// @Failure 404 {object} map[string]string "Competitor not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ingest/events/{eventId}/competitors/{competitorId}/protocol [get]
func (h *Handler) HandleGetProtocol(c *fiber.Ctx) error {
	eventID, err := idParam(c, "eventId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	competitorID, err := idParam(c, "competitorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entries, err := h.service.Protocol(c.UserContext(), eventID, competitorID)
	if err != nil {
		if database.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "competitor not found"})
		}
		logger.WithRayID(h.service.logger, c).Error("Protocol lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(entries)
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
