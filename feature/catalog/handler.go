package catalog

import (
	"errors"
	"fmt"
	"strconv"

	"ats-catalog/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes. Static paths go before /:id.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	jobs := app.Group("/api/jobs")
	jobs.Get("/", h.HandleListJobs)
	jobs.Get("/summary", h.HandleSummary)
	jobs.Get("/__debug/db", h.HandleDebugDB)
	jobs.Get("/:id<int>", h.HandleGetJob)

	runs := app.Group("/api/runs")
	runs.Get("/", h.HandleListRuns)
	runs.Get("/:id<int>", h.HandleGetRun)
}

// HandleListJobs lists catalog entries, newest first.
// Query: limit (1..1000, default 100), offset, company, title, ats, active.
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit, offset, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	q := JobQuery{
		Limit:   limit,
		Offset:  offset,
		Company: c.Query("company"),
		Title:   c.Query("title"),
		Ats:     c.Query("ats"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "active must be a boolean"})
		}
		q.Active = &active
	}

	jobs, err := h.service.ListJobs(c.UserContext(), q)
	if err != nil {
		l.Error("Listing jobs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(jobs)
}

// HandleGetJob returns one job.
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid job id"})
	}

	job, err := h.service.GetJob(c.UserContext(), uint(id))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Job not found"})
	}
	if err != nil {
		l.Error("Loading job failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}

// HandleSummary returns catalog totals.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		l.Error("Summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// HandleListRuns lists ledger entries, newest first.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit, offset, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	runs, err := h.service.ListRuns(c.UserContext(), RunQuery{
		Limit:   limit,
		Offset:  offset,
		Ats:     c.Query("ats"),
		Company: c.Query("company"),
	})
	if err != nil {
		l.Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandleGetRun returns one ledger entry.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid run id"})
	}

	run, err := h.service.GetRun(c.UserContext(), uint(id))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Run not found"})
	}
	if err != nil {
		l.Error("Loading run failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(run)
}

// HandleDebugDB reports the redacted DSN and live table columns.
func (h *Handler) HandleDebugDB(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	info, err := h.service.Debug(c.UserContext())
	if err != nil {
		l.Error("Schema inspection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(info)
}

func pagination(c *fiber.Ctx) (limit, offset int, err error) {
	limit = DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
