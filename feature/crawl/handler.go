package crawl

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ats-catalog/core/logger"
	"ats-catalog/feature/ats"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	maxPageSize = 100
	maxPages    = 20
)

// Handler exposes crawl triggers over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	logger       *zap.Logger
	group        singleflight.Group
}

// NewHandler creates a new HTTP handler.
func NewHandler(o *Orchestrator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orchestrator: o, logger: logger}
}

// RegisterRoutes registers the crawl routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/jobs/run/:ats", h.HandleRunSource)
	app.Post("/api/crawl", h.HandleRunAll)
	app.Get("/api/sources", h.HandleListSources)
	app.Get("/api/snapshots", h.HandleListSnapshots)
}

// HandleRunSource crawls one source now.
// Query: company, careers_url, endpoint, page_size (1..100), pages (1..20), host, site.
// Missing fields are taken from the configured source of the same ATS.
func (h *Handler) HandleRunSource(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	src, err := h.sourceFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	key, _ := json.Marshal(src)
	v, err, shared := h.group.Do(string(key), func() (any, error) {
		return h.orchestrator.RunSource(c.UserContext(), src)
	})
	result, _ := v.(RunResult)
	if err != nil {
		status := statusFor(err)
		l.Error("Run failed", zap.String("ats", src.Ats), zap.String("company", src.Company), zap.Int("status", status), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error(), "result": result})
	}

	l.Info("Run completed", zap.String("ats", src.Ats), zap.String("company", src.Company), zap.Bool("shared", shared))
	return c.JSON(result)
}

// HandleRunAll crawls every configured source.
func (h *Handler) HandleRunAll(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	v, _, _ := h.group.Do("__all__", func() (any, error) {
		results, err := h.orchestrator.RunAll(c.UserContext())
		return crawlReport{results: results, err: err}, nil
	})
	report := v.(crawlReport)

	failed := 0
	for _, r := range report.results {
		if r.Error != "" {
			failed++
		}
	}
	if report.err != nil {
		l.Warn("Crawl finished with failures", zap.Int("failed", failed), zap.Error(report.err))
	}
	return c.JSON(fiber.Map{"results": report.results, "failed": failed})
}

// HandleListSources returns the configured sources.
func (h *Handler) HandleListSources(c *fiber.Ctx) error {
	return c.JSON(h.orchestrator.Sources())
}

// HandleListSnapshots lists the archived snapshots.
func (h *Handler) HandleListSnapshots(c *fiber.Ctx) error {
	archive := h.orchestrator.Archive()
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Snapshots are disabled"})
	}
	snapshots, err := archive.List(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing snapshots failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshots)
}

type crawlReport struct {
	results []RunResult
	err     error
}

func (h *Handler) sourceFromRequest(c *fiber.Ctx) (ats.Source, error) {
	name := strings.Clone(c.Params("ats"))
	if _, err := h.orchestrator.registry.Get(name); err != nil {
		return ats.Source{}, err
	}

	src := ats.Source{Ats: name}
	company := query(c, "company")
	for _, s := range h.orchestrator.Sources() {
		if s.Ats == name && (company == "" || s.Company == company) {
			src = s
			break
		}
	}

	if v := query(c, "company"); v != "" {
		src.Company = v
	}
	if v := query(c, "careers_url"); v != "" {
		src.CareersURL = v
	}
	if v := query(c, "endpoint"); v != "" {
		src.Endpoint = v
	}
	if v := query(c, "host"); v != "" {
		src.Host = v
	}
	if v := query(c, "site"); v != "" {
		src.Site = v
	}

	var err error
	if src.PageSize, err = intQuery(c, "page_size", src.PageSize, maxPageSize); err != nil {
		return ats.Source{}, err
	}
	if src.MaxPages, err = intQuery(c, "pages", src.MaxPages, maxPages); err != nil {
		return ats.Source{}, err
	}

	if err := src.Validate(); err != nil {
		return ats.Source{}, err
	}
	return src, nil
}

// query copies the value out of the request buffer so it can outlive the handler.
func query(c *fiber.Ctx, key string) string {
	return strings.Clone(c.Query(key))
}

func intQuery(c *fiber.Ctx, key string, def, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > max {
		return 0, fmt.Errorf("%s must be between 1 and %d", key, max)
	}
	return v, nil
}

func statusFor(err error) int {
	var fe *FetchError
	switch {
	case errors.Is(err, ats.ErrInvalidSource), errors.Is(err, ats.ErrUnknownAdapter):
		return fiber.StatusBadRequest
	case errors.As(err, &fe):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
