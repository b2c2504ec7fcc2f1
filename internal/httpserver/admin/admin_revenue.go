package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avelo-hq/revenue-console/internal/app"
	"github.com/avelo-hq/revenue-console/internal/httpserver/httputil"
	revenuesvc "github.com/avelo-hq/revenue-console/internal/services/revenue"
)

type revenueHandler struct {
	container *app.Container
	service   *revenuesvc.Service
}

func registerRevenueRoutes(router fiber.Router, container *app.Container) {
	handler := &revenueHandler{
		container: container,
		service:   container.Revenue,
	}
	router.Get("/revenue", handler.snapshot)
}

func (h *revenueHandler) snapshot(c *fiber.Ctx) error {
	if h.service == nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "revenue service unavailable")
	}

	params := revenuesvc.Params{
		Period: strings.TrimSpace(c.Query("period")),
		Metric: strings.TrimSpace(c.Query("metric")),
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid year")
		}
		params.Year = year
	}

	start := time.Now()
	snapshot, err := h.service.Snapshot(c.Context(), params)
	if err != nil {
		h.container.Observability.RecordReportError("revenue")
		switch {
		case errors.Is(err, revenuesvc.ErrInvalidRange):
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid period or year")
		case errors.Is(err, revenuesvc.ErrInvalidMetric):
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid metric")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	h.container.Observability.RecordReport("revenue", snapshot.Period, time.Since(start))

	return c.JSON(snapshot)
}
