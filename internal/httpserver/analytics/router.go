package analytics

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avelo-hq/revenue-console/internal/app"
	"github.com/avelo-hq/revenue-console/internal/httpserver/httputil"
	usagesvc "github.com/avelo-hq/revenue-console/internal/services/openaiusage"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

type usageHandler struct {
	container *app.Container
	service   *usagesvc.Service
}

// Register wires up all /analytics routes.
func Register(app *fiber.App, container *app.Container) {
	handler := &usageHandler{
		container: container,
		service:   container.Usage,
	}
	group := app.Group("/analytics")
	group.Get("/openai-usage", handler.usage)
}

func (h *usageHandler) usage(c *fiber.Ctx) error {
	if h.service == nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "usage service unavailable")
	}

	params := usagesvc.Params{
		Period:  strings.TrimSpace(c.Query("period")),
		Session: strings.TrimSpace(c.Query("session")),
	}

	start := time.Now()
	report, err := h.service.Snapshot(c.Context(), params)
	if err != nil {
		h.container.Observability.RecordReportError("openai_usage")
		if errors.Is(err, timeutil.ErrInvalidRange) {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid period")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	h.container.Observability.RecordReport("openai_usage", report.Period, time.Since(start))

	return c.JSON(report)
}
