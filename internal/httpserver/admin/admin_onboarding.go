package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avelo-hq/revenue-console/internal/app"
	"github.com/avelo-hq/revenue-console/internal/httpserver/httputil"
	onboardingsvc "github.com/avelo-hq/revenue-console/internal/services/onboarding"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

type onboardingHandler struct {
	container *app.Container
	service   *onboardingsvc.Service
}

func registerOnboardingRoutes(router fiber.Router, container *app.Container) {
	handler := &onboardingHandler{
		container: container,
		service:   container.Onboarding,
	}
	router.Get("/onboarding/analytics", handler.analytics)
}

func (h *onboardingHandler) analytics(c *fiber.Ctx) error {
	if h.service == nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "onboarding service unavailable")
	}

	params := onboardingsvc.Params{
		Period: strings.TrimSpace(c.Query("period")),
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid year")
		}
		params.Year = year
	}

	start := time.Now()
	analytics, err := h.service.Snapshot(c.Context(), params)
	if err != nil {
		h.container.Observability.RecordReportError("onboarding")
		if errors.Is(err, timeutil.ErrInvalidRange) {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid period or year")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	h.container.Observability.RecordReport("onboarding", analytics.Period, time.Since(start))

	return c.JSON(analytics)
}
