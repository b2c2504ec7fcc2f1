package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avelo-hq/revenue-console/internal/app"
	"github.com/avelo-hq/revenue-console/internal/httpserver/httputil"
	marginsvc "github.com/avelo-hq/revenue-console/internal/services/margin"
)

type planCostHandler struct {
	container *app.Container
	service   *marginsvc.Service
}

func registerPlanCostRoutes(router fiber.Router, container *app.Container) {
	handler := &planCostHandler{
		container: container,
		service:   container.Margin,
	}
	router.Get("/plan-costs", handler.planCosts)
}

func (h *planCostHandler) planCosts(c *fiber.Ctx) error {
	if h.service == nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "margin service unavailable")
	}

	start := time.Now()
	summary, err := h.service.PlanCosts(c.Context())
	if err != nil {
		h.container.Observability.RecordReportError("plan_costs")
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	h.container.Observability.RecordReport("plan_costs", "", time.Since(start))

	return c.JSON(summary)
}
