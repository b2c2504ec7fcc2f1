package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avelo-hq/revenue-console/internal/app"
)

// Register wires up all /admin routes.
func Register(app *fiber.App, container *app.Container) {
	group := app.Group("/admin")
	registerRevenueRoutes(group, container)
	registerPlanCostRoutes(group, container)
	registerOnboardingRoutes(group, container)
}
