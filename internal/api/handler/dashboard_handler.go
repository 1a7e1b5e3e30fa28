package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slooze/inventory-console/internal/api/view"
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/service"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show renders the stock counters of the manager dashboard.
func (h *DashboardHandler) Show(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}

	page := dashboardPage{
		pageData: pageData{
			Title: "Dashboard",
			Nav:   "dashboard",
			User:  userOf(scope),
			Watch: service.PageDashboard,
		},
		LowStockThreshold: domain.LowStockThreshold,
	}

	summary, err := scope.Catalog.Summary(c.Request().Context())
	if err != nil {
		if ok, rerr := sessionExpired(c, scope, err); ok {
			return rerr
		}
		page.Error = "Failed to load products"
		return c.Render(http.StatusBadGateway, view.PageDashboard, page)
	}
	page.Summary = summary
	return c.Render(http.StatusOK, view.PageDashboard, page)
}
