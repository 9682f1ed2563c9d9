package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/report"
	"github.com/talkincode/toughpos/internal/webserver"
)

func registerReportRoutes(srv *webserver.Server) {
	srv.ApiGET("/reports/summary", getReportSummary)
	srv.ApiGET("/reports/daily", getReportDaily)
}

// getReportSummary aggregates revenue, tickets, payment methods and top products
// @Summary sales summary
// @Tags Reports
// @Param q query string false "Sale ID or client"
// @Param date query string false "Calendar day"
// @Success 200 {object} report.Summary
// @Router /api/v1/reports/summary [get]
func getReportSummary(c echo.Context) error {
	sales, err := filteredSales(c)
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, report.Summarize(sales, GetAppContext(c).Language()))
}

func getReportDaily(c echo.Context) error {
	sales, err := filteredSales(c)
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, report.Daily(sales, GetAppContext(c).Location()))
}
