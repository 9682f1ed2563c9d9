package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/insight"
	"github.com/talkincode/toughpos/internal/webserver"
)

func registerInsightRoutes(srv *webserver.Server) {
	srv.ApiGET("/insights", getInsight)
	srv.ApiPOST("/insights", startInsight)
	srv.ApiDELETE("/insights", cancelInsight)
}

func getInsight(c echo.Context) error {
	return ok(c, GetAppContext(c).Insight().Status())
}

// startInsight analyzes the most recent sales in the background; poll
// GET /insights for the result
// @Summary start a sales analysis
// @Tags Insights
// @Success 202 {object} insight.Status
// @Router /api/v1/insights [post]
func startInsight(c echo.Context) error {
	appCtx := GetAppContext(c)
	status := appCtx.Insight().Start(appCtx.Ledger().Recent(insight.MaxSales))
	return c.JSON(http.StatusAccepted, map[string]interface{}{"data": status})
}

func cancelInsight(c echo.Context) error {
	return ok(c, GetAppContext(c).Insight().Cancel())
}
