package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/webserver"
)

func registerSuspendedRoutes(srv *webserver.Server) {
	srv.ApiGET("/suspended", listSuspended)
	srv.ApiPOST("/suspended/:id/restore", restoreSuspended)
	srv.ApiDELETE("/suspended/:id", deleteSuspended)
}

func listSuspended(c echo.Context) error {
	return ok(c, GetAppContext(c).Suspended().List())
}

// restoreSuspended replaces the cart with a suspended sale. A non-empty
// cart is only replaced with confirm=true.
// @Summary restore a suspended sale
// @Tags Suspended
// @Param id path string true "Suspended sale ID"
// @Param confirm query bool false "Replace a non-empty cart"
// @Router /api/v1/suspended/{id}/restore [post]
func restoreSuspended(c echo.Context) error {
	state, err := GetAppContext(c).Register().Restore(c.Param("id"), confirmed(c))
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, state)
}

func deleteSuspended(c echo.Context) error {
	GetAppContext(c).Register().DeleteSuspended(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
