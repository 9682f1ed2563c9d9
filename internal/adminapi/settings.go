package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/webserver"
)

func registerSettingsRoutes(srv *webserver.Server) {
	srv.ApiGET("/settings", getSettings)
	srv.ApiPUT("/settings", replaceSettings)
	srv.ApiPATCH("/settings", patchSettings)
}

func getSettings(c echo.Context) error {
	return ok(c, GetAppContext(c).Settings().Get())
}

// replaceSettings stores a full settings record
// @Summary replace settings
// @Tags Settings
// @Param settings body domain.AppSettings true "Settings"
// @Router /api/v1/settings [put]
func replaceSettings(c echo.Context) error {
	var payload domain.AppSettings
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	store := GetAppContext(c).Settings()
	if err := store.Save(payload); err != nil {
		return domainError(c, err)
	}
	return ok(c, store.Get())
}

// patchSettings changes only the fields present in the body
// @Summary update some settings
// @Tags Settings
// @Router /api/v1/settings [patch]
func patchSettings(c echo.Context) error {
	values := map[string]interface{}{}
	if err := c.Bind(&values); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	updated, err := GetAppContext(c).Settings().Patch(values)
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, updated)
}
