package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/app"
	"github.com/talkincode/toughpos/internal/webserver"
)

// registerSchedulerRoutes registers scheduled job API routes
func registerSchedulerRoutes(srv *webserver.Server) {
	srv.ApiGET("/jobs", listJobs)
	srv.ApiPOST("/jobs/:name/run", runJob)
}

// listJobs retrieves the scheduled jobs and their last outcome
// @Summary get the job list
// @Tags Scheduler
// @Success 200 {array} app.JobStatus
// @Router /api/v1/jobs [get]
func listJobs(c echo.Context) error {
	return ok(c, GetAppContext(c).Jobs())
}

// runJob triggers the job immediately and waits for it to finish
// @Summary run a job now
// @Tags Scheduler
// @Param name path string true "Job name"
// @Router /api/v1/jobs/{name}/run [post]
func runJob(c echo.Context) error {
	err := GetAppContext(c).RunJobNow(c.Param("name"))
	if errors.Is(err, app.ErrJobNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "RUN_FAILED", "Job failed", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
