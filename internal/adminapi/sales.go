package adminapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/receipt"
	"github.com/talkincode/toughpos/internal/report"
	"github.com/talkincode/toughpos/internal/webserver"
)

func registerSalesRoutes(srv *webserver.Server) {
	srv.ApiGET("/sales", listSales)
	srv.ApiGET("/sales/export.csv", exportSalesCSV)
	srv.ApiGET("/sales/export.xlsx", exportSalesXLSX)
	srv.ApiGET("/sales/:id", getSale)
	srv.ApiGET("/sales/:id/receipt", getSaleReceipt)
	srv.ApiPOST("/sales/:id/print", printSale)
}

// filteredSales reads the q and date query parameters
func filteredSales(c echo.Context) ([]domain.Sale, error) {
	return GetAppContext(c).Ledger().History(ledger.Filter{
		Query: c.QueryParam("q"),
		Date:  c.QueryParam("date"),
	})
}

// listSales returns the sale history, newest first
// @Summary list sales
// @Tags Sales
// @Param q query string false "Sale ID or client"
// @Param date query string false "Calendar day"
// @Param page query int false "Page number"
// @Param perPage query int false "Items per page"
// @Success 200 {object} ListResponse
// @Router /api/v1/sales [get]
func listSales(c echo.Context) error {
	sales, err := filteredSales(c)
	if err != nil {
		return domainError(c, err)
	}
	page, perPage := parsePagination(c)
	start, end := pageBounds(len(sales), page, perPage)
	return paged(c, sales[start:end], int64(len(sales)), page, perPage)
}

func getSale(c echo.Context) error {
	sale, found := GetAppContext(c).Ledger().Find(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}
	return ok(c, sale)
}

// getSaleReceipt renders the fixed-width receipt text of a sale
func getSaleReceipt(c echo.Context) error {
	appCtx := GetAppContext(c)
	sale, found := appCtx.Ledger().Find(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}
	text := receipt.Render(sale, appCtx.Settings().Get(), appCtx.Location())
	return c.String(http.StatusOK, text)
}

// printSale queues a receipt reprint
// @Summary reprint a receipt
// @Tags Sales
// @Param id path string true "Sale ID"
// @Success 202
// @Router /api/v1/sales/{id}/print [post]
func printSale(c echo.Context) error {
	appCtx := GetAppContext(c)
	sale, found := appCtx.Ledger().Find(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}
	if err := appCtx.Receipts().Dispatch(sale); err != nil {
		if errors.Is(err, receipt.ErrBusy) {
			return fail(c, http.StatusServiceUnavailable, "PRINTER_BUSY", "Receipt printer is busy, try again", nil)
		}
		return fail(c, http.StatusInternalServerError, "PRINT_FAILED", "Failed to queue receipt", err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

func exportName(ext string) string {
	return "sales-" + time.Now().Format("20060102-150405") + "." + ext
}

func exportSalesCSV(c echo.Context) error {
	sales, err := filteredSales(c)
	if err != nil {
		return domainError(c, err)
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, sales, GetAppContext(c).Location()); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export sales", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+exportName("csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// exportSalesXLSX writes the sales sheet with a summary block below it
func exportSalesXLSX(c echo.Context) error {
	appCtx := GetAppContext(c)
	sales, err := filteredSales(c)
	if err != nil {
		return domainError(c, err)
	}
	var buf bytes.Buffer
	summary := report.Summarize(sales, appCtx.Language())
	if err := report.WriteXLSX(&buf, sales, appCtx.Location(), summary); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export sales", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+exportName("xlsx"))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
