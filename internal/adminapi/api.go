package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/app"
	"github.com/talkincode/toughpos/internal/cart"
	"github.com/talkincode/toughpos/internal/checkout"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/settings"
	"github.com/talkincode/toughpos/internal/webserver"
)

const appContextKey = "appctx"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ListResponse is the body of paged list requests
type ListResponse struct {
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
}

// Init registers every register API route on srv
func Init(srv *webserver.Server, appCtx app.AppContext) {
	srv.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	})
	registerProductRoutes(srv)
	registerRegisterRoutes(srv)
	registerSuspendedRoutes(srv)
	registerSalesRoutes(srv)
	registerReportRoutes(srv)
	registerSettingsRoutes(srv)
	registerInsightRoutes(srv)
	registerSchedulerRoutes(srv)
}

// GetAppContext returns the application bound to the request
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Details: details})
}

func paged(c echo.Context, rows interface{}, total int64, page, perPage int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: rows, Total: total, Page: page, PerPage: perPage})
}

// parsePagination reads page and perPage, defaulting to 1 and 20
func parsePagination(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("perPage"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 20
	}
	return page, perPage
}

// pageBounds returns the slice bounds of page within n rows
func pageBounds(n, page, perPage int) (start, end int) {
	start = (page - 1) * perPage
	if start > n {
		start = n
	}
	end = start + perPage
	if end > n {
		end = n
	}
	return start, end
}

// confirmed reports whether the caller acknowledged a destructive action
func confirmed(c echo.Context) bool {
	v := strings.ToLower(strings.TrimSpace(c.QueryParam("confirm")))
	return v == "true" || v == "1" || v == "yes"
}

func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := map[string]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request validation failed", fields)
	}
	return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
}

// domainError maps store and register errors onto the API envelope
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		return fail(c, http.StatusConflict, "OUT_OF_STOCK", "Product out of stock", nil)
	case errors.Is(err, checkout.ErrEmptyCart):
		return fail(c, http.StatusConflict, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, checkout.ErrCartNotEmpty):
		return fail(c, http.StatusConflict, "CONFIRM_REQUIRED", "The current cart is not empty; repeat with confirm=true to replace it", nil)
	case errors.Is(err, checkout.ErrInsufficientPayment):
		return fail(c, http.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT", "Cash received is less than the total", nil)
	case errors.Is(err, checkout.ErrSuspendedNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Suspended sale not found", nil)
	case errors.Is(err, domain.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case errors.Is(err, checkout.ErrEmptyQuery):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, ledger.ErrInvalidDate):
		return fail(c, http.StatusBadRequest, "INVALID_DATE", "Invalid date filter", err.Error())
	case errors.Is(err, settings.ErrInvalidSettings):
		return fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid settings", err.Error())
	case errors.Is(err, checkout.ErrNegativeDiscount),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrBarcodeRequired),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrNegativeMinStock):
		return fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", err.Error())
}
