package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/talkincode/toughpos/internal/checkout"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/webserver"
)

type addItemPayload struct {
	Barcode string `json:"barcode" validate:"required,max=64"`
}

type scanPayload struct {
	Query string `json:"query" validate:"required,max=200"`
}

// paymentPayload only changes the fields present in the request
type paymentPayload struct {
	PaymentMethod *string          `json:"paymentMethod"`
	CashReceived  *string          `json:"cashReceived" validate:"omitempty,max=32"`
	Discount      *decimal.Decimal `json:"discount"`
	Client        *string          `json:"client" validate:"omitempty,max=120"`
}

func registerRegisterRoutes(srv *webserver.Server) {
	srv.ApiGET("/register", getRegister)
	srv.ApiPOST("/register/items", addRegisterItem)
	srv.ApiPOST("/register/scan", scanRegister)
	srv.ApiDELETE("/register/items/:index", removeRegisterItem)
	srv.ApiPUT("/register/payment", updatePayment)
	srv.ApiPOST("/register/finalize", finalizeSale)
	srv.ApiPOST("/register/suspend", suspendSale)
	srv.ApiPOST("/register/cancel", cancelSale)
	srv.ApiPOST("/register/focus", focusRegister)
}

// getRegister returns cart lines, checkout inputs and derived totals
// @Summary current register state
// @Tags Register
// @Router /api/v1/register [get]
func getRegister(c echo.Context) error {
	return ok(c, GetAppContext(c).Register().State())
}

func addRegisterItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	state, err := GetAppContext(c).Register().AddBarcode(payload.Barcode)
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, state)
}

// scanRegister is the barcode field submit: an exact barcode or a single
// search match is added, anything else returns a draft product to create
// @Summary submit the barcode field
// @Tags Register
// @Param body body scanPayload true "Typed or scanned text"
// @Router /api/v1/register/scan [post]
func scanRegister(c echo.Context) error {
	var payload scanPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	result, err := GetAppContext(c).Register().Submit(payload.Query)
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, result)
}

func removeRegisterItem(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid line index", nil)
	}
	return ok(c, GetAppContext(c).Register().RemoveLine(index))
}

// updatePayment sets payment method, cash received, discount and client
// @Summary update checkout inputs
// @Tags Register
// @Param body body paymentPayload true "Fields to change"
// @Router /api/v1/register/payment [put]
func updatePayment(c echo.Context) error {
	var payload paymentPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	state, err := GetAppContext(c).Register().UpdateInputs(func(in *checkout.Inputs) {
		if payload.PaymentMethod != nil {
			in.PaymentMethod = domain.PaymentMethod(*payload.PaymentMethod)
		}
		if payload.CashReceived != nil {
			in.CashReceived = strings.TrimSpace(*payload.CashReceived)
		}
		if payload.Discount != nil {
			in.Discount = *payload.Discount
		}
		if payload.Client != nil {
			in.Client = *payload.Client
		}
	})
	if err != nil {
		return domainError(c, err)
	}
	return ok(c, state)
}

// finalizeSale commits the cart; the receipt is printed in the background
// @Summary finalize the sale (F2)
// @Tags Register
// @Success 201 {object} domain.Sale
// @Router /api/v1/register/finalize [post]
func finalizeSale(c echo.Context) error {
	sale, err := GetAppContext(c).Register().Finalize()
	if err != nil {
		return domainError(c, err)
	}
	return created(c, sale)
}

func suspendSale(c echo.Context) error {
	entry, err := GetAppContext(c).Register().Suspend()
	if err != nil {
		return domainError(c, err)
	}
	return created(c, entry)
}

// cancelSale discards the cart; requires confirm=true
// @Summary cancel the sale in progress
// @Tags Register
// @Param confirm query bool true "Acknowledge discarding the cart"
// @Router /api/v1/register/cancel [post]
func cancelSale(c echo.Context) error {
	reg := GetAppContext(c).Register()
	if !confirmed(c) && len(reg.State().Items) > 0 {
		return fail(c, http.StatusConflict, "CONFIRM_REQUIRED", "Canceling discards the cart; repeat with confirm=true", nil)
	}
	return ok(c, map[string]interface{}{"discarded": reg.Cancel(), "state": reg.State()})
}

// focusRegister acknowledges the focus shortcut (F1); the client moves the
// cursor to the barcode field
func focusRegister(c echo.Context) error {
	return ok(c, map[string]interface{}{"focus": "barcode"})
}
