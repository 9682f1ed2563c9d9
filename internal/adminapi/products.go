package adminapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/webserver"
	"github.com/talkincode/toughpos/pkg/common"
)

type productPayload struct {
	Barcode  string          `json:"barcode" validate:"omitempty,max=64"`
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    int             `json:"stock"`
	MinStock *int            `json:"minStock" validate:"omitempty,min=0"`
	Category string          `json:"category" validate:"omitempty,oneof=kitchen decor organizers cleaning bathroom toys tools stationery misc"`
}

func (p productPayload) product(barcode string) domain.Product {
	minStock := domain.DefaultMinStock
	if p.MinStock != nil {
		minStock = *p.MinStock
	}
	if strings.TrimSpace(p.Barcode) != "" {
		barcode = p.Barcode
	}
	return domain.Product{
		Barcode:  strings.TrimSpace(barcode),
		Name:     strings.TrimSpace(p.Name),
		Price:    p.Price,
		Cost:     p.Cost,
		Stock:    p.Stock,
		MinStock: minStock,
		Category: p.Category,
	}
}

func registerProductRoutes(srv *webserver.Server) {
	srv.ApiGET("/products", listProducts)
	srv.ApiGET("/products/search", searchProducts)
	srv.ApiGET("/products/export.csv", exportProducts)
	srv.ApiPOST("/products/import.csv", importProducts)
	srv.ApiGET("/products/:barcode", getProduct)
	srv.ApiPOST("/products", createProduct)
	srv.ApiPUT("/products/:barcode", updateProduct)
	srv.ApiDELETE("/products/:barcode", deleteProduct)
	srv.ApiGET("/inventory", inventory)
	srv.ApiGET("/categories", listCategories)
}

// listProducts pages through the catalog in barcode order
// @Summary list products
// @Tags Products
// @Param q query string false "Name, barcode or category filter"
// @Param page query int false "Page number"
// @Param perPage query int false "Items per page"
// @Success 200 {object} ListResponse
// @Router /api/v1/products [get]
func listProducts(c echo.Context) error {
	page, perPage := parsePagination(c)
	catalog := GetAppContext(c).Catalog()
	rows := catalog.All()
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		filtered := make([]domain.Product, 0, len(rows))
		for _, p := range rows {
			if common.ContainsFold(p.Name, q) || common.ContainsFold(p.Barcode, q) || common.ContainsFold(p.Category, q) {
				filtered = append(filtered, p)
			}
		}
		rows = filtered
	}
	start, end := pageBounds(len(rows), page, perPage)
	return paged(c, rows[start:end], int64(len(rows)), page, perPage)
}

// searchProducts is the quick search of the barcode field
// @Summary quick product search, at most five results
// @Tags Products
// @Param q query string true "Name or barcode fragment"
// @Router /api/v1/products/search [get]
func searchProducts(c echo.Context) error {
	result := GetAppContext(c).Catalog().Search(c.QueryParam("q"))
	if result == nil {
		result = []domain.Product{}
	}
	return ok(c, result)
}

// inventory lists products low stock first
// @Summary inventory view
// @Tags Products
// @Param q query string false "Name, barcode or category filter"
// @Router /api/v1/inventory [get]
func inventory(c echo.Context) error {
	rows := GetAppContext(c).Catalog().Inventory(c.QueryParam("q"))
	low := 0
	for _, p := range rows {
		if p.LowStock() {
			low++
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    len(rows),
		"lowStock": low,
	})
}

func listCategories(c echo.Context) error {
	return ok(c, domain.Categories)
}

func getProduct(c echo.Context) error {
	p, found := GetAppContext(c).Catalog().Lookup(c.Param("barcode"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

// createProduct inserts or replaces the record at the payload barcode
// @Summary save a product
// @Tags Products
// @Param product body productPayload true "Product"
// @Success 201 {object} domain.Product
// @Router /api/v1/products [post]
func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	p := payload.product("")
	if err := GetAppContext(c).Catalog().Upsert(p); err != nil {
		return domainError(c, err)
	}
	saved, _ := GetAppContext(c).Catalog().Lookup(p.Barcode)
	return created(c, saved)
}

// updateProduct replaces the record at :barcode. A different barcode in the
// body is saved as a new record and the old one is kept.
// @Summary update a product
// @Tags Products
// @Param barcode path string true "Barcode"
// @Param product body productPayload true "Product"
// @Success 200 {object} domain.Product
// @Router /api/v1/products/{barcode} [put]
func updateProduct(c echo.Context) error {
	catalog := GetAppContext(c).Catalog()
	barcode := c.Param("barcode")
	if _, found := catalog.Lookup(barcode); !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	p := payload.product(barcode)
	if err := catalog.Upsert(p); err != nil {
		return domainError(c, err)
	}
	saved, _ := catalog.Lookup(p.Barcode)
	return ok(c, saved)
}

// deleteProduct removes the record; sales already recorded keep their copy
// @Summary delete a product
// @Tags Products
// @Param barcode path string true "Barcode"
// @Success 204 "No Content"
// @Router /api/v1/products/{barcode} [delete]
func deleteProduct(c echo.Context) error {
	if !GetAppContext(c).Catalog().Delete(c.Param("barcode")) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func exportProducts(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return GetAppContext(c).Catalog().ExportCSV(c.Response())
}

// importProducts accepts a multipart "file" field or a raw CSV body
// @Summary import products from CSV
// @Tags Products
// @Router /api/v1/products/import.csv [post]
func importProducts(c echo.Context) error {
	var r io.Reader = c.Request().Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read upload", err.Error())
		}
		defer f.Close()
		r = f
	}
	saved, rejected, err := GetAppContext(c).Catalog().ImportCSV(r)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CSV", "Unable to parse CSV", err.Error())
	}
	if rejected == nil {
		rejected = []string{}
	}
	return ok(c, map[string]interface{}{"saved": saved, "rejected": rejected})
}
