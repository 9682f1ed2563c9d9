package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/app"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/internal/receipt"
	"github.com/talkincode/toughpos/internal/webserver"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type testServer struct {
	app *app.Application
	e   *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Logger.FileEnable = false
	a := app.NewApplication(cfg)
	a.InitStores(kvstore.NewMemoryStore())
	t.Cleanup(a.Release)

	srv := webserver.NewServer(cfg)
	Init(srv, a)
	return &testServer{app: a, e: srv.Echo()}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestSaleFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100015"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100015"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodPut, "/register/payment", `{"paymentMethod":"cash","cashReceived":"100,00","client":"Ana"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state struct {
		Items   []json.RawMessage `json:"items"`
		Summary struct {
			Total  json.Number `json:"total"`
			Change json.Number `json:"change"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Items, 1)
	assert.Equal(t, "99.8", state.Summary.Total.String())
	assert.Equal(t, "0.2", state.Summary.Change.String())

	rec, env = s.do(t, http.MethodPost, "/register/finalize", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sale struct {
		ID     string `json:"id"`
		Client string `json:"client"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Equal(t, "Ana", sale.Client)

	p, _ := s.app.Catalog().Lookup("7891000100015")
	assert.Equal(t, 18, p.Stock)

	rec, env = s.do(t, http.MethodGet, "/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Total)

	rec, _ = s.do(t, http.MethodGet, "/sales/"+sale.ID+"/receipt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), receipt.Disclaimer)
	assert.Contains(t, rec.Body.String(), "Ana")

	rec, _ = s.do(t, http.MethodGet, "/sales/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/reports/summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	s.app.WaitEvents()
}

func TestFinalizeRejections(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/register/finalize", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMPTY_CART", env.Code)

	s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100015"}`)
	s.do(t, http.MethodPut, "/register/payment", `{"cashReceived":"10"}`)
	rec, env = s.do(t, http.MethodPost, "/register/finalize", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", env.Code)
	assert.Equal(t, 0, s.app.Ledger().Count())

	rec, env = s.do(t, http.MethodPut, "/register/payment", `{"discount":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, env = s.do(t, http.MethodPost, "/register/items", `{"barcode":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCancelNeedsConfirmation(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100015"}`)

	rec, env := s.do(t, http.MethodPost, "/register/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFIRM_REQUIRED", env.Code)
	assert.Len(t, s.app.Register().State().Items, 1)

	rec, _ = s.do(t, http.MethodPost, "/register/cancel?confirm=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.app.Register().State().Items)
}

func TestSuspendAndRestore(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100022"}`)

	rec, env := s.do(t, http.MethodPost, "/register/suspend", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry struct {
		ID     string `json:"id"`
		Client string `json:"client"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, "N/A", entry.Client)

	s.do(t, http.MethodPost, "/register/items", `{"barcode":"7891000100039"}`)
	rec, env = s.do(t, http.MethodPost, "/suspended/"+entry.ID+"/restore", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFIRM_REQUIRED", env.Code)

	rec, _ = s.do(t, http.MethodPost, "/suspended/"+entry.ID+"/restore?confirm=yes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := s.app.Register().State().Items
	require.Len(t, items, 1)
	assert.Equal(t, "7891000100022", items[0].Barcode)
	assert.Equal(t, 0, s.app.Suspended().Len())

	rec, _ = s.do(t, http.MethodPost, "/suspended/"+entry.ID+"/restore?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScanReturnsDraftForUnknownCode(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/register/scan", `{"query":"Spin Mop"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Added bool `json:"added"`
		Draft *struct {
			Barcode string `json:"barcode"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Added)

	rec, env = s.do(t, http.MethodPost, "/register/scan", `{"query":"999000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	result.Added, result.Draft = false, nil
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Added)
	require.NotNil(t, result.Draft)
	assert.Equal(t, "999000", result.Draft.Barcode)

	rec, env = s.do(t, http.MethodPost, "/register/scan", `{"query":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestProductCRUD(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/products", `{"barcode":"123","name":"Brush","price":"7.50","stock":4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p struct {
		Category string `json:"category"`
		MinStock int    `json:"minStock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "misc", p.Category)
	assert.Equal(t, 5, p.MinStock)

	rec, env = s.do(t, http.MethodPost, "/products", `{"barcode":"124","price":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, _ = s.do(t, http.MethodPut, "/products/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/products/123", `{"name":"Brush XL","price":9,"stock":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	saved, ok := s.app.Catalog().Lookup("123")
	require.True(t, ok)
	assert.Equal(t, "Brush XL", saved.Name)

	rec, env = s.do(t, http.MethodGet, "/products?q=brush", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Total)

	rec, _ = s.do(t, http.MethodDelete, "/products/123", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, "/products/123", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportProductsCSV(t *testing.T) {
	s := newTestServer(t)
	body := "barcode,name,price,cost,stock,min_stock,category\n555,Sponge,\"2,50\",1,10,,cleaning\n,No code,1,1,1,1,misc\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import.csv", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, ok := s.app.Catalog().Lookup("555")
	require.True(t, ok)
	assert.Equal(t, "2.5", p.Price.String())
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPatch, "/settings", `{"companyName":"Loja Nova","soundEnabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Loja Nova", s.app.Settings().Get().CompanyName)
	assert.False(t, s.app.Settings().Get().SoundEnabled)

	rec, env := s.do(t, http.MethodPatch, "/settings", `{"colour":"blue"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, _ = s.do(t, http.MethodPut, "/settings", `{"companyName":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Loja Nova", s.app.Settings().Get().CompanyName)
}

func TestSalesDateFilter(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/sales?date=banana", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DATE", env.Code)

	rec, env = s.do(t, http.MethodGet, "/sales?date=2024-03-01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), env.Total)
}

func TestJobsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []app.JobStatus
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 3)

	rec, _ = s.do(t, http.MethodPost, "/jobs/"+app.JobLowStock+"/run", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/jobs/unknown/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
