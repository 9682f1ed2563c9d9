package webserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/config"
)

const apiPrefix = "/api/v1"

var (
	promOnce sync.Once
	prom     *prometheus.Prometheus
)

// Validator adapts go-playground/validator to echo
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Server is the local register API server
type Server struct {
	root *echo.Echo
	api  *echo.Group
	cfg  *config.AppConfig
}

func NewServer(cfg *config.AppConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler
	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
		e.Debug = true
	} else {
		e.Logger.SetLevel(log.INFO)
	}
	e.Use(middleware.Recover())
	e.Use(ZapLogger())

	promOnce.Do(func() {
		prom = prometheus.NewPrometheus("toughpos", nil)
	})
	prom.Use(e)

	return &Server{root: e, api: e.Group(apiPrefix), cfg: cfg}
}

// Echo exposes the root router, mostly for tests
func (s *Server) Echo() *echo.Echo {
	return s.root
}

// Use adds middleware to the /api/v1 group
func (s *Server) Use(m ...echo.MiddlewareFunc) {
	s.api.Use(m...)
}

func (s *Server) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.GET(path, h, m...)
}

func (s *Server) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, m...)
}

func (s *Server) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PUT(path, h, m...)
}

func (s *Server) ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PATCH(path, h, m...)
}

func (s *Server) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.DELETE(path, h, m...)
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.S().Infof("register api listening on %s", addr)
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// ZapLogger logs every request through the global zap logger
func ZapLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			if c.Response().Status >= http.StatusInternalServerError {
				zap.L().Error("http request", fields...)
			} else {
				zap.L().Debug("http request", fields...)
			}
			return nil
		}
	}
}

// errorHandler renders echo errors with the API error envelope
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}
	_ = c.JSON(code, map[string]interface{}{
		"code":    http.StatusText(code),
		"message": message,
	})
}
