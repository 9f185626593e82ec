package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
)

const shutdownTimeout = 15 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Documents documentStore
	Pipeline  uploader
	RAG       answerer
	Ready     pinger
	Metrics   *runtime.Metrics
	Logger    *log.Logger
}

// NewEcho builds the router with middleware and every route registered.
func NewEcho(d Deps) *echo.Echo {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if c.Response().Committed {
			return
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]interface{}{"error": msg})
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, runtime.AdminKeyHeader},
	}))
	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Skipper: func(c echo.Context) bool { return c.Path() == "/upload" },
			Timeout: cfg.Server.RequestTimeout,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/readyz", func(c echo.Context) error {
		if d.Ready == nil {
			return c.String(http.StatusOK, "ok")
		}
		if err := d.Ready.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.String(http.StatusOK, "ok")
	})
	registerDocs(e)
	if cfg.Telemetry.Enabled {
		e.GET(cfg.Telemetry.MetricsPath, echo.WrapHandler(d.Metrics.Handler()))
	}

	root := e.Group("")
	NewDocumentsHandler(d.Documents, d.Pipeline, cfg.Ingest.MaxUploadBytes, cfg.Server.UploadTimeout).
		Register(root, cfg.Security, middleware.BodyLimit(bodyLimit(cfg.Ingest.MaxUploadBytes)))
	NewAskHandler(d.RAG).Register(root)

	if dir := cfg.Server.StaticDir; dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			e.Static("/", dir)
		}
	}
	return e
}

// bodyLimit leaves headroom over the file limit for multipart framing so an
// oversized file is reported by the handler rather than cut off mid-stream.
func bodyLimit(maxUploadBytes int64) string {
	const headroom = 1 << 20
	return fmt.Sprintf("%dK", (maxUploadBytes+headroom)/1024)
}

// Run migrates the schema, wires the application and serves HTTP until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, addr string) error {
	dsn, err := runtime.BuildPostgresDSN(cfg)
	if err != nil {
		return err
	}
	if err := Migrate("", dsn, "up", 0); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if !cfg.Security.Configured() {
		log.Printf("no admin key configured; admin routes will reject every request")
	}

	e := NewEcho(Deps{
		Config:    cfg,
		Documents: app.Store,
		Pipeline:  app.Pipeline,
		RAG:       app.RAG,
		Ready:     app.Store,
		Metrics:   app.Metrics,
	})

	sched := &Scheduler{
		Store:     app.Store,
		Spec:      cfg.Logging.PruneCron,
		Retention: time.Duration(cfg.Logging.RetentionDays) * 24 * time.Hour,
		Metrics:   app.Metrics,
	}
	if app.Redis.PruneLock != nil {
		sched.Locker = app.Redis.PruneLock
	}
	if cfg.RAG.QueryLog {
		sched.Start(ctx)
		defer sched.Stop()
	}

	if addr == "" {
		addr = cfg.Server.Addr()
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
