package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/queries"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Addr      string `help:"Listen address (overrides APP_ADDR)."`
	Transport string `help:"HTTP stack: fiber (go-router) or http (chi). Overrides APP_TRANSPORT."`
}

func (cmd *serveCmd) Run(ctx context.Context, globals *cli) error {
	app, err := newApplication(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.cfg.AppAddr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}
	transport := app.cfg.Transport
	if cmd.Transport != "" {
		transport = cmd.Transport
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	metricsSrv := &http.Server{Addr: app.cfg.MetricsAddr, Handler: metricsRouter(app)}
	go func() {
		app.logger.Info("starting metrics server", slog.String("addr", app.cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server", slog.Any("error", err))
		}
	}()
	defer shutdown(app.logger, "metrics", metricsSrv.Shutdown)

	salesQuery := queries.NewSalesQuery(app.service)
	widgetQuery := queries.NewWidgetQuery(app.service)
	refresh := commands.NewRefreshSalesCommand(app.service, app.telemetry)

	switch transport {
	case "fiber", "http":
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}

	switch transport {
	case "http":
		controller := dashboard.NewController(dashboard.ControllerOptions{
			Service:   app.service,
			Renderer:  renderer,
			Catalog:   app.catalog,
			EventsURL: "/api/sales/events",
		})
		handlers := &httpapi.Handlers{
			Sales:      salesQuery,
			Widgets:    widgetQuery,
			Refresh:    refresh,
			Controller: controller,
			Broadcast:  app.broadcast,
			Catalog:    app.catalog,
		}
		return serveHTTP(ctx, app, addr, handlers)
	default:
		controller := dashboard.NewController(dashboard.ControllerOptions{
			Service:      app.service,
			Renderer:     renderer,
			Catalog:      app.catalog,
			WebSocketURL: "/sales/ws",
		})
		server := router.NewFiberAdapter()
		if err := gorouter.Register(gorouter.Config[*fiber.App]{
			Router:     server.Router(),
			Controller: controller,
			Sales:      salesQuery,
			Widgets:    widgetQuery,
			Refresh:    refresh,
			Broadcast:  app.broadcast,
			Catalog:    app.catalog,
		}); err != nil {
			return fmt.Errorf("register routes: %w", err)
		}
		return serveFiber(ctx, app, addr, server)
	}
}

func serveHTTP(ctx context.Context, app *application, addr string, handlers *httpapi.Handlers) error {
	mux := http.NewServeMux()
	handlers.Routes(mux)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(httprate.Limit(app.cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	r.Get("/healthz", healthz)
	r.Mount("/", mux)

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() {
		app.logger.Info("starting http server", slog.String("addr", addr), slog.String("dashboard", "/sales/dashboard"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	select {
	case err := <-errs:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	app.logger.Info("shutting down")
	shutdown(app.logger, "http", srv.Shutdown)
	return nil
}

func serveFiber(ctx context.Context, app *application, addr string, server router.Server[*fiber.App]) error {
	errs := make(chan error, 1)
	go func() {
		app.logger.Info("starting fiber server", slog.String("addr", addr), slog.String("dashboard", "/sales/dashboard"))
		if err := server.Serve(addr); err != nil {
			errs <- err
		}
	}()
	select {
	case err := <-errs:
		return fmt.Errorf("fiber server: %w", err)
	case <-ctx.Done():
	}
	app.logger.Info("shutting down")
	shutdown(app.logger, "fiber", server.Shutdown)
	return nil
}

func metricsRouter(app *application) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func shutdown(logger *slog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("graceful shutdown", slog.String("server", name), slog.Any("error", err))
	}
}
