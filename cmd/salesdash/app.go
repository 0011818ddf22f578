package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
	"github.com/goliatone/go-sales-dashboard/pkg/config"
	"github.com/goliatone/go-sales-dashboard/pkg/salesapi"
)

// application holds the wired collaborators shared by the subcommands.
type application struct {
	cfg        *config.Config
	logger     *slog.Logger
	telemetry  sales.Telemetry
	registry   *prometheus.Registry
	catalog    *catalog.Catalog
	aggregator *sales.Aggregator
	service    *dashboard.Service
	broadcast  *dashboard.BroadcastHook
	chart      *dashboard.EChartsProvider
	closers    []func() error
}

func newApplication(ctx context.Context, globals *cli) (*application, error) {
	cfg, err := config.Load(globals.EnvFile...)
	if err != nil {
		return nil, err
	}
	if globals.Mock {
		cfg.SalesMock = true
	}
	logger := config.NewLogger(cfg)
	telemetry := sales.NewLogTelemetry(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &application{cfg: cfg, logger: logger, telemetry: telemetry, registry: registry}

	if cfg.CatalogPath != "" {
		app.catalog, err = catalog.Load(cfg.CatalogPath)
	} else {
		app.catalog, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}

	client, err := app.salesClient()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.AggregatorOptions(
		salesapi.NewAnalyticsRepository(client, cfg.RetryPolicy()),
		salesapi.NewPredictionRepository(client, cfg.RetryPolicy()),
		telemetry,
	)
	if err != nil {
		return nil, err
	}
	if app.aggregator, err = sales.NewAggregator(opts); err != nil {
		return nil, err
	}

	cache, err := app.chartCache(ctx, telemetry)
	if err != nil {
		return nil, err
	}
	app.chart = dashboard.NewEChartsProvider("line", dashboard.WithChartCache(cache))
	app.broadcast = dashboard.NewBroadcastHook()
	app.service, err = dashboard.NewService(dashboard.Options{
		Fetcher:     app.aggregator,
		RefreshHook: app.broadcast,
		Telemetry:   telemetry,
		Chart:       app.chart,
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (a *application) salesClient() (salesapi.Client, error) {
	if a.cfg.SalesMock {
		a.logger.Info("using demo sales data")
		return salesapi.NewMockClient(demoData(a.catalog, sales.DefaultCutover)), nil
	}
	metrics, err := salesapi.NewTransportMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register backend metrics: %w", err)
	}
	httpCfg := a.cfg.HTTPConfig()
	httpCfg.HTTPClient = &http.Client{
		Timeout:   a.cfg.SalesAPITimeout,
		Transport: &salesapi.InstrumentedTransport{Metrics: metrics},
	}
	return salesapi.NewHTTPClient(httpCfg)
}

func (a *application) chartCache(ctx context.Context, telemetry sales.Telemetry) (dashboard.RenderCache, error) {
	if a.cfg.RedisAddr == "" {
		return dashboard.NewChartCache(a.cfg.ChartCacheTTL), nil
	}
	client, err := dashboard.NewRedisClient(ctx, a.cfg.RedisAddr)
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory chart cache", slog.Any("error", err))
		return dashboard.NewChartCache(a.cfg.ChartCacheTTL), nil
	}
	a.closers = append(a.closers, client.Close)
	return dashboard.NewRedisChartCache(client, a.cfg.ChartCacheTTL, dashboard.WithRedisTelemetry(telemetry)), nil
}

func (a *application) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("close", slog.Any("error", err))
		}
	}
}
