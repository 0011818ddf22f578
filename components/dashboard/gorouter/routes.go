package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
)

// filterKeys are the query-string parameters read by the page and table routes.
var filterKeys = []string{
	"seller_id", "product_id", "category", "top_n",
	"start_date", "end_date", "time_range", "theme",
	"page", "page_size",
}

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the sales dashboard controller, queries and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	Sales          gocommand.Querier[sales.Query, sales.Result]
	Widgets        gocommand.Querier[queries.WidgetInput, dashboard.WidgetData]
	Refresh        gocommand.Commander[commands.RefreshSalesInput]
	Broadcast      *dashboard.BroadcastHook
	Catalog        *catalog.Catalog
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Query     string
	Table     string
	Refresh   string
	Catalog   string
	WebSocket string
}

// Register mounts the sales routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/sales"
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}
	h := handlers{
		controller: cfg.Controller,
		sales:      cfg.Sales,
		widgets:    cfg.Widgets,
		refresh:    cfg.Refresh,
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		return h.page(ctx.Context(), resolver(ctx), queryValues(ctx)).write(ctx)
	}))

	if cfg.Catalog != nil {
		group.Get(routes.Catalog, router.WrapHandler(func(ctx router.Context) error {
			return ctx.JSON(http.StatusOK, cfg.Catalog)
		}))
	}

	if cfg.Sales != nil {
		group.Post(routes.Query, router.WrapHandler(func(ctx router.Context) error {
			return h.query(ctx.Context(), ctx.Body()).write(ctx)
		}))
	}

	if cfg.Widgets != nil {
		group.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
			return h.table(ctx.Context(), resolver(ctx), queryValues(ctx)).write(ctx)
		}))
	}

	if cfg.Refresh != nil {
		group.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
			return h.refreshSales(ctx.Context(), resolver(ctx), ctx.Body()).write(ctx)
		}))
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, resolver, routes.WebSocket)
	}
	return nil
}

// response is what a route handler produces: an HTML page or a JSON body.
type response struct {
	status int
	body   any
	html   []byte
}

func errorResponse(status int, err error) response {
	return response{status: status, body: map[string]string{"error": err.Error()}}
}

func (r response) write(ctx router.Context) error {
	if r.html != nil {
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(r.html)
	}
	return ctx.JSON(r.status, r.body)
}

// handlers holds the route logic behind the go-router closures.
type handlers struct {
	controller *dashboard.Controller
	sales      gocommand.Querier[sales.Query, sales.Result]
	widgets    gocommand.Querier[queries.WidgetInput, dashboard.WidgetData]
	refresh    gocommand.Commander[commands.RefreshSalesInput]
}

func (h handlers) page(ctx context.Context, viewer dashboard.ViewerContext, values url.Values) response {
	filter, err := dashboard.FilterFromValues(values)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	var buf bytes.Buffer
	if err := h.controller.RenderPage(ctx, viewer, filter, &buf); err != nil {
		return errorResponse(httpapi.StatusCode(err), err)
	}
	return response{status: http.StatusOK, html: buf.Bytes()}
}

// query answers 206 when isolated prediction failures left a partial result.
func (h handlers) query(ctx context.Context, body []byte) response {
	var query sales.Query
	if err := json.Unmarshal(body, &query); err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	result, err := h.sales.Query(ctx, query)
	status := http.StatusOK
	var partial *sales.PartialError
	if errors.As(err, &partial) {
		status = http.StatusPartialContent
	} else if err != nil {
		return errorResponse(httpapi.StatusCode(err), err)
	}
	resp := httpapi.QueryResponse{Points: result.Points}
	if resp.Points == nil {
		resp.Points = []sales.SalesPoint{}
	}
	for _, f := range result.Failures {
		resp.Failed = append(resp.Failed, f.ProductID)
	}
	return response{status: status, body: resp}
}

func (h handlers) table(ctx context.Context, viewer dashboard.ViewerContext, values url.Values) response {
	filter, err := dashboard.FilterFromValues(values)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	data, err := h.widgets.Query(ctx, queries.WidgetInput{
		Viewer: viewer,
		Instance: dashboard.WidgetInstance{
			ID:            "sales-table",
			DefinitionID:  dashboard.SalesTableWidget,
			Configuration: filter,
		},
	})
	if err != nil {
		return errorResponse(httpapi.StatusCode(err), err)
	}
	return response{status: http.StatusOK, body: data}
}

func (h handlers) refreshSales(ctx context.Context, viewer dashboard.ViewerContext, body []byte) response {
	var payload commands.RefreshSalesInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	if err := h.refresh.Execute(ctx, payload); err != nil {
		return errorResponse(httpapi.StatusCode(err), err)
	}
	return response{status: http.StatusAccepted, body: map[string]string{"status": "refreshed"}}
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, resolver ViewerResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		updates, cancel := hook.Subscribe(resolver(ws).UserID)
		defer cancel()
		err := streamUpdates(ws.Context(), updates, ws.WriteJSON)
		if ws.Context().Err() != nil {
			return ws.Close()
		}
		return err
	})
}

// streamUpdates writes updates until the channel closes, ctx is done or a
// write fails.
func streamUpdates(ctx context.Context, updates <-chan dashboard.SalesUpdate, write func(any) error) error {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := write(update); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func queryValues(ctx router.Context) url.Values {
	values := url.Values{}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(ctx.Query(key)); v != "" {
			values.Set(key, v)
		}
	}
	return values
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	return resolveViewer(ctx.Locals("user_id"), ctx.Header("X-User-ID"), ctx.Query("viewer"), ctx.Header("Accept-Language"))
}

// resolveViewer prefers the authenticated user local, then the X-User-ID
// header, then the "viewer" query parameter.
func resolveViewer(local any, header, query, locale string) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{Locale: locale}
	if v, ok := local.(string); ok {
		viewer.UserID = strings.TrimSpace(v)
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(header)
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(query)
	}
	if viewer.UserID == "" {
		viewer.UserID = "anonymous"
	}
	return viewer
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Query == "" {
		routes.Query = "/api/query"
	}
	if routes.Table == "" {
		routes.Table = "/api/table"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/api/refresh"
	}
	if routes.Catalog == "" {
		routes.Catalog = "/api/catalog"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
