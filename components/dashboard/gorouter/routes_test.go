package gorouter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-sales-dashboard/components/sales"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestQueryRoute(t *testing.T) {
	points := []sales.SalesPoint{{Date: sales.DayFromParts(2025, 5, 24), Quantity: 5, Kind: sales.KindHistorical, ProductID: "P1"}}
	stub := &stubSales{result: sales.Result{Points: points}}

	resp := handlers{sales: stub}.query(context.Background(), []byte(`{"sellerId":"S1","productId":"P1","startDate":"2025-05-01","endDate":[2025,5,31]}`))

	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, sales.DayFromParts(2025, 5, 31), stub.query.EndDate)
	body, ok := resp.body.(httpapi.QueryResponse)
	require.True(t, ok)
	assert.Equal(t, points, body.Points)
	assert.Empty(t, body.Failed)
}

func TestQueryRouteStatusCodes(t *testing.T) {
	partial := &sales.PartialError{Failures: []sales.PredictionFailure{{ProductID: "P2", Err: sales.ErrTransport}}}
	cases := []struct {
		name   string
		stub   *stubSales
		body   string
		status int
	}{
		{"ok", &stubSales{}, `{"sellerId":"S1","productId":"P1"}`, http.StatusOK},
		{"partial", &stubSales{result: sales.Result{Failures: partial.Failures}, err: partial}, `{"sellerId":"S1","topN":2}`, http.StatusPartialContent},
		{"malformed body", &stubSales{}, `{`, http.StatusBadRequest},
		{"invalid query", &stubSales{err: sales.ErrInvalidQuery}, `{}`, http.StatusBadRequest},
		{"backend", &stubSales{err: sales.ErrTransport}, `{"sellerId":"S1","productId":"P1"}`, http.StatusBadGateway},
		{"unexpected", &stubSales{err: errors.New("boom")}, `{"sellerId":"S1","productId":"P1"}`, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := handlers{sales: tc.stub}.query(context.Background(), []byte(tc.body))
			assert.Equal(t, tc.status, resp.status)
		})
	}
}

func TestQueryRoutePartialListsFailedProducts(t *testing.T) {
	partial := &sales.PartialError{Failures: []sales.PredictionFailure{{ProductID: "P2", Err: sales.ErrTransport}}}
	stub := &stubSales{result: sales.Result{Failures: partial.Failures}, err: partial}

	resp := handlers{sales: stub}.query(context.Background(), []byte(`{"sellerId":"S1","topN":2}`))

	require.Equal(t, http.StatusPartialContent, resp.status)
	body := resp.body.(httpapi.QueryResponse)
	assert.Equal(t, []string{"P2"}, body.Failed)
	assert.NotNil(t, body.Points)
}

func TestQueryRouteErrorBody(t *testing.T) {
	resp := handlers{sales: &stubSales{err: sales.ErrTransport}}.query(context.Background(), []byte(`{"sellerId":"S1","productId":"P1"}`))
	assert.Equal(t, map[string]string{"error": "sales: transport failure"}, resp.body)
}

func TestTableRoute(t *testing.T) {
	widgets := &stubWidgets{}
	viewer := dashboard.ViewerContext{UserID: "u1"}
	values := url.Values{"seller_id": {"S1"}, "product_id": {"P1"}, "page": {"2"}}

	resp := handlers{widgets: widgets}.table(context.Background(), viewer, values)

	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, dashboard.WidgetData{"total": 1}, resp.body)
	assert.Equal(t, viewer, widgets.input.Viewer)
	assert.Equal(t, dashboard.SalesTableWidget, widgets.input.Instance.DefinitionID)
	assert.Equal(t, "S1", widgets.input.Instance.Configuration["seller_id"])

	failing := handlers{widgets: &stubWidgets{err: dashboard.ErrInvalidConfig}}
	assert.Equal(t, http.StatusBadRequest, failing.table(context.Background(), viewer, values).status)
	failing = handlers{widgets: &stubWidgets{err: sales.ErrRemote}}
	assert.Equal(t, http.StatusBadGateway, failing.table(context.Background(), viewer, values).status)
}

func TestRefreshRoute(t *testing.T) {
	refresh := &stubRefresh{}
	viewer := dashboard.ViewerContext{UserID: "u1"}

	resp := handlers{refresh: refresh}.refreshSales(context.Background(), viewer, []byte(`{"query":{"sellerId":"S1","productId":"P1"}}`))
	require.Equal(t, http.StatusAccepted, resp.status)
	assert.Equal(t, viewer, refresh.input.Viewer)

	stale := handlers{refresh: &stubRefresh{err: sales.ErrStale}}
	assert.Equal(t, http.StatusConflict, stale.refreshSales(context.Background(), viewer, []byte(`{}`)).status)
	assert.Equal(t, http.StatusBadRequest, stale.refreshSales(context.Background(), viewer, []byte(`[`)).status)
}

func TestPageRoute(t *testing.T) {
	renderer := &stubRenderer{}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  &stubWidgetRenderer{},
		Renderer: renderer,
	})

	resp := handlers{controller: controller}.page(context.Background(), dashboard.ViewerContext{UserID: "u1"}, url.Values{"seller_id": {"S1"}})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "ok", string(resp.html))
	assert.Equal(t, 1, renderer.calls)

	invalid := dashboard.NewController(dashboard.ControllerOptions{
		Service:  &stubWidgetRenderer{err: dashboard.ErrInvalidConfig},
		Renderer: renderer,
	})
	resp = handlers{controller: invalid}.page(context.Background(), dashboard.ViewerContext{UserID: "u1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Nil(t, resp.html)
}

func TestStreamUpdates(t *testing.T) {
	updates := make(chan dashboard.SalesUpdate, 2)
	updates <- dashboard.SalesUpdate{ViewerID: "u1", Generation: 1}
	updates <- dashboard.SalesUpdate{ViewerID: "u1", Generation: 2}
	close(updates)

	var written []any
	err := streamUpdates(context.Background(), updates, func(v any) error {
		written = append(written, v)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, written, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = streamUpdates(ctx, make(chan dashboard.SalesUpdate), func(any) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	broken := make(chan dashboard.SalesUpdate, 1)
	broken <- dashboard.SalesUpdate{}
	err = streamUpdates(context.Background(), broken, func(any) error { return io.ErrClosedPipe })
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestResolveViewer(t *testing.T) {
	assert.Equal(t, "local", resolveViewer("local", "header", "query", "en").UserID)
	assert.Equal(t, "header", resolveViewer(nil, " header ", "query", "").UserID)
	assert.Equal(t, "query", resolveViewer(nil, "", "query", "").UserID)
	viewer := resolveViewer(42, "", "", "es")
	assert.Equal(t, "anonymous", viewer.UserID)
	assert.Equal(t, "es", viewer.Locale)
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Query: "/q"})
	assert.Equal(t, "/q", routes.Query)
	assert.Equal(t, "/dashboard", routes.HTML)
	assert.Equal(t, "/ws", routes.WebSocket)
}

// --- Test helpers ---

type stubSales struct {
	result sales.Result
	err    error
	query  sales.Query
}

func (s *stubSales) Query(_ context.Context, q sales.Query) (sales.Result, error) {
	s.query = q
	return s.result, s.err
}

type stubWidgets struct {
	input queries.WidgetInput
	err   error
}

func (s *stubWidgets) Query(_ context.Context, input queries.WidgetInput) (dashboard.WidgetData, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return dashboard.WidgetData{"total": 1}, nil
}

type stubRefresh struct {
	input commands.RefreshSalesInput
	err   error
}

func (s *stubRefresh) Execute(_ context.Context, input commands.RefreshSalesInput) error {
	s.input = input
	return s.err
}

type stubWidgetRenderer struct {
	err error
}

func (s *stubWidgetRenderer) RenderWidget(context.Context, dashboard.ViewerContext, dashboard.WidgetInstance) (dashboard.WidgetData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return dashboard.WidgetData{}, nil
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("ok"))
	}
	return "ok", nil
}
