package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
)

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

func newMux(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	h.Routes(mux)
	return mux
}

func TestHandleQuery(t *testing.T) {
	stub := &stubSales{result: sales.Result{Points: []sales.SalesPoint{
		{Date: sales.DayFromParts(2025, 5, 24), Quantity: 5, Kind: sales.KindHistorical, ProductID: "P1"},
	}}}
	mux := newMux(&Handlers{Sales: stub})

	body := `{"sellerId":"S1","productId":"P1","startDate":[2025,5,1],"endDate":"2025-05-31"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sales.DayFromParts(2025, 5, 1), stub.query.StartDate)
	assert.Equal(t, sales.DayFromParts(2025, 5, 31), stub.query.EndDate)
	assert.JSONEq(t, `{"points":[{"date":"2025/05/24","quantity":5,"type":"historical","productId":"P1"}]}`, rec.Body.String())
}

func TestHandleQueryStatusCodes(t *testing.T) {
	partial := &sales.PartialError{Failures: []sales.PredictionFailure{{ProductID: "P2", Err: sales.ErrTransport}}}
	cases := []struct {
		name   string
		stub   *stubSales
		body   string
		status int
	}{
		{"partial", &stubSales{result: sales.Result{Failures: partial.Failures}, err: partial}, `{"sellerId":"S1","topN":2}`, http.StatusPartialContent},
		{"invalid", &stubSales{err: sales.ErrInvalidQuery}, `{"sellerId":""}`, http.StatusBadRequest},
		{"bad json", &stubSales{}, `{`, http.StatusBadRequest},
		{"backend", &stubSales{err: sales.ErrTransport}, `{"sellerId":"S1"}`, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(&Handlers{Sales: tc.stub}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	newMux(&Handlers{Sales: &stubSales{err: partial}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(`{"sellerId":"S1","topN":2}`)))
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Points)
}

func TestHandleTable(t *testing.T) {
	widgets := &stubWidgets{}
	mux := newMux(&Handlers{Widgets: widgets})

	req := httptest.NewRequest(http.MethodGet, "/api/sales/table?seller_id=S1&page=2", nil)
	req.Header.Set("X-User-ID", "u9")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u9", widgets.input.Viewer.UserID)
	assert.Equal(t, dashboard.SalesTableWidget, widgets.input.Instance.DefinitionID)
	assert.Equal(t, 2, widgets.input.Instance.Configuration["page"])

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales/table?top_n=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newMux(&Handlers{Widgets: &stubWidgets{err: dashboard.ErrInvalidConfig}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales/table", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRefresh(t *testing.T) {
	refresh := &stubRefresh{}
	mux := newMux(&Handlers{Refresh: refresh})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales/refresh?viewer=u3", strings.NewReader(`{"query":{"sellerId":"S1"}}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "u3", refresh.input.Viewer.UserID)
	assert.Equal(t, "S1", refresh.input.Query.SellerID)
}

func TestHandleCatalog(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&Handlers{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	newMux(&Handlers{Catalog: &catalog.Catalog{Sellers: []string{"S1"}}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sellers":["S1"]`)
}

func TestDefaultViewer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "anonymous", DefaultViewer(req).UserID)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusNotFound, StatusCode(dashboard.ErrUnknownWidget))
	assert.Equal(t, http.StatusConflict, StatusCode(sales.ErrStale))
	assert.Equal(t, http.StatusBadGateway, StatusCode(sales.ErrMalformedResponse))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
