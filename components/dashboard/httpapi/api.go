package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
)

const maxBodyBytes = 1 << 20

// ViewerResolver extracts the dashboard viewer from a request.
type ViewerResolver func(*http.Request) dashboard.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Sales      gocommand.Querier[sales.Query, sales.Result]
	Widgets    gocommand.Querier[queries.WidgetInput, dashboard.WidgetData]
	Refresh    gocommand.Commander[commands.RefreshSalesInput]
	Controller *dashboard.Controller
	Broadcast  *dashboard.BroadcastHook
	Catalog    *catalog.Catalog
	Viewer     ViewerResolver
}

// QueryResponse is the body of a sales query answer.
type QueryResponse struct {
	Points []sales.SalesPoint `json:"points"`
	Failed []string           `json:"failedProducts,omitempty"`
}

// Routes mounts the handlers on a ServeMux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sales", h.HandleQuery)
	mux.HandleFunc("GET /api/sales/table", h.HandleTable)
	mux.HandleFunc("POST /api/sales/refresh", h.HandleRefresh)
	mux.HandleFunc("GET /api/catalog", h.HandleCatalog)
	if h.Broadcast != nil {
		mux.HandleFunc("GET /api/sales/events", h.Broadcast.ServeSSE)
		mux.HandleFunc("GET /api/sales/ws", h.Broadcast.ServeWebSocket)
	}
	if h.Controller != nil {
		mux.HandleFunc("GET /sales/dashboard", h.HandlePage)
	}
}

// HandleQuery answers POST /api/sales. Isolated prediction failures are
// reported with 206 Partial Content.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var query sales.Query
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.Sales.Query(r.Context(), query)
	status := http.StatusOK
	var partial *sales.PartialError
	if errors.As(err, &partial) {
		status = http.StatusPartialContent
	} else if err != nil {
		writeError(w, StatusCode(err), err)
		return
	}
	writeJSON(w, status, newQueryResponse(result))
}

// HandleTable answers GET /api/sales/table with one page of the data table.
func (h *Handlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	cfg, err := dashboard.FilterFromValues(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := h.Widgets.Query(r.Context(), queries.WidgetInput{
		Viewer: h.viewer(r),
		Instance: dashboard.WidgetInstance{
			ID:            "sales-table",
			DefinitionID:  dashboard.SalesTableWidget,
			Configuration: cfg,
		},
	})
	if err != nil {
		writeError(w, StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// HandleRefresh starts a new generation of the viewer's sales view. The
// result reaches the page through the event stream.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshSalesInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		writeError(w, StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

// HandleCatalog answers GET /api/catalog.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeError(w, http.StatusNotFound, errors.New("catalog not configured"))
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog)
}

// HandlePage renders the HTML dashboard for the filter in the query string.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	filter, err := dashboard.FilterFromValues(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := h.Controller.RenderPage(r.Context(), h.viewer(r), filter, &buf); err != nil {
		http.Error(w, err.Error(), StatusCode(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return DefaultViewer(r)
}

// DefaultViewer reads the viewer id from the X-User-ID header or the
// "viewer" query parameter.
func DefaultViewer(r *http.Request) dashboard.ViewerContext {
	return dashboard.ViewerContext{UserID: dashboard.RequestViewerID(r), Locale: r.Header.Get("Accept-Language")}
}

// StatusCode maps aggregator and dashboard errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, sales.ErrInvalidQuery),
		errors.Is(err, dashboard.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownWidget):
		return http.StatusNotFound
	case errors.Is(err, sales.ErrStale):
		return http.StatusConflict
	case errors.Is(err, sales.ErrTransport),
		errors.Is(err, sales.ErrRemote),
		errors.Is(err, sales.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newQueryResponse(result sales.Result) QueryResponse {
	resp := QueryResponse{Points: result.Points}
	if resp.Points == nil {
		resp.Points = []sales.SalesPoint{}
	}
	for _, f := range result.Failures {
		resp.Failed = append(resp.Failed, f.ProductID)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
