package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/components/sales/catalog"
)

// DefaultPageTemplate is the template rendered by RenderPage.
const DefaultPageTemplate = "sales_dashboard"

// WidgetRenderer is the slice of Service the controller depends on.
type WidgetRenderer interface {
	RenderWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) (WidgetData, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  WidgetRenderer
	Renderer Renderer
	Template string
	Catalog  *catalog.Catalog
	// Defaults fill in filter fields the request leaves out.
	Defaults map[string]any
	// EventsURL and WebSocketURL tell the page where to listen for updates.
	EventsURL    string
	WebSocketURL string
}

// Controller renders the sales dashboard page.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultPageTemplate
	}
	return &Controller{opts: opts}
}

// DefaultFilter is the filter shown on first load: the first product of the
// first seller around the default cutover.
func DefaultFilter(c *catalog.Catalog) map[string]any {
	cfg := map[string]any{
		cfgStartDate: sales.DefaultCutover.AddDays(-14).String(),
		cfgEndDate:   sales.DefaultCutover.AddDays(17).String(),
	}
	if c != nil && len(c.Sellers) > 0 {
		cfg[cfgSellerID] = c.Sellers[0]
	}
	if c != nil && len(c.Products) > 0 {
		cfg[cfgProductID] = c.Products[0].ID
	}
	return cfg
}

// PagePayload renders the chart, table and totals widgets for the filter. Invalid
// filters are returned as errors; backend failures are reported in the
// payload under "error" so the page still renders.
func (c *Controller) PagePayload(ctx context.Context, viewer ViewerContext, filter map[string]any) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, errors.New("dashboard: controller service is required")
	}
	cfg := c.mergeDefaults(filter)
	payload := map[string]any{
		"filter":  cfg,
		"viewer":  viewer,
		"catalog": c.opts.Catalog,
		"live": map[string]string{
			"events_url":    c.opts.EventsURL,
			"websocket_url": c.opts.WebSocketURL,
		},
	}
	widgets := []struct {
		key, id, definition string
	}{
		{"chart", "sales-chart", SalesChartWidget},
		{"table", "sales-table", SalesTableWidget},
		{"totals", "sales-totals", SalesTotalsWidget},
	}
	data := make([]WidgetData, len(widgets))
	errs := make([]error, len(widgets))
	// Concurrent renders of the same filter share one fetch through the service.
	var g errgroup.Group
	for i, w := range widgets {
		g.Go(func() error {
			data[i], errs[i] = c.opts.Service.RenderWidget(ctx, viewer, WidgetInstance{
				ID:            w.id,
				DefinitionID:  w.definition,
				Configuration: cfg,
			})
			return nil
		})
	}
	_ = g.Wait()

	for i, w := range widgets {
		if err := errs[i]; err != nil {
			if isClientError(err) {
				return nil, err
			}
			if _, ok := payload["error"]; !ok {
				payload["error"] = err.Error()
			}
			continue
		}
		payload[w.key] = data[i]
	}
	return payload, nil
}

// RenderPage writes the full HTML page for the filter to out.
func (c *Controller) RenderPage(ctx context.Context, viewer ViewerContext, filter map[string]any, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller renderer is required")
	}
	payload, err := c.PagePayload(ctx, viewer, filter)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.opts.Template, err)
	}
	return nil
}

func (c *Controller) mergeDefaults(filter map[string]any) map[string]any {
	defaults := c.opts.Defaults
	if defaults == nil {
		defaults = DefaultFilter(c.opts.Catalog)
	}
	cfg := NormalizeConfig(defaults)
	requested := NormalizeConfig(filter)
	for k, v := range requested {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		cfg[k] = v
	}
	// A category chosen without a product replaces the default product.
	if stringValue(requested[cfgCategory], "") != "" && stringValue(requested[cfgProductID], "") == "" {
		delete(cfg, cfgProductID)
	}
	if stringValue(requested[cfgTimeRange], "") != "" {
		delete(cfg, cfgStartDate)
		delete(cfg, cfgEndDate)
	}
	return cfg
}

// isClientError reports errors caused by the request rather than the backend.
func isClientError(err error) bool {
	return errors.Is(err, sales.ErrInvalidQuery) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrUnknownWidget)
}
