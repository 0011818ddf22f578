package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-sales-dashboard/components/dashboard"
)

// WidgetInput identifies a widget render request for a viewer.
type WidgetInput struct {
	Viewer   dashboard.ViewerContext
	Instance dashboard.WidgetInstance
}

type widgetService interface {
	RenderWidget(ctx context.Context, viewer dashboard.ViewerContext, instance dashboard.WidgetInstance) (dashboard.WidgetData, error)
}

// WidgetQuery renders a single widget.
type WidgetQuery struct {
	service widgetService
}

// NewWidgetQuery builds the query.
func NewWidgetQuery(service widgetService) *WidgetQuery {
	return &WidgetQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.WidgetData] = (*WidgetQuery)(nil)

// Query renders the widget for the viewer.
func (q *WidgetQuery) Query(ctx context.Context, input WidgetInput) (dashboard.WidgetData, error) {
	return q.service.RenderWidget(ctx, input.Viewer, input.Instance)
}
