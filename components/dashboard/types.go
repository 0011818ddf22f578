package dashboard

import (
	"context"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// ViewerContext identifies the dashboard viewer. Each viewer owns one sales
// session, so a new filter from the same viewer supersedes the previous one.
type ViewerContext struct {
	UserID string
	Locale string
}

// WidgetDefinition describes a widget and the JSON schema its configuration
// must satisfy.
type WidgetDefinition struct {
	Code        string
	Name        string
	Description string
	Schema      map[string]any
	Category    string
}

// WidgetInstance is one configured widget on the page.
type WidgetInstance struct {
	ID            string
	DefinitionID  string
	Configuration map[string]any
}

// SalesUpdate is broadcast whenever a viewer's session produces a new result.
type SalesUpdate struct {
	ViewerID   string             `json:"viewerId"`
	Generation uint64             `json:"generation"`
	Query      sales.Query        `json:"query"`
	Points     []sales.SalesPoint `json:"points"`
	Failed     []string           `json:"failedProducts,omitempty"`
}

// RefreshHook notifies transports (SSE/WebSocket) about new sales results.
type RefreshHook interface {
	SalesUpdated(ctx context.Context, update SalesUpdate) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) SalesUpdated(context.Context, SalesUpdate) error { return nil }
