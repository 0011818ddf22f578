package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// RefreshSalesInput asks for a new generation of the viewer's sales view.
type RefreshSalesInput struct {
	Viewer dashboard.ViewerContext `json:"-"`
	Query  sales.Query             `json:"query"`
}

type refresher interface {
	Refresh(ctx context.Context, viewer dashboard.ViewerContext, query sales.Query) (sales.Result, error)
}

// RefreshSalesCommand runs the viewer's query and lets the service broadcast
// the result to SSE/WebSocket subscribers.
type RefreshSalesCommand struct {
	service   refresher
	telemetry Telemetry
}

// NewRefreshSalesCommand creates the command.
func NewRefreshSalesCommand(service refresher, telemetry Telemetry) *RefreshSalesCommand {
	return &RefreshSalesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshSalesInput] = (*RefreshSalesCommand)(nil)

// Execute refreshes the view. A refresh superseded by a newer one and a
// refresh with isolated prediction failures both succeed; subscribers see
// the failures in the broadcast update.
func (c *RefreshSalesCommand) Execute(ctx context.Context, msg RefreshSalesInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	result, err := c.service.Refresh(ctx, msg.Viewer, msg.Query)
	var partial *sales.PartialError
	switch {
	case errors.Is(err, sales.ErrStale):
		c.telemetry.Record(ctx, "dashboard.sales.refresh_superseded", map[string]any{"viewer": msg.Viewer.UserID})
		return nil
	case errors.As(err, &partial):
		c.telemetry.Record(ctx, "dashboard.sales.refresh", map[string]any{
			"viewer":     msg.Viewer.UserID,
			"generation": result.Generation,
			"failures":   len(partial.Failures),
		})
		return nil
	case err != nil:
		return err
	}
	c.telemetry.Record(ctx, "dashboard.sales.refresh", map[string]any{
		"viewer":     msg.Viewer.UserID,
		"generation": result.Generation,
	})
	return nil
}
