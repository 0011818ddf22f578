package dashboard

import (
	"context"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// Telemetry records dashboard events for observability. It has the same
// shape as sales.Telemetry so one slog sink serves both packages.
type Telemetry = sales.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
