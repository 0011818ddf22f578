package sales

import (
	"context"
	"log/slog"
)

// Telemetry records aggregator events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events through slog.
type LogTelemetry struct {
	logger *slog.Logger
}

// NewLogTelemetry builds a slog-backed Telemetry; nil uses slog.Default().
func NewLogTelemetry(logger *slog.Logger) *LogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTelemetry{logger: logger}
}

// Record logs the event with its payload as attributes. Payloads carrying an
// "error" key are logged at warn level.
func (t *LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	attrs := make([]slog.Attr, 0, len(payload))
	level := slog.LevelInfo
	for k, v := range payload {
		if k == "error" && v != nil {
			level = slog.LevelWarn
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	t.logger.LogAttrs(ctx, level, event, attrs...)
}
