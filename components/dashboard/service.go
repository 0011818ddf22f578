package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

const (
	// DefaultSessionTTL is how long an idle viewer session is kept.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultMaxSessions bounds the number of viewer sessions held at once.
	DefaultMaxSessions = 10000
)

var (
	errMissingFetcher = errors.New("dashboard: sales fetcher not configured")
	errMissingViewer  = errors.New("dashboard: viewer context missing user id")

	// ErrUnknownWidget is returned for widget codes missing from the registry.
	ErrUnknownWidget = errors.New("dashboard: unknown widget")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Fetcher         sales.Fetcher
	Providers       *Registry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Chart           *EChartsProvider
	// SessionTTL expires viewer sessions idle for longer than the TTL.
	SessionTTL time.Duration
	// MaxSessions evicts the least recently used session beyond the bound.
	MaxSessions int
}

// Service renders sales widgets and tracks one sales session per viewer.
type Service struct {
	opts  Options
	group singleflight.Group

	mu       sync.Mutex
	sessions *expirable.LRU[string, *sales.Session]
}

// NewService builds a Service. Without a registry the sales widgets are
// registered against the service itself so identical queries are shared.
func NewService(opts Options) (*Service, error) {
	if opts.Fetcher == nil {
		return nil, errMissingFetcher
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	s := &Service{
		opts:     opts,
		sessions: expirable.NewLRU[string, *sales.Session](opts.MaxSessions, nil, opts.SessionTTL),
	}
	if s.opts.Providers == nil {
		s.opts.Providers = NewRegistry()
		if err := RegisterSalesWidgets(s.opts.Providers, s, opts.Chart); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var _ sales.Fetcher = (*Service)(nil)

// Fetch runs the query through the configured fetcher. Concurrent calls for
// the same query share one backend round trip. The shared call is detached
// from the caller's cancellation so a superseded caller cannot fail the
// callers still waiting on it; a cancelled caller returns immediately.
func (s *Service) Fetch(ctx context.Context, query sales.Query) (sales.Result, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(hashKey(query), func() (any, error) {
		return s.opts.Fetcher.Fetch(shared, query)
	})
	select {
	case <-ctx.Done():
		return sales.Result{}, ctx.Err()
	case res := <-ch:
		result, _ := res.Val.(sales.Result)
		if res.Shared {
			s.recordTelemetry(ctx, "dashboard.fetch.shared", map[string]any{"seller_id": query.SellerID})
		}
		return result, res.Err
	}
}

// RenderWidget validates the instance configuration against its definition
// schema and runs the widget provider.
func (s *Service) RenderWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) (WidgetData, error) {
	def, ok := s.opts.Providers.Definition(instance.DefinitionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, instance.DefinitionID)
	}
	provider, ok := s.opts.Providers.Provider(instance.DefinitionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no provider", ErrUnknownWidget, instance.DefinitionID)
	}
	if err := s.opts.ConfigValidator.Validate(def, instance.Configuration); err != nil {
		return nil, err
	}
	data, err := provider.Fetch(ctx, WidgetContext{Instance: instance, Viewer: viewer})
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
			"definition_id": instance.DefinitionID,
			"viewer":        viewer.UserID,
			"error":         err.Error(),
		})
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.render", map[string]any{
		"definition_id": instance.DefinitionID,
		"viewer":        viewer.UserID,
	})
	return data, nil
}

// Refresh runs the query as the viewer's newest generation and broadcasts
// the result. A fetch superseded by a newer Refresh returns sales.ErrStale
// and broadcasts nothing. Isolated prediction failures are broadcast with
// the partial result and returned as *sales.PartialError.
func (s *Service) Refresh(ctx context.Context, viewer ViewerContext, query sales.Query) (sales.Result, error) {
	if viewer.UserID == "" {
		return sales.Result{}, errMissingViewer
	}
	result, err := s.session(viewer.UserID).Fetch(ctx, query)
	if errors.Is(err, sales.ErrStale) {
		s.recordTelemetry(ctx, "dashboard.refresh.stale", map[string]any{"viewer": viewer.UserID})
		return sales.Result{}, err
	}
	failed, fatal := partialFailures(err)
	if fatal != nil {
		return sales.Result{}, fatal
	}
	update := SalesUpdate{
		ViewerID:   viewer.UserID,
		Generation: result.Generation,
		Query:      query,
		Points:     result.Points,
		Failed:     failed,
	}
	if hookErr := s.opts.RefreshHook.SalesUpdated(ctx, update); hookErr != nil {
		return sales.Result{}, hookErr
	}
	s.recordTelemetry(ctx, "dashboard.refresh", map[string]any{
		"viewer":     viewer.UserID,
		"generation": result.Generation,
		"points":     len(result.Points),
	})
	return result, err
}

// Latest returns the newest completed result of the viewer's session.
func (s *Service) Latest(viewer ViewerContext) (sales.Result, bool) {
	session, ok := s.sessions.Get(viewer.UserID)
	if !ok {
		return sales.Result{}, false
	}
	latest := session.Latest()
	return latest, latest.Generation > 0
}

// Definitions lists the registered widgets.
func (s *Service) Definitions() []WidgetDefinition {
	return s.opts.Providers.Definitions()
}

// Sessions reports how many viewer sessions are held.
func (s *Service) Sessions() int {
	return s.sessions.Len()
}

// session returns the viewer's session and restarts its idle TTL.
func (s *Service) session(viewerID string) *sales.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(viewerID)
	if !ok {
		session = sales.NewSession(s)
	}
	s.sessions.Add(viewerID, session)
	return session
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
