package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// BroadcastHook fans out sales updates to in-process subscribers. Each
// subscriber receives only the updates of its own viewer. Slow subscribers
// drop updates rather than block the refresh.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]subscription
	next   int
	viewer func(*http.Request) string
}

type subscription struct {
	viewer string
	ch     chan SalesUpdate
}

// BroadcastOption customizes a BroadcastHook.
type BroadcastOption func(*BroadcastHook)

// WithRequestViewer sets how SSE and WebSocket requests are mapped to a
// viewer id. Defaults to RequestViewerID.
func WithRequestViewer(fn func(*http.Request) string) BroadcastOption {
	return func(h *BroadcastHook) {
		if fn != nil {
			h.viewer = fn
		}
	}
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook(opts ...BroadcastOption) *BroadcastHook {
	h := &BroadcastHook{subs: make(map[int]subscription), viewer: RequestViewerID}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RequestViewerID reads the viewer id from the X-User-ID header or the
// "viewer" query parameter, falling back to "anonymous".
func RequestViewerID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("viewer"))
	}
	if id == "" {
		id = "anonymous"
	}
	return id
}

// SalesUpdated satisfies the RefreshHook interface and delivers the update to
// the subscribers of update.ViewerID.
func (h *BroadcastHook) SalesUpdated(_ context.Context, update SalesUpdate) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.viewer != update.ViewerID {
			continue
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of the viewer's updates and a cancel func.
func (h *BroadcastHook) Subscribe(viewerID string) (<-chan SalesUpdate, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan SalesUpdate, subscriberBuffer)
	h.subs[id] = subscription{viewer: viewerID, ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams updates as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, cancel := h.Subscribe(h.viewer(r))
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams updates as Server-Sent Events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, cancel := h.Subscribe(h.viewer(r))
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				return
			}
			if err := writeEvent(w, "sales", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: ", event); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n\n")
	return err
}
