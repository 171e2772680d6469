// Package pagination triggers loads of older history as the leading edge of
// the timeline becomes visible.
package pagination

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GetStream/stream-chat-core/chat"
)

// DefaultPageSize is used when Gate.PageSize is not set.
const DefaultPageSize = 20

// Gate calls LoadOlderPage when a message near the start of the list
// becomes visible. At most one load is in flight at a time; visibility
// events arriving during a load are ignored.
type Gate struct {
	// Offset is how many messages past the oldest one still trigger a load.
	Offset   int
	PageSize int
	// LoadOlderPage loads up to limit messages older than before. Its error
	// only returns the gate to idle; the next visibility event may retry.
	LoadOlderPage func(ctx context.Context, before chat.Message, limit int) error
	Logger        *slog.Logger

	mu      sync.Mutex
	loading bool
}

// Loading reports whether a page load is in flight.
func (g *Gate) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// Visible handles m becoming visible in msgs, which is ordered oldest
// first. It reports whether a load was started. The load itself runs on its
// own goroutine.
func (g *Gate) Visible(ctx context.Context, m chat.Message, msgs []chat.Message) bool {
	if g.LoadOlderPage == nil || !inWindow(m.ID, msgs, g.Offset) {
		return false
	}

	g.mu.Lock()
	if g.loading {
		g.mu.Unlock()
		return false
	}
	g.loading = true
	g.mu.Unlock()

	limit := g.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	go g.load(ctx, m, limit)
	return true
}

func (g *Gate) load(ctx context.Context, m chat.Message, limit int) {
	defer func() {
		g.mu.Lock()
		g.loading = false
		g.mu.Unlock()
	}()

	if err := g.LoadOlderPage(ctx, m, limit); err != nil {
		g.logger().Error("Could not load older messages", "before", m.ID, "error", err.Error())
		return
	}
	g.logger().Debug("Loaded older messages", "before", m.ID, "limit", limit)
}

func (g *Gate) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func inWindow(id string, msgs []chat.Message, offset int) bool {
	if offset < 0 {
		offset = 0
	}
	for i, m := range msgs {
		if i > offset {
			return false
		}
		if m.ID == id {
			return true
		}
	}
	return false
}
