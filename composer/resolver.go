package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GetStream/stream-chat-core/chat"
)

var errEmptyURL = errors.New("empty url")

// Resolver turns media handles into attachments.
type Resolver struct {
	Logger *slog.Logger
}

// Resolve resolves every handle concurrently and returns once all of them
// have settled. Handles that fail to resolve are dropped. The result keeps
// the input order.
func (r *Resolver) Resolve(ctx context.Context, handles []MediaHandle) []chat.Attachment {
	slots := make([]*chat.Attachment, len(handles))

	var wg sync.WaitGroup
	for i, h := range handles {
		if h == nil {
			continue
		}
		wg.Add(1)
		go func(i int, h MediaHandle) {
			defer wg.Done()
			a, err := resolve(ctx, h)
			if err != nil {
				r.logger().Warn("Dropping attachment", "id", h.ID(), "type", h.Type().String(), "error", err.Error())
				return
			}
			slots[i] = &a
		}(i, h)
	}
	wg.Wait()

	out := make([]chat.Attachment, 0, len(handles))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func resolve(ctx context.Context, h MediaHandle) (chat.Attachment, error) {
	thumb, err := h.ResolveThumbnailURL(ctx)
	if err == nil && thumb == "" {
		err = errEmptyURL
	}
	if err != nil {
		return chat.Attachment{}, fmt.Errorf("resolve thumbnail: %w", err)
	}

	a := chat.Attachment{
		ID:           h.ID(),
		ThumbnailURL: thumb,
		FullURL:      thumb,
		Type:         h.Type(),
	}
	if a.Type != chat.AttachmentVideo {
		return a, nil
	}

	full, err := h.ResolveFullURL(ctx)
	if err == nil && full == "" {
		err = errEmptyURL
	}
	if err != nil {
		return chat.Attachment{}, fmt.Errorf("resolve full asset: %w", err)
	}
	a.FullURL = full
	return a, nil
}
