// Package feed holds the canonical message list of a conversation on the
// application side: it receives drafts from the composer, pages in older
// history for the pagination gate and sections the list for rendering.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/GetStream/stream-chat-core/timeline"
	"github.com/google/uuid"
)

// A Source provides older history. Messages are returned newest first, as
// they come out of the database. An empty before lists the latest messages.
type Source interface {
	ListMessages(ctx context.Context, limit int, before string, excludeMsgIDs ...string) ([]chat.Message, error)
}

// Feed is a message list ordered oldest first.
type Feed struct {
	Logger   *slog.Logger
	Source   Source
	Timeline timeline.Timeline
	// OnChange receives the recomputed sections after every change.
	OnChange func([]timeline.Section)

	mu   sync.Mutex
	msgs []chat.Message
}

// Messages returns a copy of the list.
func (f *Feed) Messages() []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.msgs)
}

// Sections returns the list grouped for rendering.
func (f *Feed) Sections() []timeline.Section {
	return f.Timeline.Compute(f.Messages())
}

func (f *Feed) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

func (f *Feed) commit(fn func()) {
	f.mu.Lock()
	fn()
	msgs := slices.Clone(f.msgs)
	f.mu.Unlock()

	if f.OnChange != nil {
		f.OnChange(f.Timeline.Compute(msgs))
	}
}

// Append adds msg as the newest message.
func (f *Feed) Append(msg chat.Message) {
	f.commit(func() {
		f.msgs = append(f.msgs, msg)
	})
}

// Prepend adds older messages, given oldest first, before the current list.
// Messages already present are skipped.
func (f *Feed) Prepend(older []chat.Message) {
	f.commit(func() {
		seen := make(map[string]bool, len(f.msgs))
		for _, m := range f.msgs {
			seen[m.ID] = true
		}
		fresh := make([]chat.Message, 0, len(older))
		for _, m := range older {
			if !seen[m.ID] {
				seen[m.ID] = true
				fresh = append(fresh, m)
			}
		}
		f.msgs = append(fresh, f.msgs...)
	})
}

// Replace swaps in msg for the message with the same ID.
func (f *Feed) Replace(msg chat.Message) bool {
	var ok bool
	f.commit(func() {
		f.msgs, ok = chat.ReplaceByID(f.msgs, msg)
	})
	return ok
}

// Remove deletes the message with the given ID.
func (f *Feed) Remove(id string) bool {
	var ok bool
	f.commit(func() {
		n := len(f.msgs)
		f.msgs = slices.DeleteFunc(f.msgs, func(m chat.Message) bool { return m.ID == id })
		ok = len(f.msgs) != n
	})
	return ok
}

// Receive returns a DidSendMessage handler that appends drafts from sender
// as messages in sending status. A draft carrying an ID replaces the failed
// message it re-sends.
func (f *Feed) Receive(sender chat.UserRef) func(chat.DraftMessage) {
	return func(d chat.DraftMessage) {
		msg := chat.Message{
			ID:          d.ID,
			Sender:      sender,
			Status:      chat.StatusSending,
			CreatedAt:   d.CreatedAt,
			Text:        d.Text,
			Attachments: d.Attachments,
			Recording:   d.Recording,
			ReplyTo:     d.ReplyTo,
		}
		if msg.ID != "" && f.Replace(msg) {
			return
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		f.Append(msg)
	}
}

// LoadOlder fetches up to limit messages older than before from the source
// and prepends them. It matches pagination.Gate.LoadOlderPage.
func (f *Feed) LoadOlder(ctx context.Context, before chat.Message, limit int) error {
	if f.Source == nil {
		return nil
	}
	older, err := f.Source.ListMessages(ctx, limit, before.ID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	slices.Reverse(older)
	f.Prepend(older)
	f.logger().Info("Prepended older messages", "count", len(older), "before", before.ID)
	return nil
}
