// Package reactions builds the bounded reaction list shown under a message
// and creates the current user's optimistic reactions.
package reactions

import (
	"fmt"
	"slices"

	"github.com/GetStream/stream-chat-core/chat"
)

// DefaultMax is the display cap used when none is given.
const DefaultMax = 5

// An Item is one reaction shown individually.
type Item struct {
	Reaction      chat.Reaction `json:"reaction"`
	ByCurrentUser bool          `json:"by_current_user"`
}

// An Overflow collapses the reactions beyond the display cap.
type Overflow struct {
	Count               int    `json:"count"`
	Label               string `json:"label"`
	IncludesCurrentUser bool   `json:"includes_current_user"`
}

// A Display is what to render for a message's reactions.
type Display struct {
	Items    []Item    `json:"items"`
	Overflow *Overflow `json:"overflow,omitempty"`
}

// Aggregate returns the reactions of msg to display, at most max entries
// including the overflow marker. Reactions are ranked newest first; when
// they do not fit, the max-1 newest are kept and the rest are collapsed
// into the overflow. Reactions on the current user's messages are listed
// oldest to newest, on other messages newest to oldest.
func Aggregate(msg chat.Message, max int) Display {
	if max <= 0 {
		max = DefaultMax
	}

	sorted := slices.Clone(msg.Reactions)
	slices.SortStableFunc(sorted, func(a, b chat.Reaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	shown := sorted
	var overflow *Overflow
	if len(sorted) > max {
		rest := sorted[max-1:]
		shown = sorted[:max-1]
		overflow = &Overflow{
			Count: len(rest),
			Label: fmt.Sprintf("+%d", len(rest)),
			IncludesCurrentUser: slices.ContainsFunc(rest, func(r chat.Reaction) bool {
				return r.User.IsCurrentUser
			}),
		}
	}
	items := make([]Item, len(shown))
	for i, r := range shown {
		items[i] = Item{Reaction: r, ByCurrentUser: r.User.IsCurrentUser}
	}
	if msg.Sender.IsCurrentUser {
		slices.Reverse(items)
	}
	return Display{Items: items, Overflow: overflow}
}
