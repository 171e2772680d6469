package reactions

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/google/go-cmp/cmp"
)

var (
	me    = chat.UserRef{ID: "me", IsCurrentUser: true}
	other = chat.UserRef{ID: "other"}
	base  = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

// reactionsAt returns n reactions created one minute apart, in arrival
// order r0..r(n-1) with r(n-1) the newest.
func reactionsAt(n int, user func(i int) chat.UserRef) []chat.Reaction {
	out := make([]chat.Reaction, n)
	for i := range out {
		out[i] = chat.Reaction{
			ID:        fmt.Sprintf("r%d", i),
			User:      user(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Type:      chat.ReactionType{Emoji: "👍"},
		}
	}
	return out
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Reaction.ID
	}
	return out
}

func TestAggregate(t *testing.T) {
	byOther := func(int) chat.UserRef { return other }

	tests := []struct {
		name         string
		msg          chat.Message
		max          int
		wantIDs      []string
		wantOverflow *Overflow
	}{
		{
			name:    "Empty",
			msg:     chat.Message{Sender: other},
			wantIDs: []string{},
		},
		{
			name:    "FitsOtherSender",
			msg:     chat.Message{Sender: other, Reactions: reactionsAt(3, byOther)},
			wantIDs: []string{"r2", "r1", "r0"},
		},
		{
			name:    "FitsCurrentUserSender",
			msg:     chat.Message{Sender: me, Reactions: reactionsAt(3, byOther)},
			wantIDs: []string{"r0", "r1", "r2"},
		},
		{
			name:    "ExactlyMax",
			msg:     chat.Message{Sender: other, Reactions: reactionsAt(5, byOther)},
			max:     5,
			wantIDs: []string{"r4", "r3", "r2", "r1", "r0"},
		},
		{
			name:         "Overflow",
			msg:          chat.Message{Sender: other, Reactions: reactionsAt(8, byOther)},
			max:          5,
			wantIDs:      []string{"r7", "r6", "r5", "r4"},
			wantOverflow: &Overflow{Count: 4, Label: "+4"},
		},
		{
			name: "OverflowIncludesCurrentUser",
			msg: chat.Message{Sender: other, Reactions: reactionsAt(8, func(i int) chat.UserRef {
				if i == 1 {
					return me
				}
				return other
			})},
			max:          5,
			wantIDs:      []string{"r7", "r6", "r5", "r4"},
			wantOverflow: &Overflow{Count: 4, Label: "+4", IncludesCurrentUser: true},
		},
		{
			name:         "DefaultMax",
			msg:          chat.Message{Sender: me, Reactions: reactionsAt(7, byOther)},
			wantIDs:      []string{"r3", "r4", "r5", "r6"},
			wantOverflow: &Overflow{Count: 3, Label: "+3"},
		},
		{
			name:         "MaxOne",
			msg:          chat.Message{Sender: other, Reactions: reactionsAt(2, byOther)},
			max:          1,
			wantIDs:      []string{},
			wantOverflow: &Overflow{Count: 2, Label: "+2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.msg, tt.max)
			if diff := cmp.Diff(tt.wantIDs, ids(got.Items)); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOverflow, got.Overflow); diff != "" {
				t.Errorf("Overflow mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregate_ArrivalOrderIsNotChronological(t *testing.T) {
	msg := chat.Message{Sender: other, Reactions: []chat.Reaction{
		{ID: "late", CreatedAt: base.Add(time.Hour)},
		{ID: "early", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(time.Minute), User: me},
	}}
	got := Aggregate(msg, 5)
	if diff := cmp.Diff([]string{"late", "mid", "early"}, ids(got.Items)); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if !got.Items[1].ByCurrentUser {
		t.Error("Own reaction not flagged")
	}
	if len(msg.Reactions) != 3 || msg.Reactions[0].ID != "late" {
		t.Error("Source reactions were reordered")
	}
}

func TestReactor_React(t *testing.T) {
	var (
		reactedTo chat.Message
		draft     chat.Reaction
	)
	r := &Reactor{
		User: chat.UserRef{ID: "me", Name: "Me"},
		DidReact: func(m chat.Message, rc chat.Reaction) {
			reactedTo, draft = m, rc
		},
		Now: func() time.Time { return base },
	}
	msg := chat.Message{ID: "m1", Sender: other}

	updated, reaction := r.React(msg, "🎉")

	if reactedTo.ID != "m1" || draft.ID != reaction.ID {
		t.Errorf("DidReact got message %q reaction %q", reactedTo.ID, draft.ID)
	}
	if reaction.ID == "" {
		t.Error("Reaction has no id")
	}
	want := chat.Reaction{
		ID:        reaction.ID,
		User:      chat.UserRef{ID: "me", Name: "Me", IsCurrentUser: true},
		CreatedAt: base,
		Type:      chat.ReactionType{Emoji: "🎉"},
		Status:    chat.ReactionSending,
	}
	if diff := cmp.Diff([]chat.Reaction{want}, updated.Reactions); diff != "" {
		t.Errorf("Reactions mismatch (-want +got):\n%s", diff)
	}
	if len(msg.Reactions) != 0 {
		t.Error("Original message was mutated")
	}

	sent, ok := Confirm(updated, reaction.ID, nil)
	if !ok || sent.Reactions[0].Status != chat.ReactionSent {
		t.Errorf("Confirm(nil) gave status %v", sent.Reactions[0].Status)
	}
	failed, ok := Confirm(updated, reaction.ID, errors.New("rejected"))
	if !ok || failed.Reactions[0].Status != chat.ReactionError {
		t.Errorf("Confirm(err) gave status %v", failed.Reactions[0].Status)
	}
}
