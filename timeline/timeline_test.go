package timeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	user1 = chat.UserRef{ID: "user1"}
	user2 = chat.UserRef{ID: "user2"}
)

func msg(id string, u chat.UserRef, at time.Time) chat.Message {
	return chat.Message{ID: id, Sender: u, CreatedAt: at, Text: id}
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, time.UTC)
}

func positions(sections []Section) [][]Position {
	out := make([][]Position, len(sections))
	for i, s := range sections {
		for _, r := range s.Rows {
			out[i] = append(out[i], r.Position)
		}
	}
	return out
}

func TestTimeline_Compute(t *testing.T) {
	tests := []struct {
		name      string
		msgs      []chat.Message
		wantDates []time.Time
		want      [][]Position
	}{
		{
			name: "Empty",
		},
		{
			name: "SameDay",
			msgs: []chat.Message{
				msg("A", user1, at(1, 9, 0)),
				msg("B", user1, at(1, 9, 1)),
				msg("C", user2, at(1, 9, 2)),
			},
			wantDates: []time.Time{at(1, 0, 0)},
			want:      [][]Position{{PositionFirst, PositionLast, PositionSingle}},
		},
		{
			name: "Middle",
			msgs: []chat.Message{
				msg("A", user1, at(1, 9, 0)),
				msg("B", user1, at(1, 9, 1)),
				msg("C", user1, at(1, 9, 2)),
				msg("D", user2, at(1, 9, 3)),
				msg("E", user1, at(1, 9, 4)),
			},
			wantDates: []time.Time{at(1, 0, 0)},
			want:      [][]Position{{PositionFirst, PositionMiddle, PositionLast, PositionSingle, PositionSingle}},
		},
		{
			name: "RunsDoNotCrossSections",
			msgs: []chat.Message{
				msg("A", user1, at(1, 23, 58)),
				msg("B", user1, at(1, 23, 59)),
				msg("C", user1, at(2, 0, 1)),
				msg("D", user1, at(2, 0, 2)),
			},
			wantDates: []time.Time{at(1, 0, 0), at(2, 0, 0)},
			want:      [][]Position{{PositionFirst, PositionLast}, {PositionFirst, PositionLast}},
		},
		{
			name: "Descending",
			msgs: []chat.Message{
				msg("D", user2, at(2, 10, 0)),
				msg("C", user1, at(2, 9, 0)),
				msg("B", user1, at(1, 9, 1)),
				msg("A", user1, at(1, 9, 0)),
			},
			wantDates: []time.Time{at(2, 0, 0), at(1, 0, 0)},
			want:      [][]Position{{PositionSingle, PositionSingle}, {PositionFirst, PositionLast}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := Timeline{Location: time.UTC}
			got := tl.Compute(tt.msgs)

			var dates []time.Time
			for _, s := range got {
				dates = append(dates, s.Date)
			}
			if diff := cmp.Diff(tt.wantDates, dates); diff != "" {
				t.Errorf("Section dates mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, positions(got), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Positions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTimeline_Location(t *testing.T) {
	tz := time.FixedZone("UTC+10", 10*60*60)
	msgs := []chat.Message{
		msg("A", user1, at(1, 13, 0)),
		msg("B", user1, at(1, 15, 0)),
	}

	if got := len(Timeline{Location: time.UTC}.Compute(msgs)); got != 1 {
		t.Errorf("Got %d sections in UTC, want 1", got)
	}

	sections := Timeline{Location: tz}.Compute(msgs)
	if len(sections) != 2 {
		t.Fatalf("Got %d sections in UTC+10, want 2", len(sections))
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, tz)
	if !sections[1].Date.Equal(want) {
		t.Errorf("Got date %v, want %v", sections[1].Date, want)
	}
}

func randomMessages(r *rand.Rand, n int) []chat.Message {
	users := []chat.UserRef{user1, user2, {ID: "user3"}}
	ts := at(1, 0, 0)
	out := make([]chat.Message, n)
	for i := range out {
		ts = ts.Add(time.Duration(r.Intn(8*60)) * time.Minute)
		out[i] = msg(fmt.Sprint(i), users[r.Intn(len(users))], ts)
	}
	return out
}

func TestTimeline_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	tl := Timeline{Location: time.UTC}

	for i := 0; i < 50; i++ {
		msgs := randomMessages(r, r.Intn(40))
		sections := tl.Compute(msgs)

		if diff := cmp.Diff(sections, tl.Compute(msgs)); diff != "" {
			t.Fatalf("Compute is not idempotent:\n%s", diff)
		}
		if diff := cmp.Diff(msgs, Flatten(sections), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("Sections do not reproduce input:\n%s", diff)
		}

		for _, s := range sections {
			for j, row := range s.Rows {
				if !tl.Day(row.Message.CreatedAt).Equal(s.Date) {
					t.Fatalf("Message %s is in section %v", row.Message.ID, s.Date)
				}
				prev := j > 0 && s.Rows[j-1].Message.Sender.ID == row.Message.Sender.ID
				next := j < len(s.Rows)-1 && s.Rows[j+1].Message.Sender.ID == row.Message.Sender.ID
				if (row.Position == PositionSingle) != (!prev && !next) {
					t.Fatalf("Message %s has position %s with neighbours prev=%v next=%v", row.Message.ID, row.Position, prev, next)
				}
			}
		}
	}
}
