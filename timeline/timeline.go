// Package timeline groups a flat message list into date sections and marks
// each message's position within a run of messages from the same sender.
package timeline

import (
	"time"

	"github.com/GetStream/stream-chat-core/chat"
)

// Position is a message's place in a run of consecutive messages from the
// same sender within one section.
type Position int

const (
	PositionSingle Position = iota
	PositionFirst
	PositionMiddle
	PositionLast
)

func (p Position) String() string {
	switch p {
	case PositionFirst:
		return "first"
	case PositionMiddle:
		return "middle"
	case PositionLast:
		return "last"
	default:
		return "single"
	}
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// A Row is a message with its position in its run.
type Row struct {
	Message  chat.Message
	Position Position
}

// A Section holds the consecutive messages created on one calendar day.
// Date is midnight of that day in the timeline's location.
type Section struct {
	Date time.Time
	Rows []Row
}

// Messages returns the messages of the section in order.
func (s Section) Messages() []chat.Message {
	out := make([]chat.Message, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Message
	}
	return out
}

// Timeline computes sections. The zero value uses the local calendar.
type Timeline struct {
	Location *time.Location
}

func (tl Timeline) location() *time.Location {
	if tl.Location == nil {
		return time.Local
	}
	return tl.Location
}

// Day returns midnight of the calendar day t falls on.
func (tl Timeline) Day(t time.Time) time.Time {
	t = t.In(tl.location())
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tl.location())
}

// Compute splits msgs into sections of consecutive same-day messages and
// assigns positions. The input order is kept as is; both ascending and
// descending lists are accepted. Compute holds no state, so equal inputs
// give equal outputs.
func (tl Timeline) Compute(msgs []chat.Message) []Section {
	var sections []Section
	for _, m := range msgs {
		day := tl.Day(m.CreatedAt)
		if n := len(sections); n == 0 || !sections[n-1].Date.Equal(day) {
			sections = append(sections, Section{Date: day})
		}
		s := &sections[len(sections)-1]
		s.Rows = append(s.Rows, Row{Message: m})
	}
	for i := range sections {
		assignPositions(sections[i].Rows)
	}
	return sections
}

func assignPositions(rows []Row) {
	for i := range rows {
		sender := rows[i].Message.Sender.ID
		samePrev := i > 0 && rows[i-1].Message.Sender.ID == sender
		sameNext := i < len(rows)-1 && rows[i+1].Message.Sender.ID == sender
		switch {
		case samePrev && sameNext:
			rows[i].Position = PositionMiddle
		case sameNext:
			rows[i].Position = PositionFirst
		case samePrev:
			rows[i].Position = PositionLast
		default:
			rows[i].Position = PositionSingle
		}
	}
}

// Flatten concatenates the messages of all sections.
func Flatten(sections []Section) []chat.Message {
	var out []chat.Message
	for _, s := range sections {
		out = append(out, s.Messages()...)
	}
	return out
}
