package api

import (
	"github.com/GetStream/stream-chat-core/chat"
	"github.com/GetStream/stream-chat-core/reactions"
	"github.com/GetStream/stream-chat-core/timeline"
)

// A TimelineMessage is a message as rendered in the timeline.
type TimelineMessage struct {
	chat.Message
	Position        timeline.Position `json:"position"`
	ReactionDisplay reactions.Display `json:"reaction_display"`
}

// A Section groups the messages of one calendar day.
type Section struct {
	Date     string            `json:"date"`
	Messages []TimelineMessage `json:"messages"`
}

const dateLayout = "2006-01-02"

func newSections(sections []timeline.Section, maxReactions int) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{
			Date:     s.Date.Format(dateLayout),
			Messages: make([]TimelineMessage, len(s.Rows)),
		}
		for j, row := range s.Rows {
			out[i].Messages[j] = TimelineMessage{
				Message:         row.Message,
				Position:        row.Position,
				ReactionDisplay: reactions.Aggregate(row.Message, maxReactions),
			}
		}
	}
	return out
}

// forViewer marks the messages and reactions authored by userID. Delivery
// status only applies to the viewer's own messages.
func forViewer(msgs []chat.Message, userID string) []chat.Message {
	out := make([]chat.Message, len(msgs))
	for i, m := range msgs {
		m.Sender.IsCurrentUser = userID != "" && m.Sender.ID == userID
		if !m.Sender.IsCurrentUser {
			m.Status = chat.StatusNone
		}
		rs := make([]chat.Reaction, len(m.Reactions))
		for j, r := range m.Reactions {
			r.User.IsCurrentUser = userID != "" && r.User.ID == userID
			rs[j] = r
		}
		m.Reactions = rs
		out[i] = m
	}
	return out
}
