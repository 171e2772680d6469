package chat

// Failed reports whether the message could not be delivered.
func (m Message) Failed() bool {
	return m.Status == StatusError
}

// Reply returns a frozen snapshot of m suitable for ReplyTo.
func (m Message) Reply() *ReplyReference {
	return &ReplyReference{
		MessageID:   m.ID,
		Sender:      m.Sender,
		Text:        m.Text,
		Attachments: append([]Attachment(nil), m.Attachments...),
	}
}

// WithStatus returns a copy of m with the given status.
func (m Message) WithStatus(s Status) Message {
	m.Status = s
	return m
}

// WithReaction returns a copy of m with r appended, or with the reaction of
// the same ID replaced in place.
func (m Message) WithReaction(r Reaction) Message {
	out := make([]Reaction, 0, len(m.Reactions)+1)
	replaced := false
	for _, existing := range m.Reactions {
		if existing.ID == r.ID {
			out = append(out, r)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, r)
	}
	m.Reactions = out
	return m
}

// WithReactionStatus returns a copy of m where the reaction with the given
// ID has status s. The second result is false if no such reaction exists.
func (m Message) WithReactionStatus(id string, s ReactionStatus) (Message, bool) {
	for _, r := range m.Reactions {
		if r.ID == id {
			r.Status = s
			return m.WithReaction(r), true
		}
	}
	return m, false
}

// ReplaceByID returns a new list where the message with msg.ID is replaced
// by msg. The second result is false if the list holds no such message.
func ReplaceByID(list []Message, msg Message) ([]Message, bool) {
	out := make([]Message, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == msg.ID {
			out[i] = msg
			return out, true
		}
	}
	return out, false
}
