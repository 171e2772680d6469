package redis

import (
	"encoding/json"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
)

// A message represents a message in the cache. Attachments, the waveform
// and the reply snapshot are stored as JSON since hashes only hold flat
// values.
type message struct {
	ID                string    `redis:"id"`
	Text              string    `redis:"text"`
	UserID            string    `redis:"user_id"`
	UserName          string    `redis:"user_name"`
	AvatarURL         string    `redis:"avatar_url"`
	Status            string    `redis:"status"`
	CreatedAt         time.Time `redis:"created_at"`
	RecordingURL      string    `redis:"recording_url"`
	RecordingDuration int64     `redis:"recording_duration_ms"`
	Waveform          string    `redis:"waveform"`
	Attachments       string    `redis:"attachments"`
	ReplyTo           string    `redis:"reply_to"`
	Reactions         []reaction
}

// reaction represents a reaction to a message, stored in the cache.
type reaction struct {
	ID        string    `redis:"id"`
	MessageID string    `redis:"message_id"`
	UserID    string    `redis:"user_id"`
	UserName  string    `redis:"user_name"`
	Type      string    `redis:"type"`
	CreatedAt time.Time `redis:"created_at"`
}

func newMessage(msg chat.Message) (*message, error) {
	m := &message{
		ID:        msg.ID,
		Text:      msg.Text,
		UserID:    msg.Sender.ID,
		UserName:  msg.Sender.Name,
		AvatarURL: msg.Sender.AvatarURL,
		Status:    msg.Status.String(),
		CreatedAt: msg.CreatedAt,
	}
	if msg.Recording.HasURL() {
		m.RecordingURL = msg.Recording.URL
		m.RecordingDuration = msg.Recording.Duration.Milliseconds()
		if len(msg.Recording.WaveformSamples) > 0 {
			b, err := json.Marshal(msg.Recording.WaveformSamples)
			if err != nil {
				return nil, err
			}
			m.Waveform = string(b)
		}
	}
	if len(msg.Attachments) > 0 {
		b, err := json.Marshal(msg.Attachments)
		if err != nil {
			return nil, err
		}
		m.Attachments = string(b)
	}
	if msg.ReplyTo != nil {
		b, err := json.Marshal(msg.ReplyTo)
		if err != nil {
			return nil, err
		}
		m.ReplyTo = string(b)
	}
	return m, nil
}

func (m message) ChatMessage() (chat.Message, error) {
	out := chat.Message{
		ID:          m.ID,
		Sender:      chat.UserRef{ID: m.UserID, Name: m.UserName, AvatarURL: m.AvatarURL},
		Status:      chat.ParseStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		Text:        m.Text,
		Attachments: []chat.Attachment{},
		Reactions:   make([]chat.Reaction, len(m.Reactions)),
	}

	for i, r := range m.Reactions {
		out.Reactions[i] = r.ChatReaction()
	}
	if m.RecordingURL != "" {
		out.Recording = &chat.Recording{
			URL:      m.RecordingURL,
			Duration: time.Duration(m.RecordingDuration) * time.Millisecond,
		}
		if m.Waveform != "" {
			if err := json.Unmarshal([]byte(m.Waveform), &out.Recording.WaveformSamples); err != nil {
				return chat.Message{}, err
			}
		}
	}
	if m.Attachments != "" {
		if err := json.Unmarshal([]byte(m.Attachments), &out.Attachments); err != nil {
			return chat.Message{}, err
		}
	}
	if m.ReplyTo != "" {
		out.ReplyTo = &chat.ReplyReference{}
		if err := json.Unmarshal([]byte(m.ReplyTo), out.ReplyTo); err != nil {
			return chat.Message{}, err
		}
	}
	return out, nil
}

func (r reaction) ChatReaction() chat.Reaction {
	return chat.Reaction{
		ID:        r.ID,
		User:      chat.UserRef{ID: r.UserID, Name: r.UserName},
		CreatedAt: r.CreatedAt,
		Type:      chat.ReactionType{Emoji: r.Type},
		Status:    chat.ReactionSent,
	}
}
