package postgres

import (
	"time"

	"github.com/GetStream/stream-chat-core/chat"
)

// A message represents a message in the database.
type message struct {
	ID                string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	MessageText       string    `bun:"message_text,notnull"`
	UserID            string    `bun:",notnull"`
	UserName          string    `bun:",notnull,default:''"`
	AvatarURL         string    `bun:",nullzero"`
	Status            string    `bun:",notnull,default:'sent'"`
	CreatedAt         time.Time `bun:",nullzero,default:now()"`
	ReplyToID         string    `bun:",nullzero,type:uuid"`
	RecordingURL      string    `bun:",nullzero"`
	RecordingDuration int64     `bun:"recording_duration_ms,notnull,default:0"`
	Waveform          []float64 `bun:",array"`

	// ReplySnapshot is the replied-to message as it was when the reply was
	// written. Later edits of that message do not change it.
	ReplySnapshot *chat.ReplyReference `bun:"reply_snapshot,type:jsonb,nullzero"`
	Attachments   []attachment         `bun:"rel:has-many,join:id=message_id"`
	Reactions     []reaction           `bun:"rel:has-many,join:id=message_id"`
}

type attachment struct {
	ID           string `bun:",pk"`
	MessageID    string `bun:",pk,type:uuid"`
	ThumbnailURL string `bun:",notnull"`
	FullURL      string `bun:",notnull"`
	Type         string `bun:",notnull"`
	Position     int    `bun:",notnull,default:0"`
}

type reaction struct {
	ID        string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	MessageID string    `bun:",notnull"`
	UserID    string    `bun:",notnull"`
	UserName  string    `bun:",notnull,default:''"`
	Type      string    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,default:now()"`
	Message   *message  `bun:"rel:belongs-to,join:message_id=id"`
}

func (m message) ChatMessage() chat.Message {
	out := chat.Message{
		ID:          m.ID,
		Sender:      chat.UserRef{ID: m.UserID, Name: m.UserName, AvatarURL: m.AvatarURL},
		Status:      chat.ParseStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		Text:        m.MessageText,
		Attachments: make([]chat.Attachment, len(m.Attachments)),
		Reactions:   make([]chat.Reaction, len(m.Reactions)),
	}
	for i, a := range m.Attachments {
		out.Attachments[i] = a.ChatAttachment()
	}
	for i, r := range m.Reactions {
		out.Reactions[i] = r.ChatReaction()
	}
	if m.RecordingURL != "" {
		out.Recording = &chat.Recording{
			URL:             m.RecordingURL,
			Duration:        time.Duration(m.RecordingDuration) * time.Millisecond,
			WaveformSamples: m.Waveform,
		}
	}
	if m.ReplySnapshot != nil {
		ref := *m.ReplySnapshot
		out.ReplyTo = &ref
	}
	return out
}

func (a attachment) ChatAttachment() chat.Attachment {
	typ, err := chat.ParseAttachmentType(a.Type)
	if err != nil {
		typ = chat.AttachmentImage
	}
	return chat.Attachment{
		ID:           a.ID,
		ThumbnailURL: a.ThumbnailURL,
		FullURL:      a.FullURL,
		Type:         typ,
	}
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

func newMessage(msg chat.Message) *message {
	m := &message{
		ID:          msg.ID,
		MessageText: msg.Text,
		UserID:      msg.Sender.ID,
		UserName:    msg.Sender.Name,
		AvatarURL:   msg.Sender.AvatarURL,
		Status:      chat.StatusSent.String(),
		CreatedAt:   msg.CreatedAt,
	}
	if msg.ReplyTo != nil {
		ref := *msg.ReplyTo
		m.ReplyToID = ref.MessageID
		m.ReplySnapshot = &ref
	}
	if msg.Recording.HasURL() {
		m.RecordingURL = msg.Recording.URL
		m.RecordingDuration = msg.Recording.Duration.Milliseconds()
		m.Waveform = msg.Recording.WaveformSamples
	}
	return m
}
