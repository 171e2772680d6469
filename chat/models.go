package chat

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a message does not exist.
var ErrNotFound = errors.New("message not found")

// A UserRef identifies the author of a message or reaction.
type UserRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// An Attachment is a resolved photo or video attached to a message.
type Attachment struct {
	ID           string         `json:"id"`
	ThumbnailURL string         `json:"thumbnail_url"`
	FullURL      string         `json:"full_url"`
	Type         AttachmentType `json:"type"`
}

// A Recording is a voice recording. While capture is active the URL may be
// empty and the duration and samples grow; once attached to a sent message
// it is frozen.
type Recording struct {
	URL             string        `json:"url,omitempty"`
	Duration        time.Duration `json:"duration"`
	WaveformSamples []float64     `json:"waveform_samples"`
}

// HasURL reports whether capture produced a playable file.
func (r *Recording) HasURL() bool {
	return r != nil && r.URL != ""
}

// Clone returns a deep copy of the recording, or nil for a nil receiver.
func (r *Recording) Clone() *Recording {
	if r == nil {
		return nil
	}
	c := *r
	c.WaveformSamples = append([]float64(nil), r.WaveformSamples...)
	return &c
}

// ReactionType is the kind of a reaction. Emoji is the only variant.
type ReactionType struct {
	Emoji string `json:"emoji"`
}

// A Reaction represents a reaction to a message such as a thumbs up.
type Reaction struct {
	ID        string         `json:"id"`
	User      UserRef        `json:"user"`
	CreatedAt time.Time      `json:"created_at"`
	Type      ReactionType   `json:"type"`
	Status    ReactionStatus `json:"status"`
}

// A ReplyReference is a frozen snapshot of the message being replied to.
type ReplyReference struct {
	MessageID   string       `json:"message_id"`
	Sender      UserRef      `json:"sender"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// A Message represents a message in a conversation. Messages are values:
// updates produce a new Message that replaces the old one by ID.
type Message struct {
	ID          string          `json:"id"`
	Sender      UserRef         `json:"sender"`
	Status      Status          `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Text        string          `json:"text"`
	Attachments []Attachment    `json:"attachments"`
	Recording   *Recording      `json:"recording,omitempty"`
	Reactions   []Reaction      `json:"reactions"`
	ReplyTo     *ReplyReference `json:"reply_to,omitempty"`
}

// A DraftMessage is the output of the composer. ID is set only when a
// previously failed message is re-sent.
type DraftMessage struct {
	ID          string          `json:"id,omitempty"`
	Text        string          `json:"text"`
	Attachments []Attachment    `json:"attachments"`
	Recording   *Recording      `json:"recording,omitempty"`
	ReplyTo     *ReplyReference `json:"reply_to,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
