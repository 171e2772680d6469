package postgres

import (
	"testing"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/google/go-cmp/cmp"
)

func TestMessage_ChatMessage(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := message{
		ID:                "m2",
		MessageText:       "answer",
		UserID:            "u1",
		UserName:          "Ann",
		Status:            "read",
		CreatedAt:         at,
		RecordingURL:      "https://cdn/r.m4a",
		RecordingDuration: 1500,
		Waveform:          []float64{0.1, 0.2},
		Attachments: []attachment{
			{ID: "a", MessageID: "m2", ThumbnailURL: "https://cdn/a_t.jpg", FullURL: "https://cdn/a.jpg", Type: "image"},
			{ID: "x", MessageID: "m2", ThumbnailURL: "https://cdn/x_t.jpg", FullURL: "https://cdn/x.jpg", Type: "sticker"},
		},
		Reactions: []reaction{
			{ID: "r1", MessageID: "m2", UserID: "u2", Type: "heart", CreatedAt: at},
		},
		ReplySnapshot: &chat.ReplyReference{
			MessageID: "m1",
			Sender:    chat.UserRef{ID: "u2"},
			Text:      "question",
		},
	}

	want := chat.Message{
		ID:        "m2",
		Sender:    chat.UserRef{ID: "u1", Name: "Ann"},
		Status:    chat.StatusRead,
		CreatedAt: at,
		Text:      "answer",
		Attachments: []chat.Attachment{
			{ID: "a", ThumbnailURL: "https://cdn/a_t.jpg", FullURL: "https://cdn/a.jpg", Type: chat.AttachmentImage},
			// Unknown types render as images.
			{ID: "x", ThumbnailURL: "https://cdn/x_t.jpg", FullURL: "https://cdn/x.jpg", Type: chat.AttachmentImage},
		},
		Recording: &chat.Recording{URL: "https://cdn/r.m4a", Duration: 1500 * time.Millisecond, WaveformSamples: []float64{0.1, 0.2}},
		Reactions: []chat.Reaction{
			{ID: "r1", User: chat.UserRef{ID: "u2"}, CreatedAt: at, Type: chat.ReactionType{Emoji: "heart"}, Status: chat.ReactionSent},
		},
		ReplyTo: &chat.ReplyReference{MessageID: "m1", Sender: chat.UserRef{ID: "u2"}, Text: "question"},
	}
	if diff := cmp.Diff(want, m.ChatMessage()); diff != "" {
		t.Errorf("ChatMessage() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewMessage(t *testing.T) {
	in := chat.Message{
		ID:        "m1",
		Sender:    chat.UserRef{ID: "u1", Name: "Ann"},
		Status:    chat.StatusSending,
		Text:      "hi",
		Recording: &chat.Recording{Duration: time.Second},
		ReplyTo:   &chat.ReplyReference{MessageID: "m0", Sender: chat.UserRef{ID: "u0"}, Text: "question"},
	}
	got := newMessage(in)
	in.ReplyTo.Text = "edited later"

	// Stored messages are always sent and a recording without an uploaded
	// file is not stored.
	want := &message{
		ID:          "m1",
		MessageText: "hi",
		UserID:      "u1",
		UserName:    "Ann",
		Status:      "sent",
		ReplyToID:   "m0",
		ReplySnapshot: &chat.ReplyReference{
			MessageID: "m0",
			Sender:    chat.UserRef{ID: "u0"},
			Text:      "question",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("newMessage() mismatch (-want +got):\n%s", diff)
	}
}
