package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/GetStream/stream-chat-core/api/validator"
	"github.com/GetStream/stream-chat-core/chat"
	"github.com/GetStream/stream-chat-core/reactions"
	"github.com/GetStream/stream-chat-core/timeline"
)

// A DB provides a storage layer that persists messages.
type DB interface {
	ListMessages(ctx context.Context, limit int, before string, excludeMsgIDs ...string) ([]chat.Message, error)
	GetMessage(ctx context.Context, id string) (chat.Message, error)
	InsertMessage(ctx context.Context, msg chat.Message) (chat.Message, error)
	InsertReaction(ctx context.Context, messageID string, reaction chat.Reaction) (chat.Reaction, error)
}

// A Cache provides a storage layer that caches recent messages.
type Cache interface {
	ListMessages(ctx context.Context) ([]chat.Message, error)
	InsertMessage(ctx context.Context, msg chat.Message) error
	InsertReaction(ctx context.Context, messageID string, reaction chat.Reaction) error
}

// API provides the REST endpoints for the application.
type API struct {
	Logger   *slog.Logger
	DB       DB
	Cache    Cache
	Val      *validator.Validator
	Timeline timeline.Timeline

	// PageSize is the default number of messages per page.
	PageSize int

	MaxReactions int

	// PaginationOffset is advertised to clients for their older-page gate.
	PaginationOffset int

	once sync.Once
	mux  *http.ServeMux
}

const (
	// defaultPageSize is used when PageSize is not set.
	defaultPageSize = 10
	maxPageSize     = 100
)

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /messages", a.listMessages)
	mux.HandleFunc("POST /messages", a.createMessage)
	mux.HandleFunc("POST /messages/{messageID}/reactions", a.createReaction)
	mux.HandleFunc("GET /settings", a.settings)

	if a.Val == nil {
		a.Val = validator.New()
	}
	if a.PageSize <= 0 {
		a.PageSize = defaultPageSize
	}
	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Sections []Section `json:"sections"`
	}

	q := r.URL.Query()
	userID := q.Get("user_id")
	before := q.Get("before")
	limit := a.PageSize
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxPageSize {
			a.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s), "Invalid limit")
			return
		}
		limit = n
	}

	var msgs []chat.Message
	if before == "" {
		// Get the latest messages from cache
		cached, err := a.Cache.ListMessages(r.Context())
		if err != nil {
			a.respondError(w, http.StatusInternalServerError, err, "Could not list messages")
			return
		}
		if len(cached) > limit {
			cached = cached[:limit]
		}
		a.Logger.Info("Got messages from cache", "count", len(cached))
		msgs = cached
	}

	// Get any remaining messages from DB
	if remaining := limit - len(msgs); remaining > 0 {
		msgIDs := make([]string, len(msgs))
		for i, msg := range msgs {
			msgIDs[i] = msg.ID
		}

		dbMsgs, err := a.DB.ListMessages(r.Context(), remaining, before, msgIDs...)
		if err != nil {
			a.respondError(w, http.StatusInternalServerError, err, "Could not list messages")
			return
		}
		a.Logger.Info("Got remaining messages from DB", "count", len(dbMsgs))
		msgs = append(msgs, dbMsgs...)
	}

	// Sources return newest first; the timeline renders oldest first.
	slices.SortStableFunc(msgs, func(x, y chat.Message) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})

	res := response{
		Sections: newSections(a.Timeline.Compute(forViewer(msgs, userID)), a.MaxReactions),
	}
	a.respond(w, http.StatusOK, res)
}

// settings reports the display and paging limits clients should use.
func (a *API) settings(w http.ResponseWriter, r *http.Request) {
	type response struct {
		PageSize         int `json:"page_size"`
		PaginationOffset int `json:"pagination_offset"`
		MaxReactions     int `json:"max_reactions"`
	}
	maxReactions := a.MaxReactions
	if maxReactions <= 0 {
		maxReactions = reactions.DefaultMax
	}
	a.respond(w, http.StatusOK, response{
		PageSize:         a.PageSize,
		PaginationOffset: a.PaginationOffset,
		MaxReactions:     maxReactions,
	})
}

func (a *API) createMessage(w http.ResponseWriter, r *http.Request) {
	type (
		attachmentRequest struct {
			ID           string `json:"id" validate:"required"`
			ThumbnailURL string `json:"thumbnail_url" validate:"required,url"`
			FullURL      string `json:"full_url" validate:"omitempty,url"`
			Type         string `json:"type" validate:"required,oneof=image video"`
		}
		recordingRequest struct {
			URL        string    `json:"url" validate:"required,url"`
			DurationMS int64     `json:"duration_ms" validate:"gte=0"`
			Waveform   []float64 `json:"waveform" validate:"dive,gte=0,lte=1"`
		}
		request struct {
			ID          string              `json:"id" validate:"omitempty,uuid"`
			UserID      string              `json:"user_id" validate:"required"`
			UserName    string              `json:"user_name"`
			Text        string              `json:"text"`
			Attachments []attachmentRequest `json:"attachments" validate:"dive"`
			Recording   *recordingRequest   `json:"recording"`
			ReplyToID   string              `json:"reply_to_id" validate:"omitempty,uuid"`
		}
		response struct {
			ID          string               `json:"id"`
			Text        string               `json:"text"`
			UserID      string               `json:"user_id"`
			Status      chat.Status          `json:"status"`
			CreatedAt   string               `json:"created_at"`
			Attachments []chat.Attachment    `json:"attachments"`
			Recording   *chat.Recording      `json:"recording,omitempty"`
			ReplyTo     *chat.ReplyReference `json:"reply_to,omitempty"`
		}
	)

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	if body.Text == "" && len(body.Attachments) == 0 && body.Recording == nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("empty draft from %s", body.UserID), "Message is empty")
		return
	}

	msg := chat.Message{
		ID:          body.ID,
		Sender:      chat.UserRef{ID: body.UserID, Name: body.UserName},
		Text:        body.Text,
		CreatedAt:   time.Now(),
		Attachments: make([]chat.Attachment, len(body.Attachments)),
	}
	for i, att := range body.Attachments {
		typ, _ := chat.ParseAttachmentType(att.Type)
		full := att.FullURL
		if full == "" {
			full = att.ThumbnailURL
		}
		msg.Attachments[i] = chat.Attachment{ID: att.ID, ThumbnailURL: att.ThumbnailURL, FullURL: full, Type: typ}
	}
	if body.Recording != nil {
		msg.Recording = &chat.Recording{
			URL:             body.Recording.URL,
			Duration:        time.Duration(body.Recording.DurationMS) * time.Millisecond,
			WaveformSamples: body.Recording.Waveform,
		}
	}
	if body.ReplyToID != "" {
		target, err := a.DB.GetMessage(r.Context(), body.ReplyToID)
		if errors.Is(err, chat.ErrNotFound) {
			a.respondError(w, http.StatusBadRequest, err, "Reply target not found")
			return
		}
		if err != nil {
			a.respondError(w, http.StatusInternalServerError, err, "Could not load reply target")
			return
		}
		msg.ReplyTo = target.Reply()
	}

	msg, err = a.DB.InsertMessage(r.Context(), msg)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not insert message")
		return
	}

	if err := a.Cache.InsertMessage(r.Context(), msg); err != nil {
		a.Logger.Error("Could not cache message", "error", err.Error())
	}

	res := response{
		ID:          msg.ID,
		Text:        msg.Text,
		UserID:      msg.Sender.ID,
		Status:      msg.Status,
		CreatedAt:   msg.CreatedAt.Format(time.RFC1123),
		Attachments: msg.Attachments,
		Recording:   msg.Recording,
		ReplyTo:     msg.ReplyTo,
	}

	a.respond(w, http.StatusCreated, res)
}

func (a *API) createReaction(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			Emoji    string `json:"emoji" validate:"required"`
			UserID   string `json:"user_id" validate:"required"`
			UserName string `json:"user_name"`
		}
		response struct {
			ID        string              `json:"id"`         // reaction ID
			MessageID string              `json:"message_id"` // message ID
			Emoji     string              `json:"emoji"`      // the reaction emoji
			Status    chat.ReactionStatus `json:"status"`     // confirmation status of the reaction
			UserID    string              `json:"user_id"`    // the user ID submitting the reaction
			CreatedAt string              `json:"created_at"` // the date/time the reaction was created
		}
	)

	messageID := r.PathValue("messageID")
	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Invalid request body")
		return
	}

	reaction, err := a.DB.InsertReaction(r.Context(), messageID, chat.Reaction{
		User:      chat.UserRef{ID: body.UserID, Name: body.UserName},
		CreatedAt: time.Now(),
		Type:      chat.ReactionType{Emoji: body.Emoji},
		Status:    chat.ReactionSending,
	})

	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, fmt.Sprintf("could not create reaction for message with id %s", messageID))
		return
	}

	if err := a.Cache.InsertReaction(r.Context(), messageID, reaction); err != nil {
		a.Logger.Error("Could not cache reaction", "error", err.Error())
	}

	a.respond(w, http.StatusCreated, response{
		ID:        reaction.ID,
		MessageID: messageID,
		Emoji:     reaction.Type.Emoji,
		Status:    reaction.Status,
		UserID:    reaction.User.ID,
		CreatedAt: reaction.CreatedAt.Format(time.RFC1123),
	})
}
