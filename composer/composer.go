package composer

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
)

// Composer owns the state of a message being written and turns it into a
// DraftMessage on Send. All methods may be called from any goroutine but
// are meant to be driven by a single owner.
type Composer struct {
	Logger     *slog.Logger
	Resolver   *Resolver
	Microphone Microphone
	Capture    RecordingCapture
	Playback   RecordingPlayback

	// DidSendMessage receives every sent draft, exactly once per send.
	DidSendMessage func(chat.DraftMessage)
	// DidEditMessage receives the edited message and its new text.
	DidEditMessage func(chat.Message, string)
	// OnStateChange is called after every state transition.
	OnStateChange func(State)
	Now           func() time.Time

	once sync.Once
	mu   sync.Mutex

	state      State
	text       string
	media      []MediaHandle
	recording  *chat.Recording
	generation uint64
	pending    RecordMode
	replyTo    *chat.ReplyReference
	editTarget *chat.Message
	sending    bool
}

// A Snapshot is a copy of the composer state.
type Snapshot struct {
	State     State
	Text      string
	MediaIDs  []string
	Recording *chat.Recording
	ReplyTo   *chat.ReplyReference
	Editing   *chat.Message
	Sending   bool
}

// txn collects calls to collaborators so they run after the lock is released.
type txn struct {
	effects []func()
}

func (t *txn) after(fn func()) {
	t.effects = append(t.effects, fn)
}

func (c *Composer) setup() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Resolver == nil {
		c.Resolver = &Resolver{Logger: c.Logger}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Playback != nil {
		c.Playback.OnReachedEnd(c.playbackEnded)
	}
}

func (c *Composer) update(fn func(t *txn)) {
	c.once.Do(c.setup)

	var t txn
	c.mu.Lock()
	before := c.state
	fn(&t)
	after := c.state
	c.mu.Unlock()

	for _, effect := range t.effects {
		effect()
	}
	if after != before {
		c.Logger.Debug("Composer state changed", "from", before.String(), "to", after.String())
		if c.OnStateChange != nil {
			c.OnStateChange(after)
		}
	}
}

// settle derives the resting state from the content signals.
func (c *Composer) settle() {
	switch {
	case c.recording != nil:
		c.state = StateHasRecording
	case c.text != "" || len(c.media) > 0:
		c.state = StateHasTextOrMedia
	default:
		c.state = StateEmpty
	}
}

func (c *Composer) resting() bool {
	return c.state == StateEmpty || c.state == StateHasTextOrMedia
}

func (c *Composer) reset() {
	c.text = ""
	c.media = nil
	c.recording = nil
	c.generation++
	c.pending = RecordTap
	c.replyTo = nil
	c.editTarget = nil
	c.state = StateEmpty
}

// State returns the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current state.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:     c.state,
		Text:      c.text,
		MediaIDs:  make([]string, len(c.media)),
		Recording: c.recording.Clone(),
		Sending:   c.sending,
	}
	for i, h := range c.media {
		s.MediaIDs[i] = h.ID()
	}
	if c.replyTo != nil {
		ref := *c.replyTo
		s.ReplyTo = &ref
	}
	if c.editTarget != nil {
		m := *c.editTarget
		s.Editing = &m
	}
	return s
}

// CanSend reports whether Send would currently produce a draft.
func (c *Composer) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending || c.state == StateEditing {
		return false
	}
	return c.text != "" || len(c.media) > 0 || c.recording != nil
}

// SetText replaces the draft text.
func (c *Composer) SetText(text string) {
	c.update(func(*txn) {
		c.text = text
		if c.resting() {
			c.settle()
		}
	})
}

// AddMedia attaches picked media.
func (c *Composer) AddMedia(handles ...MediaHandle) {
	c.update(func(*txn) {
		if c.state == StateEditing {
			return
		}
		for _, h := range handles {
			if h != nil {
				c.media = append(c.media, h)
			}
		}
		if c.resting() {
			c.settle()
		}
	})
}

// RemoveMedia detaches the media with the given handle ID.
func (c *Composer) RemoveMedia(id string) {
	c.update(func(*txn) {
		c.media = slices.DeleteFunc(c.media, func(h MediaHandle) bool {
			return h.ID() == id
		})
		if c.resting() {
			c.settle()
		}
	})
}

// SetReplyTo makes the draft a reply to msg.
func (c *Composer) SetReplyTo(msg chat.Message) {
	c.update(func(*txn) {
		if c.state == StateEditing {
			return
		}
		c.replyTo = msg.Reply()
	})
}

// ClearReplyTo drops the reply context.
func (c *Composer) ClearReplyTo() {
	c.update(func(*txn) {
		c.replyTo = nil
	})
}

// StartRecording starts a voice recording, or asks for microphone
// permission first. Starting while a finished recording exists replaces it.
func (c *Composer) StartRecording(ctx context.Context, mode RecordMode) {
	c.update(func(t *txn) {
		switch {
		case c.sending || c.state == StateEditing || c.state.Recording():
			return
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
		}
		if c.state.hasFinishedRecording() {
			c.recording = nil
			c.generation++
		}

		if c.Microphone != nil && !c.Microphone.Authorized() {
			c.pending = mode
			c.state = StateWaitingForRecordingPermission
			t.after(c.Microphone.RequestAccess)
			return
		}
		c.beginCapture(ctx, mode, t)
	})
}

// PermissionResolved delivers the answer to a microphone permission
// request. A pending hold recording is not resumed since the hold gesture
// has already ended.
func (c *Composer) PermissionResolved(ctx context.Context, granted bool) {
	c.update(func(t *txn) {
		if c.state != StateWaitingForRecordingPermission {
			return
		}
		if !granted {
			c.Logger.Info("Microphone permission denied")
			return
		}
		if c.pending == RecordTap {
			c.beginCapture(ctx, RecordTap, t)
			return
		}
		c.settle()
	})
}

func (c *Composer) beginCapture(ctx context.Context, mode RecordMode, t *txn) {
	c.generation++
	gen := c.generation
	c.recording = &chat.Recording{}
	c.state = mode.state()
	if c.Capture == nil {
		c.Logger.Warn("No recording capture configured")
		return
	}
	t.after(func() {
		go c.capture(ctx, gen)
	})
}

func (c *Composer) capture(ctx context.Context, gen uint64) {
	url, err := c.Capture.Start(ctx, func(d time.Duration, samples []float64) {
		c.progress(gen, d, samples)
	})

	c.update(func(t *txn) {
		if gen != c.generation || c.recording == nil {
			return
		}
		if err == nil && url != "" {
			c.recording.URL = url
			return
		}
		if err != nil {
			c.Logger.Warn("Could not start recording", "error", err.Error())
		} else {
			c.Logger.Warn("Recording capture returned no url")
		}
		c.recording = nil
		if c.state.hasFinishedRecording() {
			if c.state == StatePlayingRecording {
				c.pausePlayback(t)
			}
			c.settle()
		}
	})
}

func (c *Composer) progress(gen uint64, d time.Duration, samples []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.recording == nil || !c.state.Recording() {
		return
	}
	c.recording.Duration = d
	c.recording.WaveformSamples = append(c.recording.WaveformSamples[:0], samples...)
}

// StopRecording finishes an active recording.
func (c *Composer) StopRecording() {
	c.update(func(t *txn) {
		if !c.state.Recording() {
			return
		}
		c.stopCapture(t)
	})
}

func (c *Composer) stopCapture(t *txn) {
	if c.Capture != nil {
		t.after(c.Capture.Stop)
	}
	if c.recording != nil {
		c.state = StateHasRecording
		return
	}
	c.settle()
}

func (c *Composer) pausePlayback(t *txn) {
	if c.Playback != nil {
		t.after(c.Playback.Pause)
	}
}

// PlayRecording plays back the finished recording.
func (c *Composer) PlayRecording() {
	c.update(func(t *txn) {
		if c.recording == nil || (c.state != StateHasRecording && c.state != StatePausedRecording) {
			return
		}
		c.state = StatePlayingRecording
		if c.Playback != nil {
			rec := *c.recording.Clone()
			t.after(func() { c.Playback.Play(rec) })
		}
	})
}

// PauseRecording pauses playback.
func (c *Composer) PauseRecording() {
	c.update(func(t *txn) {
		if c.state != StatePlayingRecording {
			return
		}
		c.state = StatePausedRecording
		c.pausePlayback(t)
	})
}

func (c *Composer) playbackEnded() {
	c.update(func(*txn) {
		if c.state == StatePlayingRecording || c.state == StatePausedRecording {
			c.state = StateHasRecording
		}
	})
}

// DeleteRecording discards the recording, or the pending permission
// request for one.
func (c *Composer) DeleteRecording() {
	c.update(func(t *txn) {
		switch {
		case c.state.Recording():
			if c.Capture != nil {
				t.after(c.Capture.Stop)
			}
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
		case c.state == StateHasRecording, c.state == StatePausedRecording,
			c.state == StateWaitingForRecordingPermission:
		default:
			return
		}
		c.recording = nil
		c.generation++
		c.settle()
	})
}

// Edit starts editing msg. The draft text is replaced by the message text
// and any pending media or recording is discarded.
func (c *Composer) Edit(msg chat.Message) {
	c.update(func(t *txn) {
		switch {
		case c.state.Recording():
			if c.Capture != nil {
				t.after(c.Capture.Stop)
			}
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
		}
		c.reset()
		c.editTarget = &msg
		c.text = msg.Text
		c.state = StateEditing
	})
}

// SaveEdit confirms the edit and resets the composer. It reports whether an
// edit was in progress.
func (c *Composer) SaveEdit() bool {
	saved := false
	c.update(func(t *txn) {
		if c.state != StateEditing || c.editTarget == nil {
			return
		}
		target, text := *c.editTarget, c.text
		c.reset()
		saved = true
		if c.DidEditMessage != nil {
			t.after(func() { c.DidEditMessage(target, text) })
		}
	})
	return saved
}

// CancelEdit abandons the edit and resets the composer.
func (c *Composer) CancelEdit() {
	c.update(func(*txn) {
		if c.state == StateEditing {
			c.reset()
		}
	})
}

// Reset discards the whole draft.
func (c *Composer) Reset() {
	c.update(func(t *txn) {
		switch {
		case c.state.Recording():
			if c.Capture != nil {
				t.after(c.Capture.Stop)
			}
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
		}
		c.reset()
	})
}

// Send resolves the attached media and emits one DraftMessage through
// DidSendMessage, then resets the composer. An active recording is stopped
// first. Send blocks while media resolves; it returns false without
// emitting when another send is in flight, an edit is in progress, or there
// is nothing to send.
func (c *Composer) Send(ctx context.Context) bool {
	var (
		ok      bool
		gen     uint64
		text    string
		media   []MediaHandle
		replyTo *chat.ReplyReference
	)
	c.update(func(t *txn) {
		if c.sending || c.state == StateEditing {
			return
		}
		switch {
		case c.state.Recording():
			c.stopCapture(t)
		case c.state == StateWaitingForRecordingPermission:
			c.settle()
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
			c.state = StateHasRecording
		}
		if c.text == "" && len(c.media) == 0 && c.recording == nil {
			return
		}
		ok = true
		c.sending = true
		gen = c.generation
		text = c.text
		media = slices.Clone(c.media)
		replyTo = c.replyTo
	})
	if !ok {
		return false
	}

	attachments := c.Resolver.Resolve(ctx, media)

	c.mu.Lock()
	var rec *chat.Recording
	if gen == c.generation {
		rec = c.recording.Clone()
	}
	c.mu.Unlock()

	draft := chat.DraftMessage{
		Text:        text,
		Attachments: attachments,
		ReplyTo:     replyTo,
		CreatedAt:   c.Now(),
	}
	switch {
	case rec.HasURL():
		draft.Recording = rec
	case rec != nil:
		c.Logger.Warn("Omitting recording without url from draft")
	}

	if c.DidSendMessage != nil {
		c.DidSendMessage(draft)
	}

	c.update(func(t *txn) {
		switch {
		case c.state.Recording():
			if c.Capture != nil {
				t.after(c.Capture.Stop)
			}
		case c.state == StatePlayingRecording:
			c.pausePlayback(t)
		}
		c.reset()
		c.sending = false
	})
	return true
}

// Resend emits a failed message again as a draft carrying its original ID.
// It reports false for messages that did not fail.
func (c *Composer) Resend(msg chat.Message) bool {
	c.once.Do(c.setup)
	if !msg.Failed() {
		return false
	}
	draft := chat.DraftMessage{
		ID:          msg.ID,
		Text:        msg.Text,
		Attachments: slices.Clone(msg.Attachments),
		Recording:   msg.Recording.Clone(),
		ReplyTo:     msg.ReplyTo,
		CreatedAt:   msg.CreatedAt,
	}
	if draft.Attachments == nil {
		draft.Attachments = []chat.Attachment{}
	}
	if c.DidSendMessage != nil {
		c.DidSendMessage(draft)
	}
	return true
}
