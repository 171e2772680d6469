package composer

import (
	"context"
	"time"

	"github.com/GetStream/stream-chat-core/chat"
)

// A MediaHandle is an opaque reference to a picked photo or video. An empty
// URL returned with a nil error counts as a failed resolution.
type MediaHandle interface {
	ID() string
	Type() chat.AttachmentType
	ResolveThumbnailURL(ctx context.Context) (string, error)
	// ResolveFullURL is only called for videos.
	ResolveFullURL(ctx context.Context) (string, error)
}

// A Microphone reports and requests recording permission. RequestAccess
// must not block; the answer is delivered through Composer.PermissionResolved.
type Microphone interface {
	Authorized() bool
	RequestAccess()
}

// A RecordingCapture records audio. Start blocks until capture is set up and
// returns the URL the recording is written to. onProgress may be called from
// any goroutine until Stop is called.
type RecordingCapture interface {
	Start(ctx context.Context, onProgress func(duration time.Duration, samples []float64)) (string, error)
	Stop()
}

// A RecordingPlayback plays a recording. The function registered with
// OnReachedEnd is called when playback finishes.
type RecordingPlayback interface {
	Play(rec chat.Recording)
	Pause()
	OnReachedEnd(fn func())
}
