// Package menu declares the actions offered on a message and dispatches
// them to the handlers the application registers.
package menu

import (
	"errors"
	"fmt"

	"github.com/GetStream/stream-chat-core/chat"
)

// Action is a message action.
type Action int

const (
	ActionReply Action = iota
	ActionEdit
	ActionCopy
	ActionResend
	ActionDelete
)

var actionNames = [...]string{
	ActionReply:  "reply",
	ActionEdit:   "edit",
	ActionCopy:   "copy",
	ActionResend: "resend",
	ActionDelete: "delete",
}

// All lists every action in menu order.
var All = []Action{ActionReply, ActionEdit, ActionCopy, ActionResend, ActionDelete}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// applies reports whether a is offered for msg.
func (a Action) applies(msg chat.Message) bool {
	own := msg.Sender.IsCurrentUser
	switch a {
	case ActionReply:
		return msg.Status != chat.StatusSending && !msg.Failed()
	case ActionEdit:
		return own && msg.Text != "" && (msg.Status == chat.StatusSent || msg.Status == chat.StatusRead)
	case ActionCopy:
		return msg.Text != ""
	case ActionResend:
		return own && msg.Failed()
	case ActionDelete:
		return own
	}
	return false
}

// Available returns the actions offered for msg, in menu order.
func Available(msg chat.Message) []Action {
	out := make([]Action, 0, len(All))
	for _, a := range All {
		if a.applies(msg) {
			out = append(out, a)
		}
	}
	return out
}

var (
	// ErrUnavailable is returned when an action is not offered for a message.
	ErrUnavailable = errors.New("action not available")
	// ErrNoHandler is returned when no handler is registered for an action.
	ErrNoHandler = errors.New("no handler registered")
)

// A Handler performs an action on a message.
type Handler interface {
	Perform(msg chat.Message)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(msg chat.Message)

func (f HandlerFunc) Perform(msg chat.Message) { f(msg) }

// Registry maps actions to their handlers.
type Registry map[Action]Handler

// Available returns the actions offered for msg that have a handler.
func (r Registry) Available(msg chat.Message) []Action {
	out := make([]Action, 0, len(r))
	for _, a := range Available(msg) {
		if r[a] != nil {
			out = append(out, a)
		}
	}
	return out
}

// Perform runs the handler for a on msg.
func (r Registry) Perform(a Action, msg chat.Message) error {
	if !a.applies(msg) {
		return fmt.Errorf("%s message %s: %w", a, msg.ID, ErrUnavailable)
	}
	h := r[a]
	if h == nil {
		return fmt.Errorf("%s: %w", a, ErrNoHandler)
	}
	h.Perform(msg)
	return nil
}
