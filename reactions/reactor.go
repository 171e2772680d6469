package reactions

import (
	"time"

	"github.com/GetStream/stream-chat-core/chat"
	"github.com/google/uuid"
)

// Reactor creates reactions on behalf of the current user.
type Reactor struct {
	User chat.UserRef
	// DidReact is called with the original message and the new reaction so
	// the application can persist it.
	DidReact func(chat.Message, chat.Reaction)
	Now      func() time.Time
}

// React adds an emoji reaction in sending status and returns the message
// that should replace msg in the list, along with the new reaction.
func (r *Reactor) React(msg chat.Message, emoji string) (chat.Message, chat.Reaction) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	user := r.User
	user.IsCurrentUser = true

	reaction := chat.Reaction{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now(),
		Type:      chat.ReactionType{Emoji: emoji},
		Status:    chat.ReactionSending,
	}
	if r.DidReact != nil {
		r.DidReact(msg, reaction)
	}
	return msg.WithReaction(reaction), reaction
}

// Confirm applies the store's answer for a pending reaction: sent when err
// is nil, error otherwise.
func Confirm(msg chat.Message, reactionID string, err error) (chat.Message, bool) {
	status := chat.ReactionSent
	if err != nil {
		status = chat.ReactionError
	}
	return msg.WithReactionStatus(reactionID, status)
}
