package chat

import "fmt"

// Status is the delivery status of a message. StatusNone means the status
// does not apply, for example to messages from other users.
type Status int

const (
	StatusNone Status = iota
	StatusSending
	StatusSent
	StatusRead
	StatusError
)

var statusNames = map[Status]string{
	StatusNone:    "",
	StatusSending: "sending",
	StatusSent:    "sent",
	StatusRead:    "read",
	StatusError:   "error",
}

func (s Status) String() string {
	return statusNames[s]
}

// ParseStatus parses a status name. Unknown names map to StatusNone so they
// render without a status indicator.
func ParseStatus(name string) Status {
	for s, n := range statusNames {
		if n == name {
			return s
		}
	}
	return StatusNone
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

// ReactionStatus is the confirmation status of a reaction.
type ReactionStatus int

const (
	ReactionSent ReactionStatus = iota
	ReactionSending
	ReactionError
)

func (s ReactionStatus) String() string {
	switch s {
	case ReactionSending:
		return "sending"
	case ReactionError:
		return "error"
	default:
		return "sent"
	}
}

// ParseReactionStatus parses a reaction status name. Unknown names map to
// ReactionSent, which shows neither a pending nor a retry affordance.
func ParseReactionStatus(name string) ReactionStatus {
	switch name {
	case "sending":
		return ReactionSending
	case "error":
		return ReactionError
	default:
		return ReactionSent
	}
}

func (s ReactionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ReactionStatus) UnmarshalText(b []byte) error {
	*s = ParseReactionStatus(string(b))
	return nil
}

// AttachmentType is the closed set of attachment kinds.
type AttachmentType int

const (
	AttachmentImage AttachmentType = iota
	AttachmentVideo
)

func (t AttachmentType) String() string {
	if t == AttachmentVideo {
		return "video"
	}
	return "image"
}

// ParseAttachmentType parses "image" or "video".
func ParseAttachmentType(name string) (AttachmentType, error) {
	switch name {
	case "image":
		return AttachmentImage, nil
	case "video":
		return AttachmentVideo, nil
	}
	return 0, fmt.Errorf("unknown attachment type %q", name)
}

func (t AttachmentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *AttachmentType) UnmarshalText(b []byte) error {
	v, err := ParseAttachmentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
