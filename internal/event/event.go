package event

import "time"

// Kind tags the normalized variant of an inbound platform event.
type Kind string

const (
	KindDirectMessage Kind = "direct_message"
	KindComment       Kind = "comment"
	KindMention       Kind = "mention"
)

// Inbound is one normalized webhook event. It exists only for the duration
// of a single dispatch and is never persisted. ID together with the owning
// tenant's id forms the deduplication key: the platform may redeliver the
// same event, and two tenants may legitimately see the same raw id.
type Inbound struct {
	// ID is the platform event identifier: the message mid for direct
	// messages, the comment id for comments, the story media id for
	// mentions. For comments it doubles as the reply target.
	ID string

	// RoutingToken addresses the owning tenant; it comes from the webhook
	// delivery URL, never from the payload body.
	RoutingToken string

	Kind     Kind
	SenderID string
	// Username is the commenting account's handle, set for comment events.
	Username string
	Text     string

	ReceivedAt time.Time
}
