package domain

import (
	"time"

	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

// ConversationStatus represents the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationOpen     ConversationStatus = "open"
	ConversationResolved ConversationStatus = "resolved"
)

// Conversation is a thread of messages inside an inbox, optionally assigned
// to an agent.
type Conversation struct {
	ID             int64
	AccountID      int64
	InboxID        int64
	AssigneeID     *int64
	Status         ConversationStatus
	FirstRepliedAt *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// NewConversation creates an open conversation for an inbox.
func NewConversation(accountID, inboxID int64, assigneeID *int64) *Conversation {
	return &Conversation{
		AccountID:  accountID,
		InboxID:    inboxID,
		AssigneeID: assigneeID,
		Status:     ConversationOpen,
		CreatedAt:  time.Now().UTC(),
	}
}

// Resolve transitions the conversation to resolved and returns the
// resolution latency. Resolving twice is a business rule violation.
func (c *Conversation) Resolve(now time.Time) (time.Duration, error) {
	if c.Status == ConversationResolved {
		return 0, apperrors.ErrConversationAlreadyResolved
	}

	c.Status = ConversationResolved
	resolvedAt := now.UTC()
	c.ResolvedAt = &resolvedAt
	c.UpdatedAt = &resolvedAt
	return resolvedAt.Sub(c.CreatedAt), nil
}

// RecordFirstReply marks the first outgoing reply and returns the first
// response latency. Returns false if a reply was already recorded.
func (c *Conversation) RecordFirstReply(now time.Time) (time.Duration, bool) {
	if c.FirstRepliedAt != nil {
		return 0, false
	}

	repliedAt := now.UTC()
	c.FirstRepliedAt = &repliedAt
	c.UpdatedAt = &repliedAt
	return repliedAt.Sub(c.CreatedAt), true
}

// MessageDirection tells incoming (contact to agent) from outgoing
// (agent to contact) messages.
type MessageDirection string

const (
	MessageIncoming MessageDirection = "incoming"
	MessageOutgoing MessageDirection = "outgoing"
)

// ParseMessageDirection validates a direction received at the boundary.
func ParseMessageDirection(direction string) (MessageDirection, error) {
	switch MessageDirection(direction) {
	case MessageIncoming, MessageOutgoing:
		return MessageDirection(direction), nil
	}
	return "", apperrors.ErrInvalidMessageDirection
}

// Message belongs to a conversation. DeletedAt soft-deletes the message for
// the conversation view; report counts still include soft-deleted rows.
type Message struct {
	ID             int64
	ConversationID int64
	AccountID      int64
	Direction      MessageDirection
	Content        string
	DeletedAt      *time.Time
	CreatedAt      time.Time
}

// ReportingEventName names a measured conversation milestone.
type ReportingEventName string

const (
	ReportingEventFirstResponse        ReportingEventName = "first_response"
	ReportingEventConversationResolved ReportingEventName = "conversation_resolved"
)

// ReportingEvent is a measured milestone on a conversation; Value is the
// latency in seconds. These rows feed the average-by-day metrics. The
// account, inbox and user columns are denormalized so every report scope
// can filter events without joining through conversations.
type ReportingEvent struct {
	ID             int64
	AccountID      int64
	InboxID        int64
	UserID         *int64
	ConversationID int64
	Name           ReportingEventName
	Value          float64
	CreatedAt      time.Time
}
