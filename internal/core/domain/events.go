package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventConversationCreated  EventType = "CONVERSATION_CREATED"
	EventMessageCreated       EventType = "MESSAGE_CREATED"
	EventConversationResolved EventType = "CONVERSATION_RESOLVED"
)

// Event is a conversation lifecycle notification. The dispatcher fans it
// out to the listeners configured at startup; over the wire it is routed to
// the account's dashboard room.
type Event struct {
	Type           EventType   `json:"type"`
	Payload        interface{} `json:"payload"`
	AccountID      int64       `json:"accountId"`
	ConversationID int64       `json:"conversationId"`
}
