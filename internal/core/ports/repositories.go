package ports

import (
	"context"
	"time"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
)

// DailyCount is one grouped row of a count-by-day query. Adapters return
// only days that had rows; the report service default-fills the rest.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// DailyAverage is one grouped row of an average-by-day query. Samples is
// the number of rows behind Average and is always positive for returned
// rows; gap days never appear here.
type DailyAverage struct {
	Day     time.Time
	Average float64
	Samples int64
}

// ScopeReader is the uniform relation surface every resolved report scope
// exposes. The aggregation strategies depend only on this contract, never
// on whether the scope is an account, an inbox or an agent.
//
// Message counts include soft-deleted messages; that matches what the
// historical dashboards always reported.
type ScopeReader interface {
	ConversationCountsByDay(ctx context.Context, r domain.DateRange) ([]DailyCount, error)
	MessageCountsByDay(ctx context.Context, r domain.DateRange, direction domain.MessageDirection) ([]DailyCount, error)
	ResolvedConversationCountsByDay(ctx context.Context, r domain.DateRange) ([]DailyCount, error)
	EventValueAveragesByDay(ctx context.Context, r domain.DateRange, name domain.ReportingEventName) ([]DailyAverage, error)
}

// ScopeResolver turns a scope reference into a reader. Resolution happens
// once per request; inbox and agent scopes fail with ErrInboxNotFound /
// ErrAgentNotFound when the entity does not exist under the account.
type ScopeResolver interface {
	Resolve(ctx context.Context, ref domain.ScopeRef) (ScopeReader, error)
}

// ConversationRepository persists conversations, their messages and the
// reporting events derived from them.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	GetByID(ctx context.Context, accountID, conversationID int64) (*domain.Conversation, error)
	Update(ctx context.Context, conversation *domain.Conversation) error
	CreateMessage(ctx context.Context, message *domain.Message) (*domain.Message, error)
	SoftDeleteMessage(ctx context.Context, accountID, conversationID, messageID int64) error
	CreateReportingEvent(ctx context.Context, event *domain.ReportingEvent) (*domain.ReportingEvent, error)
}

// InboxRepository reads inboxes for scope checks and ingest validation.
type InboxRepository interface {
	GetByID(ctx context.Context, accountID, inboxID int64) (*domain.Inbox, error)
}

// UserRepository persists account members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, accountID, userID int64) (*domain.User, error)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
