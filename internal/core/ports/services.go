package ports

import (
	"context"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
)

// ReportQuery carries the raw report parameters into the engine. ScopeType,
// Metric, Since and Until arrive unvalidated from the boundary; the engine
// validates them before touching the store. Since and Until accept an epoch
// seconds value, a date or a date-time, as string or time.Time.
type ReportQuery struct {
	AccountID int64
	ScopeType string
	ScopeID   int64
	Metric    string
	Since     any
	Until     any
}

// SummaryQuery is a ReportQuery without a metric: the summary always
// computes the full fixed set.
type SummaryQuery struct {
	AccountID int64
	ScopeType string
	ScopeID   int64
	Since     any
	Until     any
}

// ReportService is the metric aggregation engine's public surface.
type ReportService interface {
	// TimeSeries computes one metric as a gap-free day series.
	TimeSeries(ctx context.Context, query ReportQuery) (*domain.TimeSeries, error)
	// LegacySeries computes the same series in the historical flattened
	// shape (value + epoch-seconds timestamp pairs).
	LegacySeries(ctx context.Context, query ReportQuery) ([]domain.LegacyPoint, error)
	// Summary computes all six metrics concurrently and folds them into
	// scalars. Any single metric failure fails the whole summary.
	Summary(ctx context.Context, query SummaryQuery) (*domain.Summary, error)
}

// CreateConversationParams defines the input for opening a conversation.
type CreateConversationParams struct {
	AccountID  int64
	InboxID    int64
	AssigneeID *int64
}

// CreateMessageParams defines the input for appending a message.
type CreateMessageParams struct {
	AccountID      int64
	ConversationID int64
	Direction      string
	Content        string
}

// ResolveConversationParams defines the input for resolving a conversation.
type ResolveConversationParams struct {
	AccountID      int64
	ConversationID int64
	ActorID        int64
}

// DeleteMessageParams defines the input for soft-deleting a message.
type DeleteMessageParams struct {
	AccountID      int64
	ConversationID int64
	MessageID      int64
}

// ConversationService is the ingest side: the writes that produce the rows
// the report engine aggregates.
type ConversationService interface {
	CreateConversation(ctx context.Context, params CreateConversationParams) (*domain.Conversation, error)
	CreateMessage(ctx context.Context, params CreateMessageParams) (*domain.Message, error)
	ResolveConversation(ctx context.Context, params ResolveConversationParams) (*domain.Conversation, error)
	DeleteMessage(ctx context.Context, params DeleteMessageParams) error
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string, accountID int64, role domain.UserRole) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// EventListener receives dispatched conversation lifecycle events.
type EventListener interface {
	HandleEvent(event domain.Event)
}

// EventDispatcher fans conversation lifecycle events out to the listeners
// registered at startup.
type EventDispatcher interface {
	Dispatch(event domain.Event)
	Shutdown()
}
