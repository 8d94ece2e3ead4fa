package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
	"github.com/arvik/support-analytics-backend/internal/core/utils"
)

// ConversationRepository is the secondary adapter for conversation,
// message and reporting-event persistence.
type ConversationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new conversation repository.
func NewConversationRepository(pool *pgxpool.Pool) ports.ConversationRepository {
	return &ConversationRepository{pool: pool}
}

const conversationColumns = `id, account_id, inbox_id, assignee_id, status, first_replied_at, resolved_at, created_at, updated_at`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var (
		conversation   domain.Conversation
		assigneeID     pgtype.Int8
		firstRepliedAt pgtype.Timestamptz
		resolvedAt     pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&conversation.ID,
		&conversation.AccountID,
		&conversation.InboxID,
		&assigneeID,
		&conversation.Status,
		&firstRepliedAt,
		&resolvedAt,
		&conversation.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	conversation.AssigneeID = utils.FromNullInt8(assigneeID)
	conversation.FirstRepliedAt = utils.FromNullTimestamptz(firstRepliedAt)
	conversation.ResolvedAt = utils.FromNullTimestamptz(resolvedAt)
	conversation.UpdatedAt = utils.FromNullTimestamptz(updatedAt)
	conversation.CreatedAt = conversation.CreatedAt.UTC()
	return &conversation, nil
}

// Create persists a new conversation.
func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	const query = `
INSERT INTO conversations (account_id, inbox_id, assignee_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + conversationColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		conversation.AccountID,
		conversation.InboxID,
		utils.ToNullInt8(conversation.AssigneeID),
		string(conversation.Status),
		conversation.CreatedAt,
	)
	return scanConversation(row)
}

// GetByID retrieves a conversation scoped to an account.
func (r *ConversationRepository) GetByID(ctx context.Context, accountID, conversationID int64) (*domain.Conversation, error) {
	const query = `
SELECT ` + conversationColumns + `
FROM conversations
WHERE account_id = $1 AND id = $2`

	conversation, err := scanConversation(GetDBTX(ctx, r.pool).QueryRow(ctx, query, accountID, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, err
	}
	return conversation, nil
}

// Update persists the mutable conversation fields.
func (r *ConversationRepository) Update(ctx context.Context, conversation *domain.Conversation) error {
	const query = `
UPDATE conversations
SET assignee_id = $3, status = $4, first_replied_at = $5, resolved_at = $6, updated_at = $7
WHERE account_id = $1 AND id = $2`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		conversation.AccountID,
		conversation.ID,
		utils.ToNullInt8(conversation.AssigneeID),
		string(conversation.Status),
		utils.ToNullTimestamptz(conversation.FirstRepliedAt),
		utils.ToNullTimestamptz(conversation.ResolvedAt),
		utils.ToNullTimestamptz(conversation.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// CreateMessage persists a message in a conversation.
func (r *ConversationRepository) CreateMessage(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	const query = `
INSERT INTO messages (conversation_id, account_id, direction, content, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, conversation_id, account_id, direction, content, deleted_at, created_at`

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		message.ConversationID,
		message.AccountID,
		string(message.Direction),
		message.Content,
		message.CreatedAt,
	)

	var (
		created   domain.Message
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&created.ID,
		&created.ConversationID,
		&created.AccountID,
		&created.Direction,
		&created.Content,
		&deletedAt,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	created.DeletedAt = utils.FromNullTimestamptz(deletedAt)
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

// SoftDeleteMessage stamps deleted_at on a message. The row stays behind
// so message counts keep including it.
func (r *ConversationRepository) SoftDeleteMessage(ctx context.Context, accountID, conversationID, messageID int64) error {
	const query = `
UPDATE messages
SET deleted_at = $4
WHERE account_id = $1 AND conversation_id = $2 AND id = $3 AND deleted_at IS NULL`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, accountID, conversationID, messageID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// CreateReportingEvent persists a measured conversation milestone.
func (r *ConversationRepository) CreateReportingEvent(ctx context.Context, event *domain.ReportingEvent) (*domain.ReportingEvent, error) {
	const query = `
INSERT INTO reporting_events (account_id, inbox_id, user_id, conversation_id, name, value, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		event.AccountID,
		event.InboxID,
		utils.ToNullInt8(event.UserID),
		event.ConversationID,
		string(event.Name),
		event.Value,
		event.CreatedAt,
	)

	created := *event
	if err := row.Scan(&created.ID); err != nil {
		return nil, err
	}
	return &created, nil
}
