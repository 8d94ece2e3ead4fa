package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// InboxRepository is the secondary adapter for inbox reads.
type InboxRepository struct {
	pool *pgxpool.Pool
}

var _ ports.InboxRepository = (*InboxRepository)(nil)

// NewInboxRepository creates a new inbox repository.
func NewInboxRepository(pool *pgxpool.Pool) ports.InboxRepository {
	return &InboxRepository{pool: pool}
}

// GetByID retrieves an inbox scoped to an account.
func (r *InboxRepository) GetByID(ctx context.Context, accountID, inboxID int64) (*domain.Inbox, error) {
	const query = `
SELECT id, account_id, name, channel_type, created_at
FROM inboxes
WHERE account_id = $1 AND id = $2`

	var inbox domain.Inbox
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, accountID, inboxID).Scan(
		&inbox.ID,
		&inbox.AccountID,
		&inbox.Name,
		&inbox.ChannelType,
		&inbox.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInboxNotFound
		}
		return nil, err
	}

	inbox.CreatedAt = inbox.CreatedAt.UTC()
	return &inbox, nil
}
