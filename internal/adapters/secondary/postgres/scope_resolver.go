package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// ScopeResolver turns scope references into concrete readers. Account scope
// resolves unconditionally; inbox and agent scopes are checked for existence
// under the account first, so a bad ID fails the request before any
// aggregation query runs.
type ScopeResolver struct {
	pool *pgxpool.Pool
}

var _ ports.ScopeResolver = (*ScopeResolver)(nil)

// NewScopeResolver creates a new scope resolver.
func NewScopeResolver(pool *pgxpool.Pool) ports.ScopeResolver {
	return &ScopeResolver{pool: pool}
}

// Resolve returns the reader for the referenced scope.
func (r *ScopeResolver) Resolve(ctx context.Context, ref domain.ScopeRef) (ports.ScopeReader, error) {
	switch ref.Kind {
	case domain.ScopeAccount:
		return &accountReader{pool: r.pool, accountID: ref.AccountID}, nil

	case domain.ScopeInbox:
		const query = `SELECT id FROM inboxes WHERE account_id = $1 AND id = $2`
		var id int64
		if err := r.pool.QueryRow(ctx, query, ref.AccountID, ref.ID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrInboxNotFound
			}
			return nil, err
		}
		return &inboxReader{pool: r.pool, accountID: ref.AccountID, inboxID: ref.ID}, nil

	case domain.ScopeAgent:
		const query = `SELECT id FROM users WHERE account_id = $1 AND id = $2`
		var id int64
		if err := r.pool.QueryRow(ctx, query, ref.AccountID, ref.ID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrAgentNotFound
			}
			return nil, err
		}
		return &agentReader{pool: r.pool, accountID: ref.AccountID, agentID: ref.ID}, nil
	}

	return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidScopeKind, ref.Kind)
}

// rangeBounds converts an inclusive day range to half-open query bounds.
func rangeBounds(r domain.DateRange) (time.Time, time.Time) {
	return r.Since, r.Until.AddDate(0, 0, 1)
}

func queryDailyCounts(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]ports.DailyCount, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]ports.DailyCount, 0)
	for rows.Next() {
		var row ports.DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return nil, err
		}
		row.Day = row.Day.UTC()
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func queryDailyAverages(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]ports.DailyAverage, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	averages := make([]ports.DailyAverage, 0)
	for rows.Next() {
		var row ports.DailyAverage
		if err := rows.Scan(&row.Day, &row.Average, &row.Samples); err != nil {
			return nil, err
		}
		row.Day = row.Day.UTC()
		averages = append(averages, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return averages, nil
}

// accountReader aggregates over everything in the account.
type accountReader struct {
	pool      *pgxpool.Pool
	accountID int64
}

var _ ports.ScopeReader = (*accountReader)(nil)

func (r *accountReader) ConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND created_at >= $2 AND created_at < $3
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, since, until)
}

// Message counts deliberately ignore deleted_at: soft-deleted messages
// stay in the totals.
func (r *accountReader) MessageCountsByDay(ctx context.Context, rng domain.DateRange, direction domain.MessageDirection) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM messages
WHERE account_id = $1 AND direction = $2 AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, string(direction), since, until)
}

// Resolutions bucket by the conversation's creation day, not the
// resolution day. The dashboards have always read the series that way.
func (r *accountReader) ResolvedConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND status = 'resolved' AND created_at >= $2 AND created_at < $3
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, since, until)
}

func (r *accountReader) EventValueAveragesByDay(ctx context.Context, rng domain.DateRange, name domain.ReportingEventName) ([]ports.DailyAverage, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, AVG(value), COUNT(value)
FROM reporting_events
WHERE account_id = $1 AND name = $2 AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyAverages(ctx, r.pool, query, r.accountID, string(name), since, until)
}

// inboxReader aggregates over a single inbox. Messages carry no inbox
// column, so they go through their conversation.
type inboxReader struct {
	pool      *pgxpool.Pool
	accountID int64
	inboxID   int64
}

var _ ports.ScopeReader = (*inboxReader)(nil)

func (r *inboxReader) ConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND inbox_id = $2 AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.inboxID, since, until)
}

func (r *inboxReader) MessageCountsByDay(ctx context.Context, rng domain.DateRange, direction domain.MessageDirection) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', m.created_at) AS day, COUNT(*)
FROM messages m
JOIN conversations c ON m.conversation_id = c.id
WHERE c.account_id = $1 AND c.inbox_id = $2 AND m.direction = $3
  AND m.created_at >= $4 AND m.created_at < $5
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.inboxID, string(direction), since, until)
}

func (r *inboxReader) ResolvedConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND inbox_id = $2 AND status = 'resolved'
  AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.inboxID, since, until)
}

func (r *inboxReader) EventValueAveragesByDay(ctx context.Context, rng domain.DateRange, name domain.ReportingEventName) ([]ports.DailyAverage, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, AVG(value), COUNT(value)
FROM reporting_events
WHERE account_id = $1 AND inbox_id = $2 AND name = $3 AND created_at >= $4 AND created_at < $5
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyAverages(ctx, r.pool, query, r.accountID, r.inboxID, string(name), since, until)
}

// agentReader aggregates over conversations assigned to one agent.
type agentReader struct {
	pool      *pgxpool.Pool
	accountID int64
	agentID   int64
}

var _ ports.ScopeReader = (*agentReader)(nil)

func (r *agentReader) ConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND assignee_id = $2 AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.agentID, since, until)
}

func (r *agentReader) MessageCountsByDay(ctx context.Context, rng domain.DateRange, direction domain.MessageDirection) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', m.created_at) AS day, COUNT(*)
FROM messages m
JOIN conversations c ON m.conversation_id = c.id
WHERE c.account_id = $1 AND c.assignee_id = $2 AND m.direction = $3
  AND m.created_at >= $4 AND m.created_at < $5
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.agentID, string(direction), since, until)
}

func (r *agentReader) ResolvedConversationCountsByDay(ctx context.Context, rng domain.DateRange) ([]ports.DailyCount, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, COUNT(*)
FROM conversations
WHERE account_id = $1 AND assignee_id = $2 AND status = 'resolved'
  AND created_at >= $3 AND created_at < $4
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyCounts(ctx, r.pool, query, r.accountID, r.agentID, since, until)
}

func (r *agentReader) EventValueAveragesByDay(ctx context.Context, rng domain.DateRange, name domain.ReportingEventName) ([]ports.DailyAverage, error) {
	const query = `
SELECT date_trunc('day', created_at) AS day, AVG(value), COUNT(value)
FROM reporting_events
WHERE account_id = $1 AND user_id = $2 AND name = $3 AND created_at >= $4 AND created_at < $5
GROUP BY 1
ORDER BY 1`

	since, until := rangeBounds(rng)
	return queryDailyAverages(ctx, r.pool, query, r.accountID, r.agentID, string(name), since, until)
}
