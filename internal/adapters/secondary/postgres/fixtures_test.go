package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
)

func createAccount(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO accounts (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createInbox(t *testing.T, accountID int64, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO inboxes (account_id, name, channel_type) VALUES ($1, $2, 'email') RETURNING id`,
		accountID, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createAgent(t *testing.T, accountID int64, email string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO users (account_id, full_name, email, password_hash, role)
		 VALUES ($1, 'Test Agent', $2, 'hash', 'agent') RETURNING id`,
		accountID, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func createConversationAt(t *testing.T, accountID, inboxID int64, assigneeID *int64, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO conversations (account_id, inbox_id, assignee_id, status, created_at)
		 VALUES ($1, $2, $3, 'open', $4) RETURNING id`,
		accountID, inboxID, assigneeID, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func createMessageAt(t *testing.T, accountID, conversationID int64, direction domain.MessageDirection, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO messages (conversation_id, account_id, direction, content, created_at)
		 VALUES ($1, $2, $3, 'body', $4) RETURNING id`,
		conversationID, accountID, string(direction), createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func createReportingEventAt(t *testing.T, accountID, inboxID int64, userID *int64, conversationID int64, name domain.ReportingEventName, value float64, createdAt time.Time) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO reporting_events (account_id, inbox_id, user_id, conversation_id, name, value, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		accountID, inboxID, userID, conversationID, string(name), value, createdAt)
	require.NoError(t, err)
}

func mustRange(t *testing.T, since, until string) domain.DateRange {
	t.Helper()
	rng, err := domain.NewDateRange(since, until)
	require.NoError(t, err)
	return rng
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}
