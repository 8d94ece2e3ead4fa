package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

func TestConversation_Resolve(t *testing.T) {
	t.Run("records latency and resolved state", func(t *testing.T) {
		conversation := domain.NewConversation(1, 2, nil)
		conversation.CreatedAt = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

		latency, err := conversation.Resolve(time.Date(2024, 3, 5, 11, 30, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.Equal(t, 90*time.Minute, latency)
		assert.Equal(t, domain.ConversationResolved, conversation.Status)
		require.NotNil(t, conversation.ResolvedAt)
		assert.Equal(t, time.Date(2024, 3, 5, 11, 30, 0, 0, time.UTC), *conversation.ResolvedAt)
	})

	t.Run("resolving twice fails", func(t *testing.T) {
		conversation := domain.NewConversation(1, 2, nil)
		_, err := conversation.Resolve(time.Now().UTC())
		require.NoError(t, err)

		_, err = conversation.Resolve(time.Now().UTC())
		assert.ErrorIs(t, err, apperrors.ErrConversationAlreadyResolved)
	})
}

func TestConversation_RecordFirstReply(t *testing.T) {
	conversation := domain.NewConversation(1, 2, nil)
	conversation.CreatedAt = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	latency, first := conversation.RecordFirstReply(time.Date(2024, 3, 5, 10, 0, 15, 0, time.UTC))
	require.True(t, first)
	assert.Equal(t, 15*time.Second, latency)
	require.NotNil(t, conversation.FirstRepliedAt)

	// only the first reply counts
	_, first = conversation.RecordFirstReply(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	assert.False(t, first)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 15, 0, time.UTC), *conversation.FirstRepliedAt)
}

func TestNewUser(t *testing.T) {
	t.Run("hashes password and normalizes email", func(t *testing.T) {
		user, err := domain.NewUser("Ada Lovelace", " Ada@Example.COM ", "strongpass", 1, domain.RoleAgent)
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", user.Email)
		assert.NotEqual(t, "strongpass", user.PasswordHash)
		assert.True(t, user.CheckPassword("strongpass"))
		assert.False(t, user.CheckPassword("wrongpass"))
	})

	t.Run("collects field errors", func(t *testing.T) {
		_, err := domain.NewUser("", "not-an-email", "short", 0, domain.UserRole("owner"))
		require.Error(t, err)

		validationErrors, ok := err.(*apperrors.ValidationErrors)
		require.True(t, ok)
		assert.Contains(t, validationErrors.Errors, "full_name")
		assert.Contains(t, validationErrors.Errors, "email")
		assert.Contains(t, validationErrors.Errors, "password")
		assert.Contains(t, validationErrors.Errors, "account_id")
		assert.Contains(t, validationErrors.Errors, "role")
	})
}
