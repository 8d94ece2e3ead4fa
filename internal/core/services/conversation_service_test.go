package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/mocks"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
	"github.com/arvik/support-analytics-backend/internal/core/services"
)

type conversationFixture struct {
	repo       *mocks.MockConversationRepository
	inboxes    *mocks.MockInboxRepository
	tx         *mocks.MockTransactionManager
	dispatcher *mocks.MockEventDispatcher
	svc        ports.ConversationService
}

func newConversationFixture() *conversationFixture {
	f := &conversationFixture{
		repo:       mocks.NewMockConversationRepository(),
		inboxes:    mocks.NewMockInboxRepository(),
		tx:         mocks.NewMockTransactionManager(),
		dispatcher: mocks.NewMockEventDispatcher(),
	}
	f.svc = services.NewConversationService(f.repo, f.inboxes, f.tx, f.dispatcher)
	return f
}

func TestConversationService_CreateConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newConversationFixture()

		f.inboxes.On("GetByID", ctx, int64(1), int64(2)).
			Return(&domain.Inbox{ID: 2, AccountID: 1}, nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Conversation")).
			Return(&domain.Conversation{ID: 10, AccountID: 1, InboxID: 2, Status: domain.ConversationOpen}, nil)
		f.dispatcher.On("Dispatch", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventConversationCreated && e.ConversationID == 10
		})).Return()

		conversation, err := f.svc.CreateConversation(ctx, ports.CreateConversationParams{AccountID: 1, InboxID: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(10), conversation.ID)
		f.repo.AssertExpectations(t)
		f.dispatcher.AssertExpectations(t)
	})

	t.Run("inbox required", func(t *testing.T) {
		f := newConversationFixture()

		_, err := f.svc.CreateConversation(ctx, ports.CreateConversationParams{AccountID: 1})

		assert.ErrorIs(t, err, apperrors.ErrInboxRequired)
		f.repo.AssertNotCalled(t, "Create")
	})

	t.Run("inbox must belong to the account", func(t *testing.T) {
		f := newConversationFixture()

		f.inboxes.On("GetByID", ctx, int64(1), int64(99)).
			Return(nil, apperrors.ErrInboxNotFound)

		_, err := f.svc.CreateConversation(ctx, ports.CreateConversationParams{AccountID: 1, InboxID: 99})

		assert.ErrorIs(t, err, apperrors.ErrInboxNotFound)
		f.repo.AssertNotCalled(t, "Create")
	})
}

func TestConversationService_CreateMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("first outgoing message records first_response event", func(t *testing.T) {
		f := newConversationFixture()
		assignee := int64(7)

		f.repo.On("GetByID", ctx, int64(1), int64(10)).
			Return(&domain.Conversation{ID: 10, AccountID: 1, InboxID: 2, AssigneeID: &assignee, Status: domain.ConversationOpen}, nil)
		f.tx.On("WithTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.repo.On("CreateMessage", ctx, mock.AnythingOfType("*domain.Message")).
			Return(&domain.Message{ID: 100, ConversationID: 10, AccountID: 1, Direction: domain.MessageOutgoing, Content: "hello"}, nil)
		f.repo.On("Update", ctx, mock.AnythingOfType("*domain.Conversation")).Return(nil)
		f.repo.On("CreateReportingEvent", ctx, mock.MatchedBy(func(e *domain.ReportingEvent) bool {
			return e.Name == domain.ReportingEventFirstResponse &&
				e.ConversationID == 10 &&
				e.InboxID == 2 &&
				e.UserID != nil && *e.UserID == assignee &&
				e.Value >= 0
		})).Return(&domain.ReportingEvent{ID: 1}, nil)
		f.dispatcher.On("Dispatch", mock.Anything).Return()

		message, err := f.svc.CreateMessage(ctx, ports.CreateMessageParams{
			AccountID:      1,
			ConversationID: 10,
			Direction:      "outgoing",
			Content:        "hello",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(100), message.ID)
		f.repo.AssertExpectations(t)
	})

	t.Run("second outgoing message records nothing", func(t *testing.T) {
		f := newConversationFixture()
		alreadyReplied := day("2024-03-05")

		f.repo.On("GetByID", ctx, int64(1), int64(10)).
			Return(&domain.Conversation{ID: 10, AccountID: 1, InboxID: 2, Status: domain.ConversationOpen, FirstRepliedAt: &alreadyReplied}, nil)
		f.tx.On("WithTransaction", ctx, mock.Anything).Return(nil)
		f.repo.On("CreateMessage", ctx, mock.Anything).
			Return(&domain.Message{ID: 101, ConversationID: 10, Direction: domain.MessageOutgoing}, nil)
		f.dispatcher.On("Dispatch", mock.Anything).Return()

		_, err := f.svc.CreateMessage(ctx, ports.CreateMessageParams{
			AccountID:      1,
			ConversationID: 10,
			Direction:      "outgoing",
			Content:        "follow-up",
		})

		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "CreateReportingEvent")
		f.repo.AssertNotCalled(t, "Update")
	})

	t.Run("incoming message never records a reply", func(t *testing.T) {
		f := newConversationFixture()

		f.repo.On("GetByID", ctx, int64(1), int64(10)).
			Return(&domain.Conversation{ID: 10, AccountID: 1, InboxID: 2, Status: domain.ConversationOpen}, nil)
		f.tx.On("WithTransaction", ctx, mock.Anything).Return(nil)
		f.repo.On("CreateMessage", ctx, mock.Anything).
			Return(&domain.Message{ID: 102, ConversationID: 10, Direction: domain.MessageIncoming}, nil)
		f.dispatcher.On("Dispatch", mock.Anything).Return()

		_, err := f.svc.CreateMessage(ctx, ports.CreateMessageParams{
			AccountID:      1,
			ConversationID: 10,
			Direction:      "incoming",
			Content:        "are you there?",
		})

		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "CreateReportingEvent")
	})

	t.Run("invalid direction rejected before any read", func(t *testing.T) {
		f := newConversationFixture()

		_, err := f.svc.CreateMessage(ctx, ports.CreateMessageParams{
			AccountID:      1,
			ConversationID: 10,
			Direction:      "sideways",
			Content:        "hello",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidMessageDirection)
		f.repo.AssertNotCalled(t, "GetByID")
	})

	t.Run("blank content rejected", func(t *testing.T) {
		f := newConversationFixture()

		_, err := f.svc.CreateMessage(ctx, ports.CreateMessageParams{
			AccountID:      1,
			ConversationID: 10,
			Direction:      "incoming",
			Content:        "   ",
		})

		assert.ErrorIs(t, err, apperrors.ErrMessageContentRequired)
	})
}

func TestConversationService_ResolveConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("records conversation_resolved event with latency", func(t *testing.T) {
		f := newConversationFixture()

		f.repo.On("GetByID", ctx, int64(1), int64(10)).
			Return(&domain.Conversation{ID: 10, AccountID: 1, InboxID: 2, Status: domain.ConversationOpen, CreatedAt: day("2024-03-05")}, nil)
		f.tx.On("WithTransaction", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Conversation) bool {
			return c.Status == domain.ConversationResolved && c.ResolvedAt != nil
		})).Return(nil)
		f.repo.On("CreateReportingEvent", ctx, mock.MatchedBy(func(e *domain.ReportingEvent) bool {
			return e.Name == domain.ReportingEventConversationResolved && e.Value > 0
		})).Return(&domain.ReportingEvent{ID: 2}, nil)
		f.dispatcher.On("Dispatch", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventConversationResolved
		})).Return()

		conversation, err := f.svc.ResolveConversation(ctx, ports.ResolveConversationParams{AccountID: 1, ConversationID: 10})

		require.NoError(t, err)
		assert.Equal(t, domain.ConversationResolved, conversation.Status)
		f.repo.AssertExpectations(t)
	})

	t.Run("already resolved conflicts", func(t *testing.T) {
		f := newConversationFixture()

		f.repo.On("GetByID", ctx, int64(1), int64(10)).
			Return(&domain.Conversation{ID: 10, AccountID: 1, Status: domain.ConversationResolved}, nil)

		_, err := f.svc.ResolveConversation(ctx, ports.ResolveConversationParams{AccountID: 1, ConversationID: 10})

		assert.ErrorIs(t, err, apperrors.ErrConversationAlreadyResolved)
		f.repo.AssertNotCalled(t, "Update")
		f.repo.AssertNotCalled(t, "CreateReportingEvent")
	})
}

func TestConversationService_DeleteMessage(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture()

	f.repo.On("SoftDeleteMessage", ctx, int64(1), int64(10), int64(100)).Return(nil)

	err := f.svc.DeleteMessage(ctx, ports.DeleteMessageParams{AccountID: 1, ConversationID: 10, MessageID: 100})

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}
