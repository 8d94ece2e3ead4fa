package services

import (
	"context"
	"strings"
	"time"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// ConversationService implements the ingest side: the conversation,
// message and reporting-event writes the report engine later aggregates.
type ConversationService struct {
	conversationRepo ports.ConversationRepository
	inboxRepo        ports.InboxRepository
	txManager        ports.TransactionManager
	dispatcher       ports.EventDispatcher
}

var _ ports.ConversationService = (*ConversationService)(nil)

// NewConversationService creates a new conversation service.
func NewConversationService(
	conversationRepo ports.ConversationRepository,
	inboxRepo ports.InboxRepository,
	txManager ports.TransactionManager,
	dispatcher ports.EventDispatcher,
) ports.ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		inboxRepo:        inboxRepo,
		txManager:        txManager,
		dispatcher:       dispatcher,
	}
}

// CreateConversation opens a conversation in an inbox of the account.
func (s *ConversationService) CreateConversation(ctx context.Context, params ports.CreateConversationParams) (*domain.Conversation, error) {
	if params.InboxID <= 0 {
		return nil, apperrors.ErrInboxRequired
	}

	// The inbox must belong to the account before anything is written.
	if _, err := s.inboxRepo.GetByID(ctx, params.AccountID, params.InboxID); err != nil {
		return nil, err
	}

	conversation := domain.NewConversation(params.AccountID, params.InboxID, params.AssigneeID)
	created, err := s.conversationRepo.Create(ctx, conversation)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(domain.Event{
		Type:           domain.EventConversationCreated,
		Payload:        created,
		AccountID:      created.AccountID,
		ConversationID: created.ID,
	})

	return created, nil
}

// CreateMessage appends a message to a conversation. The first outgoing
// message also records the first_response reporting event, atomically with
// the message itself.
func (s *ConversationService) CreateMessage(ctx context.Context, params ports.CreateMessageParams) (*domain.Message, error) {
	direction, err := domain.ParseMessageDirection(params.Direction)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, apperrors.ErrMessageContentRequired
	}

	conversation, err := s.conversationRepo.GetByID(ctx, params.AccountID, params.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ConversationID: conversation.ID,
		AccountID:      conversation.AccountID,
		Direction:      direction,
		Content:        params.Content,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created, err := s.conversationRepo.CreateMessage(ctx, message)
		if err != nil {
			return err
		}
		message = created

		if direction != domain.MessageOutgoing {
			return nil
		}

		latency, first := conversation.RecordFirstReply(message.CreatedAt)
		if !first {
			return nil
		}

		if err := s.conversationRepo.Update(ctx, conversation); err != nil {
			return err
		}

		_, err = s.conversationRepo.CreateReportingEvent(ctx, &domain.ReportingEvent{
			AccountID:      conversation.AccountID,
			InboxID:        conversation.InboxID,
			UserID:         conversation.AssigneeID,
			ConversationID: conversation.ID,
			Name:           domain.ReportingEventFirstResponse,
			Value:          latency.Seconds(),
			CreatedAt:      message.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(domain.Event{
		Type:           domain.EventMessageCreated,
		Payload:        message,
		AccountID:      conversation.AccountID,
		ConversationID: conversation.ID,
	})

	return message, nil
}

// ResolveConversation marks a conversation resolved and records the
// conversation_resolved reporting event with the resolution latency.
func (s *ConversationService) ResolveConversation(ctx context.Context, params ports.ResolveConversationParams) (*domain.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, params.AccountID, params.ConversationID)
	if err != nil {
		return nil, err
	}

	latency, err := conversation.Resolve(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.conversationRepo.Update(ctx, conversation); err != nil {
			return err
		}

		_, err := s.conversationRepo.CreateReportingEvent(ctx, &domain.ReportingEvent{
			AccountID:      conversation.AccountID,
			InboxID:        conversation.InboxID,
			UserID:         conversation.AssigneeID,
			ConversationID: conversation.ID,
			Name:           domain.ReportingEventConversationResolved,
			Value:          latency.Seconds(),
			CreatedAt:      *conversation.ResolvedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(domain.Event{
		Type:           domain.EventConversationResolved,
		Payload:        conversation,
		AccountID:      conversation.AccountID,
		ConversationID: conversation.ID,
	})

	return conversation, nil
}

// DeleteMessage soft-deletes a message. The row stays behind for the
// report engine; message counts deliberately include deleted messages.
func (s *ConversationService) DeleteMessage(ctx context.Context, params ports.DeleteMessageParams) error {
	return s.conversationRepo.SoftDeleteMessage(ctx, params.AccountID, params.ConversationID, params.MessageID)
}
