package email

import (
	"context"
	"log/slog"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails. It
// listens on the event stream and mails the assigned agent when one of
// their conversations is resolved.
type MockSMTPNotifier struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.EventListener = (*MockSMTPNotifier)(nil)

// NewMockSMTPNotifier creates a new mock notifier.
// It requires a UserRepository to fetch recipient details.
func NewMockSMTPNotifier(userRepo ports.UserRepository, logger *slog.Logger) *MockSMTPNotifier {
	return &MockSMTPNotifier{
		userRepo: userRepo,
		logger:   logger.With("component", "email_notifier"),
	}
}

// HandleEvent implements ports.EventListener. Only resolution events
// produce mail; everything else passes through silently.
func (n *MockSMTPNotifier) HandleEvent(event domain.Event) {
	if event.Type != domain.EventConversationResolved {
		return
	}

	conversation, ok := event.Payload.(*domain.Conversation)
	if !ok || conversation.AssigneeID == nil {
		return
	}

	// The dispatching request may already be gone; notifications run on
	// their own context.
	ctx := context.Background()

	user, err := n.userRepo.GetByID(ctx, conversation.AccountID, *conversation.AssigneeID)
	if err != nil {
		n.logger.Error("failed to get user for notification",
			"user_id", *conversation.AssigneeID,
			"error", err,
		)
		return
	}

	// Log the mock email instead of talking to an SMTP server.
	n.logger.Info("mock email sent",
		"to_name", user.FullName,
		"to_email", user.Email,
		"subject", "Conversation resolved",
		"conversation_id", conversation.ID,
	)
}
