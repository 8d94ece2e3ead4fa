package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/arvik/support-analytics-backend/internal/adapters/primary/http/middleware"
	"github.com/arvik/support-analytics-backend/internal/adapters/primary/validation"
	"github.com/arvik/support-analytics-backend/internal/auth"
	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// ConversationHandler handles the ingest endpoints: the writes that feed
// the reporting tables.
type ConversationHandler struct {
	conversationService ports.ConversationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(
	conversationService ports.ConversationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "conversations"),
	}
}

// RegisterRoutes sets up the routing for all conversation endpoints. The
// routes are mounted under /accounts/{accountID}/conversations.
func (h *ConversationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateConversation)
	r.Post("/{conversationID}/messages", h.HandleCreateMessage)
	r.Post("/{conversationID}/resolve", h.HandleResolveConversation)
	r.Delete("/{conversationID}/messages/{messageID}", h.HandleDeleteMessage)
}

// --- Request DTOs ---

// CreateConversationRequest is the request body for creating a conversation
type CreateConversationRequest struct {
	InboxID    int64  `json:"inbox_id"`
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

// Validate validates the create conversation request
func (r *CreateConversationRequest) Validate() error {
	v := validation.NewValidator()
	v.Custom("inbox_id", r.InboxID > 0, "This field is required")
	if r.AssigneeID != nil {
		v.Custom("assignee_id", *r.AssigneeID > 0, "Must be a positive integer")
	}
	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CreateMessageRequest is the request body for appending a message
type CreateMessageRequest struct {
	Direction string `json:"direction"`
	Content   string `json:"content"`
}

// Validate validates the create message request
func (r *CreateMessageRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("direction", r.Direction)
	v.OneOf("direction", r.Direction, []string{
		string(domain.MessageIncoming),
		string(domain.MessageOutgoing),
	})
	v.Required("content", r.Content)
	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Response DTOs ---

// ConversationDTO is the API representation of a conversation
type ConversationDTO struct {
	ID             int64      `json:"id"`
	AccountID      int64      `json:"account_id"`
	InboxID        int64      `json:"inbox_id"`
	AssigneeID     *int64     `json:"assignee_id,omitempty"`
	Status         string     `json:"status"`
	FirstRepliedAt *time.Time `json:"first_replied_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MessageDTO is the API representation of a message
type MessageDTO struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Direction      string    `json:"direction"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func toConversationDTO(c *domain.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:             c.ID,
		AccountID:      c.AccountID,
		InboxID:        c.InboxID,
		AssigneeID:     c.AssigneeID,
		Status:         string(c.Status),
		FirstRepliedAt: c.FirstRepliedAt,
		ResolvedAt:     c.ResolvedAt,
		CreatedAt:      c.CreatedAt,
	}
}

func toMessageDTO(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Direction:      string(m.Direction),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// --- Handlers ---

// HandleCreateConversation handles POST /accounts/{accountID}/conversations
func (h *ConversationHandler) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	claims, accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateConversationRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	conversation, err := h.conversationService.CreateConversation(r.Context(), ports.CreateConversationParams{
		AccountID:  accountID,
		InboxID:    req.InboxID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("conversation created",
		"conversation_id", conversation.ID,
		"account_id", accountID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toConversationDTO(conversation))
}

// HandleCreateMessage handles POST /accounts/{accountID}/conversations/{conversationID}/messages
func (h *ConversationHandler) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	_, accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	conversationID, err := parsePathID(r, "conversationID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	message, err := h.conversationService.CreateMessage(r.Context(), ports.CreateMessageParams{
		AccountID:      accountID,
		ConversationID: conversationID,
		Direction:      req.Direction,
		Content:        req.Content,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, toMessageDTO(message))
}

// HandleResolveConversation handles POST /accounts/{accountID}/conversations/{conversationID}/resolve
func (h *ConversationHandler) HandleResolveConversation(w http.ResponseWriter, r *http.Request) {
	claims, accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	conversationID, err := parsePathID(r, "conversationID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	conversation, err := h.conversationService.ResolveConversation(r.Context(), ports.ResolveConversationParams{
		AccountID:      accountID,
		ConversationID: conversationID,
		ActorID:        claims.UserID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("conversation resolved",
		"conversation_id", conversationID,
		"account_id", accountID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toConversationDTO(conversation))
}

// HandleDeleteMessage handles DELETE /accounts/{accountID}/conversations/{conversationID}/messages/{messageID}
func (h *ConversationHandler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	_, accountID, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	conversationID, err := parsePathID(r, "conversationID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	messageID, err := parsePathID(r, "messageID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	err = h.conversationService.DeleteMessage(r.Context(), ports.DeleteMessageParams{
		AccountID:      accountID,
		ConversationID: conversationID,
		MessageID:      messageID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// --- Helpers ---

func parsePathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(err, name+" must be a positive integer")
	}
	return id, nil
}

// authorizeAccount checks that the authenticated user belongs to the
// account named in the URL.
func (h *ConversationHandler) authorizeAccount(w http.ResponseWriter, r *http.Request) (*auth.Claims, int64, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, 0, false
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "accountID must be an integer"))
		return nil, 0, false
	}

	if claims.AccountID != accountID {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return nil, 0, false
	}

	return claims, accountID, true
}
