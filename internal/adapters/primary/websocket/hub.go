package websocket

import (
	"log/slog"
	"sync"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// Hub maintains the set of active Clients and pushes conversation events to
// them. It consumes the dispatcher's event stream as a listener, so the
// dashboard sees new conversations, messages and resolutions live.
type Hub struct {
	// clients maps user IDs to their active connections.
	// A single user can have multiple connections (multiple tabs/devices).
	clients map[int64]map[*Client]bool

	// rooms maps conversation IDs to subscribed clients
	rooms map[int64]map[*Client]bool

	// broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	logger *slog.Logger
}

var _ ports.EventListener = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		rooms:      make(map[int64]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// HandleEvent implements ports.EventListener: dispatched conversation
// events are queued for broadcast. A full queue drops the event rather
// than blocking the dispatcher.
func (h *Hub) HandleEvent(event domain.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"conversation_id", event.ConversationID,
		)
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true

	h.logger.Info("client registered",
		"user_id", client.UserID,
		"account_id", client.AccountID,
		"total_connections", len(h.clients[client.UserID]),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscriptions := client.GetSubscriptions()

	if userClients, ok := h.clients[client.UserID]; ok {
		if _, exists := userClients[client]; exists {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}

	for _, conversationID := range subscriptions {
		if room, ok := h.rooms[conversationID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, conversationID)
			}
		}
	}

	client.CloseSend()

	h.logger.Info("client unregistered",
		"user_id", client.UserID,
	)
}

// broadcastEvent sends an event to all clients subscribed to the
// conversation. Clients from other accounts never receive it even if
// they somehow subscribed to the conversation ID.
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.RLock()
	room, ok := h.rooms[event.ConversationID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(room))
	for client := range room {
		if client.AccountID == event.AccountID {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"conversation_id", event.ConversationID,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full, unregister them
			h.logger.Warn("client send buffer full, unregistering",
				"user_id", client.UserID,
			)
			h.Unregister <- client
		}
	}
}

// subscribeClientToConversation adds a client to a conversation's room
func (h *Hub) subscribeClientToConversation(client *Client, conversationID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]bool)
	}
	h.rooms[conversationID][client] = true
	client.AddSubscription(conversationID)

	h.logger.Debug("client subscribed to conversation",
		"user_id", client.UserID,
		"conversation_id", conversationID,
	)
}

// unsubscribeClientFromConversation removes a client from a conversation's room
func (h *Hub) unsubscribeClientFromConversation(client *Client, conversationID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[conversationID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	client.RemoveSubscription(conversationID)

	h.logger.Debug("client unsubscribed from conversation",
		"user_id", client.UserID,
		"conversation_id", conversationID,
	)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// GetClientsInRoom returns the number of clients subscribed to a conversation
func (h *Hub) GetClientsInRoom(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[conversationID]; ok {
		return len(room)
	}
	return 0
}
