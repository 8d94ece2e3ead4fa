package services

import (
	"log/slog"
	"sync"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// Dispatcher fans conversation lifecycle events out to listeners. The
// listener set is fixed at startup; there is no ambient toggle deciding
// which listeners are live.
type Dispatcher struct {
	listeners []ports.EventListener
	logger    *slog.Logger
	wg        sync.WaitGroup
}

var _ ports.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over the given listeners.
func NewDispatcher(logger *slog.Logger, listeners ...ports.EventListener) *Dispatcher {
	return &Dispatcher{
		listeners: listeners,
		logger:    logger.With("component", "dispatcher"),
	}
}

// Dispatch delivers the event to every listener asynchronously. A slow
// listener never blocks the caller or the other listeners.
func (d *Dispatcher) Dispatch(event domain.Event) {
	d.logger.Debug("dispatching event",
		"event_type", event.Type,
		"account_id", event.AccountID,
		"conversation_id", event.ConversationID,
	)

	for _, listener := range d.listeners {
		d.wg.Add(1)
		go func(listener ports.EventListener) {
			defer d.wg.Done()
			listener.HandleEvent(event)
		}(listener)
	}
}

// Shutdown waits for in-flight deliveries to finish.
func (d *Dispatcher) Shutdown() {
	d.wg.Wait()
}
