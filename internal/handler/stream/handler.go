package stream

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatService "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/pkg/utils"
)

const (
	heartbeatInterval = 15 * time.Second
	retryInterval     = 2 * time.Second
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Handler pushes controller change events to the UI via Server-Sent Events.
type Handler struct {
	chatSvc   *chatService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, heartbeat: heartbeatInterval}
}

// RegisterRoutes registers the event stream endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	err := h.Stream(r.Context(), w)
	switch {
	case errors.Is(err, ErrStreamingUnsupported):
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
	case err != nil:
		log.Printf("[sse] %v", err)
	}
}

// Stream writes a "state" event with the current snapshot, then one event per
// controller change until ctx ends or the controller shuts down.
func (h *Handler) Stream(ctx context.Context, w http.ResponseWriter) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	events, cancel := h.chatSvc.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	if err := utils.SendSSERetry(w, flusher, retryInterval); err != nil {
		return err
	}
	if err := utils.SendSSEEvent(w, flusher, "state", h.chatSvc.Snapshot()); err != nil {
		return err
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	log.Printf("[sse] client subscribed")
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] client gone")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := utils.SendSSEEvent(w, flusher, string(ev.Type), ev); err != nil {
				return err
			}
		case t := <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]any{
				"time": t.UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
		}
	}
}
