// Package feed streams the notifications of an event over a WebSocket, for
// chat bots that relay them to the event's thread.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/store"
)

const writeTimeout = 5 * time.Second

type EventFinder interface {
	Event(ctx context.Context, id string) (bingo.Event, error)
}

type Handler struct {
	broker *notify.Broker
	events EventFinder
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, broker *notify.Broker, events EventFinder) *Handler {
	return &Handler{broker: broker, events: events, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events/{eventID}", h.serve)
	return r
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, err := h.events.Event(r.Context(), eventID); err != nil {
		status, msg := http.StatusInternalServerError, "internal error"
		if errors.Is(err, store.ErrNotFound) {
			status, msg = http.StatusNotFound, "event not found"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	topic := notify.EventTopic(eventID)
	ch := h.broker.Subscribe(topic)
	defer h.broker.Unsubscribe(topic, ch)

	// Clients only listen; CloseRead handles their control frames.
	ctx := conn.CloseRead(r.Context())
	h.logger.Debug("feed subscribed", "event_id", eventID)

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("feed closed", "event_id", eventID, "error", ctx.Err())
			return
		case data := <-ch:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.logger.Debug("feed write failed", "event_id", eventID, "error", err)
				return
			}
		}
	}
}
