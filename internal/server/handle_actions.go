package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
)

type ActionRequest struct {
	PlayerID       string     `json:"player_id" required:"true"`
	Name           string     `json:"name" required:"true"`
	Type           string     `json:"type,omitempty" enum:"KC,DROP,QUEST,ACHIEVEMENT,DIARY,SKILL,OTHER" default:"DROP"`
	Source         string     `json:"source,omitempty"`
	Quantity       *int       `json:"quantity,omitempty" minimum:"1" default:"1"`
	Value          *int       `json:"value,omitempty"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

type ActionResponse struct {
	ActionID        string                `json:"action_id"`
	EventsProcessed int                   `json:"events_processed"`
	Notifications   []notify.Notification `json:"notifications"`
	Duplicate       bool                  `json:"duplicate,omitempty"`
	// Partial is set when some progress updates failed after the action was
	// recorded.
	Partial bool `json:"partial,omitempty"`
}

func (req ActionRequest) action(headerKey string) (bingo.Action, string) {
	a := bingo.Action{
		PlayerID:       strings.TrimSpace(req.PlayerID),
		Name:           strings.TrimSpace(req.Name),
		Source:         strings.TrimSpace(req.Source),
		Quantity:       1,
		Value:          req.Value,
		IdempotencyKey: req.IdempotencyKey,
	}
	if a.IdempotencyKey == "" {
		a.IdempotencyKey = headerKey
	}
	if a.PlayerID == "" || a.Name == "" {
		return a, "player_id and name are required"
	}

	typ, err := bingo.ParseActionType(req.Type)
	if err != nil {
		return a, err.Error()
	}
	a.Type = typ

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return a, "quantity must be at least 1"
		}
		a.Quantity = *req.Quantity
	}
	if req.OccurredAt != nil {
		a.OccurredAt = req.OccurredAt.UTC()
	}
	return a, ""
}

func handleSubmitAction(logger *slog.Logger, sub Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActionRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, msg := req.action(r.Header.Get("Idempotency-Key"))
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		res, err := sub.Process(r.Context(), a)
		if res.ActionID == "" {
			logger.Error("submitting action", "player_id", a.PlayerID, "name", a.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err != nil {
			logger.Warn("action processed with errors", "action_id", res.ActionID, "error", err)
		}

		status := http.StatusCreated
		if res.Duplicate {
			status = http.StatusOK
		}
		writeJSON(w, status, ActionResponse{
			ActionID:        res.ActionID,
			EventsProcessed: res.EventsProcessed,
			Notifications:   res.Notifications,
			Duplicate:       res.Duplicate,
			Partial:         err != nil,
		})
	}
}
