package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/store"
)

type ctxKey int

const (
	ctxKeyEvent ctxKey = iota
	ctxKeyTeam
)

// eventMiddleware resolves {eventID}.
func eventMiddleware(reader Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ev, err := reader.Event(r.Context(), chi.URLParam(r, "eventID"))
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "event not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyEvent, ev)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// teamMiddleware resolves {teamID} within the event already in the context.
func teamMiddleware(reader Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			team, err := reader.Team(r.Context(), chi.URLParam(r, "teamID"))
			if errors.Is(err, store.ErrNotFound) || (err == nil && team.EventID != eventFrom(r).ID) {
				writeError(w, http.StatusNotFound, "team not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func eventFrom(r *http.Request) bingo.Event {
	return r.Context().Value(ctxKeyEvent).(bingo.Event)
}

func teamFrom(r *http.Request) bingo.Team {
	return r.Context().Value(ctxKeyTeam).(bingo.Team)
}
