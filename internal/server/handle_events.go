package server

import (
	"net/http"
	"time"

	"github.com/playperu/bingo/internal/bingo"
)

type EventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	ThreadID string    `json:"thread_id,omitempty"`
}

type StandingResponse struct {
	Rank     int    `json:"rank"`
	TeamID   string `json:"team_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Points   int    `json:"points"`
}

type LeaderboardResponse struct {
	EventID   string             `json:"event_id"`
	Standings []StandingResponse `json:"standings"`
}

func toEventResponse(ev bingo.Event) EventResponse {
	return EventResponse{ID: ev.ID, Name: ev.Name, StartAt: ev.StartAt, EndAt: ev.EndAt, ThreadID: ev.ThreadID}
}

func handleActiveEvents(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := reader.ActiveEvents(r.Context(), time.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]EventResponse, 0, len(events))
		for _, ev := range events {
			out = append(out, toEventResponse(ev))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleLeaderboard(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev := eventFrom(r)
		standings, err := reader.Leaderboard(r.Context(), ev.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := LeaderboardResponse{EventID: ev.ID, Standings: make([]StandingResponse, 0, len(standings))}
		for _, s := range standings {
			resp.Standings = append(resp.Standings, StandingResponse{
				Rank:     s.Rank,
				TeamID:   s.TeamID,
				Name:     s.Name,
				ImageURL: s.ImageURL,
				Points:   s.Points,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
