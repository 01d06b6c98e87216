package server

import (
	"net/http"
	"time"
)

type TileResponse struct {
	TileID         string `json:"tile_id"`
	Index          int    `json:"index"`
	Name           string `json:"name"`
	ImgSrc         string `json:"img_src,omitempty"`
	TasksCompleted int    `json:"tasks_completed"`
	Medal          string `json:"medal" enum:"none,bronze,silver,gold"`
}

type BoardResponse struct {
	EventID string         `json:"event_id"`
	TeamID  string         `json:"team_id"`
	Points  int            `json:"points"`
	Tiles   []TileResponse `json:"tiles"`
}

type ProofResponse struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	ActionID    string    `json:"action_id"`
	PlayerID    string    `json:"player_id"`
	ActionName  string    `json:"action_name"`
	Quantity    int       `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func handleBoard(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, team := eventFrom(r), teamFrom(r)
		tiles, err := reader.BoardState(r.Context(), ev.ID, team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := BoardResponse{EventID: ev.ID, TeamID: team.ID, Points: team.Points, Tiles: make([]TileResponse, 0, len(tiles))}
		for _, t := range tiles {
			resp.Tiles = append(resp.Tiles, TileResponse{
				TileID:         t.TileID,
				Index:          t.Index,
				Name:           t.Name,
				ImgSrc:         t.ImgSrc,
				TasksCompleted: t.TasksCompleted,
				Medal:          t.Medal().String(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleProofs(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proofs, err := reader.Proofs(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]ProofResponse, 0, len(proofs))
		for _, p := range proofs {
			out = append(out, ProofResponse{
				ID:          p.ID,
				ChallengeID: p.ChallengeID,
				ActionID:    p.ActionID,
				PlayerID:    p.PlayerID,
				ActionName:  p.ActionName,
				Quantity:    p.Quantity,
				OccurredAt:  p.OccurredAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
