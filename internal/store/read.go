package store

import (
	"context"
	"fmt"
)

// Leaderboard ranks the teams of an event by points. Ties share a rank.
func (s *SQLite) Leaderboard(ctx context.Context, eventID string) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image_url, points
		FROM teams
		WHERE event_id = ?
		ORDER BY points DESC, name
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.TeamID, &st.Name, &st.ImageURL, &st.Points); err != nil {
			return nil, err
		}
		st.Rank = len(out) + 1
		if n := len(out); n > 0 && out[n-1].Points == st.Points {
			st.Rank = out[n-1].Rank
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// BoardState returns every tile of the event with the team's medal level.
func (s *SQLite) BoardState(ctx context.Context, eventID, teamID string) ([]TileState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tl.id, tl.idx, tl.name, tl.img_src, COALESCE(ts.tasks_completed, 0)
		FROM tiles tl
		LEFT JOIN tile_statuses ts ON ts.tile_id = tl.id AND ts.team_id = ?
		WHERE tl.event_id = ?
		ORDER BY tl.idx
	`, teamID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TileState
	for rows.Next() {
		var t TileState
		if err := rows.Scan(&t.TileID, &t.Index, &t.Name, &t.ImgSrc, &t.TasksCompleted); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Proofs lists the evidence recorded for a team, newest action first.
func (s *SQLite) Proofs(ctx context.Context, teamID string) ([]Proof, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.challenge_status_id, cs.challenge_id, a.id, a.player_id, a.name,
		       a.quantity, a.occurred_at, p.created_at
		FROM challenge_proofs p
		JOIN challenge_statuses cs ON cs.id = p.challenge_status_id
		JOIN actions a ON a.id = p.action_id
		WHERE cs.team_id = ?
		ORDER BY a.occurred_at DESC, p.id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Proof
	for rows.Next() {
		var p Proof
		var occurred, created dbTime
		err := rows.Scan(&p.ID, &p.ChallengeStatusID, &p.ChallengeID, &p.ActionID, &p.PlayerID,
			&p.ActionName, &p.Quantity, &occurred, &created)
		if err != nil {
			return nil, fmt.Errorf("scanning proof: %w", err)
		}
		p.OccurredAt, p.CreatedAt = occurred.Time, created.Time
		out = append(out, p)
	}
	return out, rows.Err()
}
