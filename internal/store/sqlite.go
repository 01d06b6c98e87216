package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/bingo/internal/bingo"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// CreateAction records a. When a carries an idempotency key that is already
// stored, nothing is written and the id of the earlier action is returned
// together with ErrDuplicate.
func (s *SQLite) CreateAction(ctx context.Context, a bingo.Action) (string, error) {
	var key, value any
	if a.IdempotencyKey != "" {
		key = a.IdempotencyKey
	}
	if a.Value != nil {
		value = *a.Value
	}

	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO actions (id, player_id, type, name, source, quantity, value, occurred_at, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id
	`, uuid.NewString(), a.PlayerID, string(a.Type), a.Name, a.Source, a.Quantity, value,
		formatTime(a.OccurredAt), key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			SELECT id FROM actions WHERE idempotency_key = ?
		`, a.IdempotencyKey).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("looking up duplicate action: %w", err)
		}
		return id, ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("inserting action: %w", err)
	}
	return id, nil
}

func (s *SQLite) CountActions(ctx context.Context, playerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM actions WHERE player_id = ?
	`, playerID).Scan(&n)
	return n, err
}

// ActiveEvents returns the events whose window contains now.
func (s *SQLite) ActiveEvents(ctx context.Context, now time.Time) ([]bingo.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_at, end_at, thread_id
		FROM events
		WHERE start_at <= ? AND end_at >= ?
		ORDER BY start_at, id
	`, formatTime(now), formatTime(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bingo.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Event(ctx context.Context, id string) (bingo.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, `
		SELECT id, name, start_at, end_at, thread_id FROM events WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

// TeamForPlayer resolves the team playerID plays for in eventID.
func (s *SQLite) TeamForPlayer(ctx context.Context, eventID, playerID string) (bingo.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `
		SELECT t.id, t.event_id, t.name, t.image_url, t.points
		FROM team_members m
		JOIN teams t ON t.id = m.team_id
		WHERE t.event_id = ? AND m.player_id = ?
		ORDER BY t.id
		LIMIT 1
	`, eventID, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (s *SQLite) Team(ctx context.Context, id string) (bingo.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `
		SELECT id, event_id, name, image_url, points FROM teams WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// AddToChallengeQuantity adds amount to the team's status for challengeID
// and returns the status after the write. A missing status is created with
// amount as its quantity by the same statement, so first and later
// contributions cannot race each other.
func (s *SQLite) AddToChallengeQuantity(ctx context.Context, teamID, challengeID string, amount int) (bingo.ChallengeStatus, error) {
	st := bingo.ChallengeStatus{TeamID: teamID, ChallengeID: challengeID}
	var completed int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO challenge_statuses (id, team_id, challenge_id, quantity)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (team_id, challenge_id) DO UPDATE
		SET quantity = challenge_statuses.quantity + excluded.quantity,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		RETURNING id, quantity, completed
	`, uuid.NewString(), teamID, challengeID, amount).Scan(&st.ID, &st.Quantity, &completed)
	if err != nil {
		return st, fmt.Errorf("adding to challenge %s: %w", challengeID, err)
	}
	st.Completed = completed != 0
	return st, nil
}

// MarkChallengeCompleted sets the completed flag of a status. It reports true
// only to the one caller that flipped the flag.
func (s *SQLite) MarkChallengeCompleted(ctx context.Context, statusID string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		UPDATE challenge_statuses
		SET completed = 1, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND completed = 0
		RETURNING id
	`, statusID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("completing challenge status %s: %w", statusID, err)
	}
	return true, nil
}

// ChallengeProgress returns the team's statuses for every challenge of a task.
func (s *SQLite) ChallengeProgress(ctx context.Context, teamID, taskID string) (bingo.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cs.id, cs.challenge_id, cs.quantity, cs.completed
		FROM challenge_statuses cs
		JOIN challenges c ON c.id = cs.challenge_id
		WHERE cs.team_id = ? AND c.task_id = ?
	`, teamID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	p := bingo.Progress{}
	for rows.Next() {
		st := bingo.ChallengeStatus{TeamID: teamID}
		var completed int
		if err := rows.Scan(&st.ID, &st.ChallengeID, &st.Quantity, &completed); err != nil {
			return nil, err
		}
		st.Completed = completed != 0
		p[st.ChallengeID] = st
	}
	return p, rows.Err()
}

// CompleteTask sets the team's task status to completed. It reports true
// only to the one caller that observed the transition.
func (s *SQLite) CompleteTask(ctx context.Context, teamID, taskID string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO task_statuses (team_id, task_id, completed)
		VALUES (?, ?, 1)
		ON CONFLICT (team_id, task_id) DO UPDATE
		SET completed = 1
		WHERE task_statuses.completed = 0
		RETURNING task_id
	`, teamID, taskID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("completing task %s: %w", taskID, err)
	}
	return true, nil
}

// CompletedTasks returns the ids of the tasks on a tile the team has completed.
func (s *SQLite) CompletedTasks(ctx context.Context, teamID, tileID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts.task_id
		FROM task_statuses ts
		JOIN tasks t ON t.id = ts.task_id
		WHERE ts.team_id = ? AND t.tile_id = ? AND ts.completed = 1
	`, teamID, tileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

// TileLevels returns the team's medal level per tile index for an event.
// Tiles without a status are absent.
func (s *SQLite) TileLevels(ctx context.Context, eventID, teamID string) (map[int]int, error) {
	return tileLevels(ctx, s.db, eventID, teamID)
}

// AdvanceTileLevel raises the team's level on a tile by one, capped at
// taskCount, and returns the new level. The level never decreases.
func (s *SQLite) AdvanceTileLevel(ctx context.Context, teamID, tileID string, taskCount int) (int, error) {
	return advanceTileLevel(ctx, s.db, teamID, tileID, taskCount)
}

// AddToTeamPoints adds amount to the team's points and returns the total.
func (s *SQLite) AddToTeamPoints(ctx context.Context, teamID string, amount int) (int, error) {
	return addToTeamPoints(ctx, s.db, teamID, amount)
}

// CreateProof links actionID to a challenge status. Recording the same link
// twice is a no-op.
func (s *SQLite) CreateProof(ctx context.Context, statusID, actionID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenge_proofs (id, challenge_status_id, action_id)
		VALUES (?, ?, ?)
		ON CONFLICT (challenge_status_id, action_id) DO NOTHING
	`, uuid.NewString(), statusID, actionID)
	if err != nil {
		return fmt.Errorf("recording proof: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (bingo.Event, error) {
	var e bingo.Event
	var start, end dbTime
	if err := row.Scan(&e.ID, &e.Name, &start, &end, &e.ThreadID); err != nil {
		return e, err
	}
	e.StartAt, e.EndAt = start.Time, end.Time
	return e, nil
}

func scanTeam(row scanner) (bingo.Team, error) {
	var t bingo.Team
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.ImageURL, &t.Points)
	return t, err
}
