package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/playperu/bingo/internal/bingo"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scoring holds the point values and board shape used by ScoreTask.
type Scoring struct {
	TaskCount   int // tasks on the tile
	TileCount   int // tiles on the board
	TaskPoints  int
	BingoPoints int
}

// TileScore is the outcome of scoring one completed task.
type TileScore struct {
	Level  int
	Lines  int
	Points int
}

// ScoreTask advances the team's level on a tile and awards the task bonus
// plus the bonus for every bingo line the new level opened. Lines are counted
// at the new level before and after the advance, inside one transaction, so
// a line is never awarded twice.
func (s *SQLite) ScoreTask(ctx context.Context, eventID, teamID, tileID string, sc Scoring) (TileScore, error) {
	var score TileScore
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return score, err
	}
	defer tx.Rollback()

	before, err := tileLevels(ctx, tx, eventID, teamID)
	if err != nil {
		return score, err
	}
	if score.Level, err = advanceTileLevel(ctx, tx, teamID, tileID, sc.TaskCount); err != nil {
		return score, err
	}
	after, err := tileLevels(ctx, tx, eventID, teamID)
	if err != nil {
		return score, err
	}

	lines := bingo.NewGrid(sc.TileCount, after).CountBingosAtLevel(score.Level) -
		bingo.NewGrid(sc.TileCount, before).CountBingosAtLevel(score.Level)
	award := sc.TaskPoints
	if lines > 0 {
		score.Lines = lines
		award += lines * sc.BingoPoints
	}
	if score.Points, err = addToTeamPoints(ctx, tx, teamID, award); err != nil {
		return score, err
	}
	return score, tx.Commit()
}

func tileLevels(ctx context.Context, q querier, eventID, teamID string) (map[int]int, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tl.idx, ts.tasks_completed
		FROM tile_statuses ts
		JOIN tiles tl ON tl.id = ts.tile_id
		WHERE ts.team_id = ? AND tl.event_id = ?
	`, teamID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := map[int]int{}
	for rows.Next() {
		var idx, lvl int
		if err := rows.Scan(&idx, &lvl); err != nil {
			return nil, err
		}
		levels[idx] = lvl
	}
	return levels, rows.Err()
}

func advanceTileLevel(ctx context.Context, q querier, teamID, tileID string, taskCount int) (int, error) {
	var lvl int
	err := q.QueryRowContext(ctx, `
		INSERT INTO tile_statuses (team_id, tile_id, tasks_completed)
		VALUES (?, ?, MIN(1, ?))
		ON CONFLICT (team_id, tile_id) DO UPDATE
		SET tasks_completed = MAX(tile_statuses.tasks_completed,
		                          MIN(tile_statuses.tasks_completed + 1, ?))
		RETURNING tasks_completed
	`, teamID, tileID, taskCount, taskCount).Scan(&lvl)
	if err != nil {
		return 0, fmt.Errorf("advancing tile %s: %w", tileID, err)
	}
	return lvl, nil
}

func addToTeamPoints(ctx context.Context, q querier, teamID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("negative points %d for team %s", amount, teamID)
	}
	var points int
	err := q.QueryRowContext(ctx, `
		UPDATE teams
		SET points = points + ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
		RETURNING points
	`, amount, teamID).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adding points to team %s: %w", teamID, err)
	}
	return points, nil
}
