package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playperu/bingo/internal/bingo"
)

// LoadBoard reads the full definition of an event. Each query is drained
// before the next one runs.
func (s *SQLite) LoadBoard(ctx context.Context, eventID string) (*bingo.Board, error) {
	ev, err := s.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	b := &bingo.Board{Event: ev, Triggers: map[string]bingo.Trigger{}}

	if b.Tiles, err = s.tiles(ctx, eventID); err != nil {
		return nil, fmt.Errorf("loading tiles: %w", err)
	}
	if b.Tasks, err = s.tasks(ctx, eventID); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if b.Challenges, err = s.challenges(ctx, eventID); err != nil {
		return nil, fmt.Errorf("loading challenges: %w", err)
	}
	if err := s.triggers(ctx, eventID, b.Triggers); err != nil {
		return nil, fmt.Errorf("loading triggers: %w", err)
	}
	return b, nil
}

func (s *SQLite) tiles(ctx context.Context, eventID string) ([]bingo.Tile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name, img_src, idx FROM tiles WHERE event_id = ? ORDER BY idx
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bingo.Tile
	for rows.Next() {
		var t bingo.Tile
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.ImgSrc, &t.Index); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) tasks(ctx context.Context, eventID string) ([]bingo.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.tile_id, t.name, t.require_all, t.position
		FROM tasks t
		JOIN tiles tl ON tl.id = t.tile_id
		WHERE tl.event_id = ?
		ORDER BY tl.idx, t.position, t.id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bingo.Task
	for rows.Next() {
		var t bingo.Task
		var requireAll int
		if err := rows.Scan(&t.ID, &t.TileID, &t.Name, &requireAll, &t.Position); err != nil {
			return nil, err
		}
		t.RequireAll = requireAll != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) challenges(ctx context.Context, eventID string) ([]bingo.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.task_id, c.parent_id, c.trigger_id, c.require_all,
		       c.quantity, c.value, c.count_per_action
		FROM challenges c
		JOIN tasks t ON t.id = c.task_id
		JOIN tiles tl ON tl.id = t.tile_id
		WHERE tl.event_id = ?
		ORDER BY c.task_id, c.id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bingo.Challenge
	for rows.Next() {
		var (
			c                   bingo.Challenge
			parentID, triggerID sql.NullString
			requireAll          int
			quantity, perAction sql.NullInt64
		)
		err := rows.Scan(&c.ID, &c.TaskID, &parentID, &triggerID, &requireAll,
			&quantity, &c.Value, &perAction)
		if err != nil {
			return nil, err
		}
		c.ParentID = parentID.String
		if perAction.Valid {
			n := int(perAction.Int64)
			c.CountPerAction = &n
		}

		if triggerID.Valid && triggerID.String != "" {
			leaf := bingo.Leaf{TriggerID: triggerID.String}
			if quantity.Valid {
				n := int(quantity.Int64)
				leaf.Target = &n
			}
			c.Node = leaf
		} else {
			// A parent without a usable target needs one completed child.
			target := 1
			if quantity.Valid && quantity.Int64 > 0 {
				target = int(quantity.Int64)
			}
			c.Node = bingo.Parent{RequireAll: requireAll != 0, Target: target}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) triggers(ctx context.Context, eventID string, into map[string]bingo.Trigger) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT tr.id, tr.name, tr.source, tr.type, tr.img_path, tr.wiki_id
		FROM triggers tr
		JOIN challenges c ON c.trigger_id = tr.id
		JOIN tasks t ON t.id = c.task_id
		JOIN tiles tl ON tl.id = t.tile_id
		WHERE tl.event_id = ?
	`, eventID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tr bingo.Trigger
		var typ string
		var wikiID sql.NullInt64
		if err := rows.Scan(&tr.ID, &tr.Name, &tr.Source, &typ, &tr.ImgPath, &wikiID); err != nil {
			return err
		}
		tr.Type = bingo.ActionType(typ)
		if wikiID.Valid {
			n := int(wikiID.Int64)
			tr.WikiID = &n
		}
		into[tr.ID] = tr
	}
	return rows.Err()
}
