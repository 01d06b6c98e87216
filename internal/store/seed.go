package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/bingo/internal/bingo"
)

// Import describes event definitions to load, typically from a JSON board
// file. Challenges nest: children inherit their parent's task.
type Import struct {
	Triggers []ImportTrigger `json:"triggers"`
	Events   []ImportEvent   `json:"events"`
}

type ImportTrigger struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Source  string `json:"source,omitempty"`
	Type    string `json:"type,omitempty"`
	ImgPath string `json:"img_path,omitempty"`
	WikiID  *int   `json:"wiki_id,omitempty"`
}

type ImportEvent struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	StartAt  time.Time    `json:"start_at"`
	EndAt    time.Time    `json:"end_at"`
	ThreadID string       `json:"thread_id,omitempty"`
	Teams    []ImportTeam `json:"teams"`
	Tiles    []ImportTile `json:"tiles"`
}

type ImportTeam struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"image_url,omitempty"`
	Members  []string `json:"members"`
}

type ImportTile struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	ImgSrc string       `json:"img_src,omitempty"`
	Index  int          `json:"index"`
	Tasks  []ImportTask `json:"tasks"`
}

// ImportTask is positioned by its order within the tile, easiest first.
type ImportTask struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	RequireAll bool              `json:"require_all"`
	Challenges []ImportChallenge `json:"challenges"`
}

type ImportChallenge struct {
	ID             string            `json:"id"`
	TriggerID      string            `json:"trigger_id,omitempty"`
	RequireAll     bool              `json:"require_all"`
	Quantity       *int              `json:"quantity"`
	Value          *int              `json:"value,omitempty"`
	CountPerAction *int              `json:"count_per_action,omitempty"`
	Children       []ImportChallenge `json:"children,omitempty"`
}

// ReadImportFile decodes a JSON board file.
func ReadImportFile(path string) (Import, error) {
	var imp Import
	f, err := os.Open(path)
	if err != nil {
		return imp, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&imp); err != nil {
		return imp, fmt.Errorf("decoding %s: %w", path, err)
	}
	return imp, nil
}

// Import upserts every record of imp by id in one transaction. Team points
// and all progress are left untouched. Records without an id get a fresh
// one, so only files that carry ids can be imported repeatedly.
func (s *SQLite) Import(ctx context.Context, imp Import) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tr := range imp.Triggers {
		// Stored upper case so types compare equal to parsed action types.
		typ := strings.ToUpper(strings.TrimSpace(tr.Type))
		if typ == "" {
			typ = string(bingo.ActionDrop)
		}
		var wikiID any
		if tr.WikiID != nil {
			wikiID = *tr.WikiID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO triggers (id, name, source, type, img_path, wiki_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE
			SET name = excluded.name, source = excluded.source, type = excluded.type,
			    img_path = excluded.img_path, wiki_id = excluded.wiki_id
		`, orNewID(tr.ID), tr.Name, tr.Source, typ, tr.ImgPath, wikiID)
		if err != nil {
			return fmt.Errorf("importing trigger %q: %w", tr.Name, err)
		}
	}

	for _, ev := range imp.Events {
		if err := importEvent(ctx, tx, ev); err != nil {
			return fmt.Errorf("importing event %q: %w", ev.Name, err)
		}
	}
	return tx.Commit()
}

func importEvent(ctx context.Context, tx *sql.Tx, ev ImportEvent) error {
	eventID := orNewID(ev.ID)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, name, start_at, end_at, thread_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, start_at = excluded.start_at, end_at = excluded.end_at,
		    thread_id = excluded.thread_id
	`, eventID, ev.Name, formatTime(ev.StartAt), formatTime(ev.EndAt), ev.ThreadID)
	if err != nil {
		return err
	}

	for _, tm := range ev.Teams {
		teamID := orNewID(tm.ID)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO teams (id, event_id, name, image_url)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE
			SET name = excluded.name, image_url = excluded.image_url
		`, teamID, eventID, tm.Name, tm.ImageURL)
		if err != nil {
			return fmt.Errorf("team %q: %w", tm.Name, err)
		}
		for _, player := range tm.Members {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO team_members (team_id, player_id) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, teamID, player)
			if err != nil {
				return fmt.Errorf("member %q of team %q: %w", player, tm.Name, err)
			}
		}
	}

	for _, tl := range ev.Tiles {
		tileID := orNewID(tl.ID)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tiles (id, event_id, name, img_src, idx)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE
			SET name = excluded.name, img_src = excluded.img_src, idx = excluded.idx
		`, tileID, eventID, tl.Name, tl.ImgSrc, tl.Index)
		if err != nil {
			return fmt.Errorf("tile %q: %w", tl.Name, err)
		}
		for pos, task := range tl.Tasks {
			taskID := orNewID(task.ID)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (id, tile_id, name, require_all, position)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE
				SET name = excluded.name, require_all = excluded.require_all, position = excluded.position
			`, taskID, tileID, task.Name, boolInt(task.RequireAll), pos)
			if err != nil {
				return fmt.Errorf("task %q: %w", task.Name, err)
			}
			for _, c := range task.Challenges {
				if err := importChallenge(ctx, tx, taskID, "", c); err != nil {
					return fmt.Errorf("task %q: %w", task.Name, err)
				}
			}
		}
	}
	return nil
}

func importChallenge(ctx context.Context, tx *sql.Tx, taskID, parentID string, c ImportChallenge) error {
	id := orNewID(c.ID)
	value := 1
	if c.Value != nil {
		value = *c.Value
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO challenges (id, task_id, parent_id, trigger_id, require_all, quantity, value, count_per_action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET task_id = excluded.task_id, parent_id = excluded.parent_id,
		    trigger_id = excluded.trigger_id, require_all = excluded.require_all,
		    quantity = excluded.quantity, value = excluded.value,
		    count_per_action = excluded.count_per_action
	`, id, taskID, nullString(parentID), nullString(c.TriggerID), boolInt(c.RequireAll),
		nullInt(c.Quantity), value, nullInt(c.CountPerAction))
	if err != nil {
		return fmt.Errorf("challenge %s: %w", id, err)
	}
	for _, child := range c.Children {
		if err := importChallenge(ctx, tx, taskID, id, child); err != nil {
			return err
		}
	}
	return nil
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
