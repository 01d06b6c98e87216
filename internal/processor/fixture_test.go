package processor_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/database"
	"github.com/playperu/bingo/internal/migrations"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/processor"
	"github.com/playperu/bingo/internal/store"
)

var (
	eventStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	eventEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	now        = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
)

func intp(n int) *int { return &n }

func trigger(id, name, source, typ string) store.ImportTrigger {
	return store.ImportTrigger{ID: id, Name: name, Source: source, Type: typ}
}

func leaf(id, triggerID string, qty int) store.ImportChallenge {
	return store.ImportChallenge{ID: id, TriggerID: triggerID, Quantity: intp(qty)}
}

func repeatable(id, triggerID string) store.ImportChallenge {
	return store.ImportChallenge{ID: id, TriggerID: triggerID}
}

func parent(id string, requireAll bool, qty int, children ...store.ImportChallenge) store.ImportChallenge {
	return store.ImportChallenge{ID: id, RequireAll: requireAll, Quantity: intp(qty), Children: children}
}

func task(id, name string, requireAll bool, challenges ...store.ImportChallenge) store.ImportTask {
	return store.ImportTask{ID: id, Name: name, RequireAll: requireAll, Challenges: challenges}
}

// boardImport builds a 5x5 event. Row 0 holds the tiles with interesting
// challenge trees; every other tile i has a one-kill bronze task on "Boss i".
// Silver and gold on plain tiles are out of reach.
func boardImport() store.Import {
	imp := store.Import{
		Triggers: []store.ImportTrigger{
			trigger("tr-vorkath", "Vorkath", "", "KC"),
			trigger("tr-visage", "Draconic visage", "Vorkath", "DROP"),
			trigger("tr-skeletal", "Skeletal visage", "Vorkath", "DROP"),
			trigger("tr-jar", "Jar of decay", "Vorkath", "DROP"),
			trigger("tr-necklace", "Dragonbone necklace", "Vorkath", "DROP"),
			trigger("tr-vorki", "Vorki", "Vorkath", "DROP"),
			trigger("tr-head", "Vorkath's head", "Vorkath", "DROP"),
			trigger("tr-ahrim", "Ahrim's staff", "Barrows", "DROP"),
			trigger("tr-karil", "Karil's crossbow", "Barrows", "DROP"),
			trigger("tr-dharok", "Dharok's greataxe", "Barrows", "DROP"),
			trigger("tr-casket", "Clue casket", "", "OTHER"),
			trigger("tr-essence", "Rune essence", "", "SKILL"),
			trigger("tr-never", "Unobtainium", "", "DROP"),
		},
	}

	tiles := []store.ImportTile{
		{ID: "tile-0", Name: "Vorkath", Index: 0, Tasks: []store.ImportTask{
			task("t0-bronze", "Bronze: Vorkath", false, leaf("c0-kc", "tr-vorkath", 5)),
			task("t0-silver", "Silver: any visage", false,
				leaf("c0-visage", "tr-visage", 1),
				leaf("c0-skeletal", "tr-skeletal", 1),
				leaf("c0-jar", "tr-jar", 1)),
			task("t0-gold", "Gold: full set", true,
				leaf("c0-necklace", "tr-necklace", 1),
				leaf("c0-vorki", "tr-vorki", 1),
				leaf("c0-head", "tr-head", 1)),
		}},
		{ID: "tile-1", Name: "Barrows", Index: 1, Tasks: []store.ImportTask{
			task("t1-bronze", "Bronze: two uniques", false,
				parent("c1-parent", false, 2,
					leaf("c1-ahrim", "tr-ahrim", 1),
					leaf("c1-karil", "tr-karil", 1),
					leaf("c1-dharok", "tr-dharok", 1))),
			task("t1-silver", "Silver", false, leaf("c1-silver", "tr-never", 1)),
			task("t1-gold", "Gold", false, leaf("c1-gold", "tr-never", 1)),
		}},
		{ID: "tile-2", Name: "Clues", Index: 2, Tasks: []store.ImportTask{
			task("t2-bronze", "Bronze: four caskets", false,
				parent("c2-parent", false, 4, repeatable("c2-casket", "tr-casket"))),
			task("t2-silver", "Silver", false, leaf("c2-silver", "tr-never", 1)),
			task("t2-gold", "Gold", false, leaf("c2-gold", "tr-never", 1)),
		}},
		{ID: "tile-3", Name: "Runecrafting", Index: 3, Tasks: []store.ImportTask{
			task("t3-bronze", "Bronze: nested", false,
				parent("c3-outer", false, 1,
					parent("c3-inner", false, 2, repeatable("c3-essence", "tr-essence")))),
			task("t3-silver", "Silver", false, leaf("c3-silver", "tr-never", 1)),
			task("t3-gold", "Gold", false, leaf("c3-gold", "tr-never", 1)),
		}},
	}
	for i := 4; i < 25; i++ {
		tr := fmt.Sprintf("tr-boss-%d", i)
		imp.Triggers = append(imp.Triggers, trigger(tr, fmt.Sprintf("Boss %d", i), "", "KC"))
		tiles = append(tiles, store.ImportTile{
			ID: fmt.Sprintf("tile-%d", i), Name: fmt.Sprintf("Boss %d", i), Index: i,
			Tasks: []store.ImportTask{
				task(fmt.Sprintf("t%d-bronze", i), "Bronze", false, leaf(fmt.Sprintf("c%d-bronze", i), tr, 1)),
				task(fmt.Sprintf("t%d-silver", i), "Silver", false, leaf(fmt.Sprintf("c%d-silver", i), "tr-never", 1)),
				task(fmt.Sprintf("t%d-gold", i), "Gold", false, leaf(fmt.Sprintf("c%d-gold", i), "tr-never", 1)),
			},
		})
	}

	imp.Events = []store.ImportEvent{
		{
			ID: "ev-1", Name: "Spring Bingo", StartAt: eventStart, EndAt: eventEnd, ThreadID: "thread-1",
			Teams: []store.ImportTeam{
				{ID: "team-a", Name: "Alpha", Members: []string{"p1", "p2"}},
				{ID: "team-b", Name: "Bravo", Members: []string{"p3"}},
			},
			Tiles: tiles,
		},
		{
			ID: "ev-2", Name: "Side Event", StartAt: eventStart, EndAt: eventEnd,
			Teams: []store.ImportTeam{{ID: "team-z", Name: "Zulu", Members: []string{"p9"}}},
			Tiles: []store.ImportTile{{ID: "side-0", Name: "Vorkath", Index: 0, Tasks: []store.ImportTask{
				task("side-bronze", "Bronze", false, leaf("side-kc", "tr-vorkath", 100)),
			}}},
		},
		{
			ID: "ev-old", Name: "Last Season", StartAt: eventStart.AddDate(-1, 0, 0), EndAt: eventEnd.AddDate(-1, 0, 0),
			Teams: []store.ImportTeam{{ID: "team-old", Name: "Alpha", Members: []string{"p1"}}},
			Tiles: []store.ImportTile{{ID: "old-0", Name: "Vorkath", Index: 0, Tasks: []store.ImportTask{
				task("old-bronze", "Bronze", false, leaf("old-kc", "tr-vorkath", 1)),
			}}},
		},
	}
	return imp
}

type recorder struct {
	notes []notify.Notification
}

func (r *recorder) Publish(_ context.Context, n notify.Notification) error {
	r.notes = append(r.notes, n)
	return nil
}

type env struct {
	store *store.SQLite
	proc  *processor.Processor
	pub   *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	st := store.NewSQLite(db)
	if err := st.Import(ctx, boardImport()); err != nil {
		t.Fatalf("import board: %v", err)
	}

	pub := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := processor.New(st, pub, logger, processor.Config{
		Matcher: bingo.NewMatcher(bingo.ActionChat),
		Now:     func() time.Time { return now },
	})
	return &env{store: st, proc: proc, pub: pub}
}

func action(player string, typ bingo.ActionType, name, source string) bingo.Action {
	return bingo.Action{PlayerID: player, Type: typ, Name: name, Source: source, Quantity: 1}
}

func (e *env) submit(t *testing.T, a bingo.Action) processor.Result {
	t.Helper()
	res, err := e.proc.Process(context.Background(), a)
	if err != nil {
		t.Fatalf("process %s: %v", a.Name, err)
	}
	return res
}

func (e *env) points(t *testing.T, teamID string) int {
	t.Helper()
	team, err := e.store.Team(context.Background(), teamID)
	if err != nil {
		t.Fatalf("team %s: %v", teamID, err)
	}
	return team.Points
}

func (e *env) level(t *testing.T, tileIndex int) int {
	t.Helper()
	levels, err := e.store.TileLevels(context.Background(), "ev-1", "team-a")
	if err != nil {
		t.Fatalf("tile levels: %v", err)
	}
	return levels[tileIndex]
}

func (e *env) taskDone(t *testing.T, tileID, taskID string) bool {
	t.Helper()
	done, err := e.store.CompletedTasks(context.Background(), "team-a", tileID)
	if err != nil {
		t.Fatalf("completed tasks: %v", err)
	}
	return done[taskID]
}

func (e *env) quantity(t *testing.T, taskID, challengeID string) int {
	t.Helper()
	p, err := e.store.ChallengeProgress(context.Background(), "team-a", taskID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	return p[challengeID].Quantity
}
