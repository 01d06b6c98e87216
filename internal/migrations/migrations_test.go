package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/bingo/internal/database"
	"github.com/playperu/bingo/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := []string{
		"events", "teams", "team_members", "actions", "triggers", "tiles", "tasks",
		"challenges", "challenge_statuses", "task_statuses", "tile_statuses", "challenge_proofs",
	}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	first, err := migrations.RunContext(ctx, db)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 1 || first[0] != 1 {
		t.Errorf("first run applied %v, want [1]", first)
	}
	second, err := migrations.RunContext(ctx, db)
	if err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run applied %v, want none", second)
	}
}

func TestIdempotencyKeyUnique(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	insert := `INSERT INTO actions (id, player_id, type, name, occurred_at, idempotency_key)
		VALUES (?, 'p1', 'KC', 'Vorkath', '2026-01-01T00:00:00.000Z', ?)`

	// NULL keys never collide.
	if _, err := db.Exec(insert, "a1", nil); err != nil {
		t.Fatalf("insert a1: %v", err)
	}
	if _, err := db.Exec(insert, "a2", nil); err != nil {
		t.Fatalf("insert a2: %v", err)
	}
	if _, err := db.Exec(insert, "a3", "key-1"); err != nil {
		t.Fatalf("insert a3: %v", err)
	}
	if _, err := db.Exec(insert, "a4", "key-1"); err == nil {
		t.Fatal("duplicate idempotency key accepted")
	}
}
