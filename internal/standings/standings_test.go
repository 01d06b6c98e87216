package standings_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/standings"
	"github.com/playperu/bingo/internal/store"
)

type fakeSource struct {
	events []bingo.Event
	boards map[string][]store.Standing
	err    map[string]error
}

func (f fakeSource) ActiveEvents(context.Context, time.Time) ([]bingo.Event, error) {
	return f.events, nil
}

func (f fakeSource) Leaderboard(_ context.Context, eventID string) ([]store.Standing, error) {
	return f.boards[eventID], f.err[eventID]
}

type memorySink struct {
	mu     sync.Mutex
	writes map[string][]store.Standing
	calls  int
}

func (m *memorySink) Write(_ context.Context, eventID string, s []store.Standing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writes == nil {
		m.writes = map[string][]store.Standing{}
	}
	m.writes[eventID] = s
	m.calls++
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSnapshot(t *testing.T) {
	errBoom := errors.New("boom")
	src := fakeSource{
		events: []bingo.Event{{ID: "ev-1"}, {ID: "ev-2"}, {ID: "ev-3"}},
		boards: map[string][]store.Standing{
			"ev-1": {{Rank: 1, TeamID: "team-a", Points: 18}},
			"ev-3": {{Rank: 1, TeamID: "team-c", Points: 3}},
		},
		err: map[string]error{"ev-2": errBoom},
	}
	sink := &memorySink{}

	err := standings.NewJob(src, sink, discard()).Snapshot(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
	if len(sink.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(sink.writes))
	}
	if got := sink.writes["ev-1"]; len(got) != 1 || got[0].Points != 18 {
		t.Errorf("ev-1 standings = %+v", got)
	}
	if _, ok := sink.writes["ev-3"]; !ok {
		t.Error("ev-3 skipped after ev-2 failed")
	}
}

func TestRunSnapshotsUntilCancelled(t *testing.T) {
	src := fakeSource{events: []bingo.Event{{ID: "ev-1"}}}
	sink := &memorySink{}
	job := standings.NewJob(src, sink, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx, 20*time.Millisecond) }()

	deadline := time.After(5 * time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("snapshots = %d after 5s", sink.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}
