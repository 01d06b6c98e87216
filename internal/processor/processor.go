// Package processor runs a submitted action through every active event:
// matching, progress updates, task and tile completion, bingo scoring and
// notification.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/store"
)

const (
	DefaultTaskPoints  = 3
	DefaultBingoPoints = 15
)

// Store is the persistence the processor needs. *store.SQLite implements it.
type Store interface {
	CreateAction(ctx context.Context, a bingo.Action) (string, error)
	ActiveEvents(ctx context.Context, now time.Time) ([]bingo.Event, error)
	TeamForPlayer(ctx context.Context, eventID, playerID string) (bingo.Team, error)
	Team(ctx context.Context, id string) (bingo.Team, error)
	LoadBoard(ctx context.Context, eventID string) (*bingo.Board, error)

	AddToChallengeQuantity(ctx context.Context, teamID, challengeID string, amount int) (bingo.ChallengeStatus, error)
	MarkChallengeCompleted(ctx context.Context, statusID string) (bool, error)
	ChallengeProgress(ctx context.Context, teamID, taskID string) (bingo.Progress, error)
	CompleteTask(ctx context.Context, teamID, taskID string) (bool, error)
	CompletedTasks(ctx context.Context, teamID, tileID string) (map[string]bool, error)
	ScoreTask(ctx context.Context, eventID, teamID, tileID string, sc store.Scoring) (store.TileScore, error)
	CreateProof(ctx context.Context, statusID, actionID string) error
}

type Config struct {
	Matcher     bingo.Matcher
	TaskPoints  int
	BingoPoints int
	// Now defaults to time.Now.
	Now func() time.Time
}

type Processor struct {
	store     Store
	publisher notify.Publisher
	logger    *slog.Logger
	matcher   bingo.Matcher

	taskPoints  int
	bingoPoints int
	now         func() time.Time
}

// New returns a Processor. publisher may be nil, in which case notifications
// are only returned to the caller.
func New(st Store, publisher notify.Publisher, logger *slog.Logger, cfg Config) *Processor {
	if cfg.TaskPoints == 0 {
		cfg.TaskPoints = DefaultTaskPoints
	}
	if cfg.BingoPoints == 0 {
		cfg.BingoPoints = DefaultBingoPoints
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{
		store:       st,
		publisher:   publisher,
		logger:      logger,
		matcher:     cfg.Matcher,
		taskPoints:  cfg.TaskPoints,
		bingoPoints: cfg.BingoPoints,
		now:         cfg.Now,
	}
}

// Result summarizes one processed action.
type Result struct {
	ActionID string `json:"action_id"`
	// EventsProcessed counts the events in which at least one challenge
	// matched the action.
	EventsProcessed int                   `json:"events_processed"`
	Notifications   []notify.Notification `json:"notifications"`
	Duplicate       bool                  `json:"duplicate,omitempty"`
}

// Process persists a and applies it to every active event the player takes
// part in.
//
// If the action cannot be persisted nothing else happens and the error is
// returned with an empty Result. Later failures are confined to the leaf or
// event they occur in: they are logged, processing continues, and they are
// returned joined together with the Result.
func (p *Processor) Process(ctx context.Context, a bingo.Action) (Result, error) {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = p.now()
	}

	id, err := p.store.CreateAction(ctx, a)
	if errors.Is(err, store.ErrDuplicate) {
		p.logger.Info("duplicate action ignored", "action_id", id, "idempotency_key", a.IdempotencyKey)
		return Result{ActionID: id, Duplicate: true, Notifications: []notify.Notification{}}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("persisting action: %w", err)
	}
	a.ID = id
	res := Result{ActionID: id, Notifications: []notify.Notification{}}

	events, err := p.store.ActiveEvents(ctx, p.now())
	if err != nil {
		return res, fmt.Errorf("listing active events: %w", err)
	}
	if len(events) == 0 {
		p.logger.Debug("no active events", "action_id", id)
	}

	var errs []error
	for _, ev := range events {
		matched, notes, err := p.processEvent(ctx, ev, a)
		if err != nil {
			p.logger.Error("processing action for event", "action_id", id, "event_id", ev.ID, "error", err)
			errs = append(errs, fmt.Errorf("event %s: %w", ev.ID, err))
		}
		if matched {
			res.EventsProcessed++
		}
		res.Notifications = append(res.Notifications, notes...)
		p.publish(ctx, notes)
	}
	return res, errors.Join(errs...)
}

func (p *Processor) publish(ctx context.Context, notes []notify.Notification) {
	if p.publisher == nil {
		return
	}
	for _, n := range notes {
		if err := p.publisher.Publish(ctx, n); err != nil {
			p.logger.Warn("delivering notification", "event_id", n.EventID, "team_id", n.TeamID, "title", n.Title, "error", err)
		}
	}
}
