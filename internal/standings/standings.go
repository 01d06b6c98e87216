// Package standings periodically snapshots the leaderboard of every active
// event so that bots and overlays can read rankings without hitting the
// database.
package standings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/store"
)

type Source interface {
	ActiveEvents(ctx context.Context, now time.Time) ([]bingo.Event, error)
	Leaderboard(ctx context.Context, eventID string) ([]store.Standing, error)
}

type Sink interface {
	Write(ctx context.Context, eventID string, standings []store.Standing) error
}

type Job struct {
	source Source
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewJob(source Source, sink Sink, logger *slog.Logger) *Job {
	return &Job{source: source, sink: sink, logger: logger, now: time.Now}
}

// Snapshot writes the current leaderboard of each active event to the sink.
// A failing event does not stop the others.
func (j *Job) Snapshot(ctx context.Context) error {
	events, err := j.source.ActiveEvents(ctx, j.now())
	if err != nil {
		return fmt.Errorf("listing active events: %w", err)
	}

	var errs []error
	for _, ev := range events {
		standings, err := j.source.Leaderboard(ctx, ev.ID)
		if err == nil {
			err = j.sink.Write(ctx, ev.ID, standings)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", ev.ID, err))
			continue
		}
		j.logger.Debug("standings snapshot", "event_id", ev.ID, "teams", len(standings))
	}
	return errors.Join(errs...)
}

// Run snapshots immediately and then every interval until ctx is done.
func (j *Job) Run(ctx context.Context, interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := j.Snapshot(ctx); err != nil {
				j.logger.Error("standings snapshot failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		sched.Shutdown()
		return fmt.Errorf("scheduling standings job: %w", err)
	}

	sched.Start()
	<-ctx.Done()
	return sched.Shutdown()
}

// RedisSink stores each leaderboard as a sorted set of team ids scored by
// points, under "<prefix><eventID>".
type RedisSink struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisSink(client redis.Cmdable, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSink) Key(eventID string) string {
	return s.prefix + eventID
}

func (s *RedisSink) Write(ctx context.Context, eventID string, standings []store.Standing) error {
	key := s.Key(eventID)
	members := make([]redis.Z, 0, len(standings))
	for _, st := range standings {
		members = append(members, redis.Z{Score: float64(st.Points), Member: st.TeamID})
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
