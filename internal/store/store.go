// Package store persists bingo events and the per-team progress recorded
// against them. Counters are only ever changed by single-statement atomic
// updates, so concurrent callers need no locking of their own.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/playperu/bingo/internal/bingo"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by CreateAction when the idempotency key has
	// already been recorded.
	ErrDuplicate = errors.New("duplicate action")
)

// Standing is one row of an event leaderboard.
type Standing struct {
	Rank     int
	TeamID   string
	Name     string
	ImageURL string
	Points   int
}

// TileState is a team's medal level on one tile.
type TileState struct {
	TileID         string
	Index          int
	Name           string
	ImgSrc         string
	TasksCompleted int
}

func (t TileState) Medal() bingo.Medal {
	return bingo.Medal(t.TasksCompleted)
}

// Proof links an action to the challenge status it contributed to.
type Proof struct {
	ID                string
	ChallengeStatusID string
	ChallengeID       string
	ActionID          string
	PlayerID          string
	ActionName        string
	Quantity          int
	OccurredAt        time.Time
	CreatedAt         time.Time
}

// Timestamps are written as fixed-width UTC text so that lexical order
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// dbTime scans a timestamp column. libSQL hands back TEXT that looks like a
// timestamp as time.Time, other drivers return the text itself.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}
