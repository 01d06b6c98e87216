// Package bingo defines the core domain types of a bingo event and the pure
// logic that operates on them: trigger matching, challenge tree evaluation
// and bingo counting. Nothing here performs I/O.
package bingo

import "time"

type Event struct {
	ID       string
	Name     string
	StartAt  time.Time
	EndAt    time.Time
	ThreadID string
}

// Active reports whether now falls inside the event window, bounds included.
func (e Event) Active(now time.Time) bool {
	return !now.Before(e.StartAt) && !now.After(e.EndAt)
}

type Team struct {
	ID       string
	EventID  string
	Name     string
	ImageURL string
	Points   int
}

type Action struct {
	ID             string
	PlayerID       string
	Type           ActionType
	Name           string
	Source         string
	Quantity       int
	Value          *int
	OccurredAt     time.Time
	IdempotencyKey string
}

type Trigger struct {
	ID      string
	Name    string
	Source  string
	Type    ActionType
	ImgPath string
	WikiID  *int
}

type Tile struct {
	ID      string
	EventID string
	Name    string
	ImgSrc  string
	Index   int
}

// Task is one completion unit on a tile. Position orders the tasks of a
// tile by difficulty, lowest first.
type Task struct {
	ID         string
	TileID     string
	Name       string
	RequireAll bool
	Position   int
}

// ChallengeStatus is the per-team progress of one challenge.
type ChallengeStatus struct {
	ID          string
	TeamID      string
	ChallengeID string
	Quantity    int
	Completed   bool
}

// Progress maps challenge ids to a team's statuses. A missing entry means
// the team has made no progress on that challenge yet.
type Progress map[string]ChallengeStatus
