package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/playperu/bingo/internal/bingo"
	"github.com/playperu/bingo/internal/notify"
	"github.com/playperu/bingo/internal/store"
)

// eventRun holds the state of one action applied to one event.
type eventRun struct {
	p     *Processor
	board *bingo.Board
	tree  *bingo.Tree
	eval  bingo.Evaluator
	team  bingo.Team
	a     bingo.Action
}

// completion is a task completed by the action, awaiting its notification.
type completion struct {
	tile  bingo.Tile
	medal bingo.Medal
	lines int
}

func (p *Processor) processEvent(ctx context.Context, ev bingo.Event, a bingo.Action) (bool, []notify.Notification, error) {
	team, err := p.store.TeamForPlayer(ctx, ev.ID, a.PlayerID)
	if errors.Is(err, store.ErrNotFound) {
		p.logger.Debug("player not in event", "event_id", ev.ID, "player_id", a.PlayerID)
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("resolving team: %w", err)
	}

	board, err := p.store.LoadBoard(ctx, ev.ID)
	if err != nil {
		return false, nil, fmt.Errorf("loading board: %w", err)
	}
	tree, err := bingo.NewTree(board.Challenges)
	if err != nil {
		return false, nil, err
	}
	for _, d := range tree.Defects() {
		p.logger.Error("challenge configuration", "event_id", ev.ID, "error", d)
	}

	matches := p.matcher.Match(board.Bindings(), a)
	if len(matches) == 0 {
		return false, nil, nil
	}
	p.logger.Info("action matched", "event_id", ev.ID, "team_id", team.ID, "action_id", a.ID, "challenges", len(matches))

	run := &eventRun{p: p, board: board, tree: tree, eval: bingo.Evaluator{Tree: tree}, team: team, a: a}

	var (
		errs    []error
		touched []string
		seen    = map[string]bool{}
	)
	for _, m := range matches {
		if err := run.applyLeaf(ctx, m.Challenge); err != nil {
			p.logger.Error("applying challenge", "event_id", ev.ID, "challenge_id", m.Challenge.ID, "error", err)
			errs = append(errs, fmt.Errorf("challenge %s: %w", m.Challenge.ID, err))
		}
		if !seen[m.Challenge.TaskID] {
			seen[m.Challenge.TaskID] = true
			touched = append(touched, m.Challenge.TaskID)
		}
	}

	var done []completion
	for _, taskID := range touched {
		c, ok, err := run.checkTask(ctx, taskID)
		if err != nil {
			p.logger.Error("checking task", "event_id", ev.ID, "task_id", taskID, "error", err)
			errs = append(errs, fmt.Errorf("task %s: %w", taskID, err))
		}
		if ok {
			done = append(done, c)
		}
	}
	if len(done) == 0 {
		return true, nil, errors.Join(errs...)
	}

	// Points in the notifications reflect every update above.
	if t, err := p.store.Team(ctx, team.ID); err != nil {
		errs = append(errs, fmt.Errorf("reloading team: %w", err))
	} else {
		team = t
	}
	notes := make([]notify.Notification, 0, len(done))
	for _, c := range done {
		if c.lines > 0 {
			notes = append(notes, notify.Bingo(ev, team, c.lines, c.medal))
		} else {
			notes = append(notes, notify.TaskCompleted(ev, team, c.tile, c.medal))
		}
	}
	return true, notes, errors.Join(errs...)
}

// applyLeaf adds the action's contribution to a matched leaf, records proof
// and propagates upward.
func (r *eventRun) applyLeaf(ctx context.Context, c bingo.Challenge) error {
	st, err := r.p.store.AddToChallengeQuantity(ctx, r.team.ID, c.ID, c.Contribution(r.a.Quantity))
	if err != nil {
		return err
	}

	justCompleted := false
	if leaf, ok := c.Node.(bingo.Leaf); ok && leaf.Target != nil && !st.Completed && st.Quantity >= *leaf.Target {
		if justCompleted, err = r.p.store.MarkChallengeCompleted(ctx, st.ID); err != nil {
			return err
		}
	}

	if err := r.recordProof(ctx, c, st, justCompleted); err != nil {
		return err
	}

	if justCompleted || c.Repeatable() {
		return r.propagate(ctx, c)
	}
	return nil
}

func (r *eventRun) recordProof(ctx context.Context, c bingo.Challenge, st bingo.ChallengeStatus, justCompleted bool) error {
	task, ok := r.board.Task(c.TaskID)
	if !ok {
		return fmt.Errorf("task %s not on board", c.TaskID)
	}
	done, err := r.p.store.CompletedTasks(ctx, r.team.ID, task.TileID)
	if err != nil {
		return err
	}
	if !shouldRecordProof(task, r.board.TileTasks(task.TileID), done, justCompleted) {
		return nil
	}
	return r.p.store.CreateProof(ctx, st.ID, r.a.ID)
}

// propagate carries the weight of child into its ancestors. It keeps climbing
// only while each ancestor newly completes.
func (r *eventRun) propagate(ctx context.Context, child bingo.Challenge) error {
	for _, parent := range r.tree.Ancestors(child.ID) {
		st, err := r.p.store.AddToChallengeQuantity(ctx, r.team.ID, parent.ID, child.Value)
		if err != nil {
			return err
		}
		if st.Completed {
			return nil
		}
		progress, err := r.p.store.ChallengeProgress(ctx, r.team.ID, parent.TaskID)
		if err != nil {
			return err
		}
		if !r.eval.IsComplete(parent.ID, progress) {
			return nil
		}
		flipped, err := r.p.store.MarkChallengeCompleted(ctx, st.ID)
		if err != nil || !flipped {
			return err
		}
		r.p.logger.Debug("challenge completed", "team_id", r.team.ID, "challenge_id", parent.ID)
		child = parent
	}
	return nil
}

// checkTask completes the task if its challenges are satisfied, then advances
// the tile and scores the task and any new bingo lines.
func (r *eventRun) checkTask(ctx context.Context, taskID string) (completion, bool, error) {
	task, ok := r.board.Task(taskID)
	if !ok {
		return completion{}, false, fmt.Errorf("task %s not on board", taskID)
	}
	progress, err := r.p.store.ChallengeProgress(ctx, r.team.ID, taskID)
	if err != nil {
		return completion{}, false, err
	}
	if !r.eval.IsTaskComplete(task, progress) {
		return completion{}, false, nil
	}
	flipped, err := r.p.store.CompleteTask(ctx, r.team.ID, taskID)
	if err != nil || !flipped {
		return completion{}, false, err
	}

	tile, ok := r.board.Tile(task.TileID)
	if !ok {
		return completion{}, false, fmt.Errorf("tile %s not on board", task.TileID)
	}
	c, err := r.scoreTask(ctx, tile)
	if err != nil {
		return completion{}, false, err
	}
	r.p.logger.Info("task completed",
		"event_id", r.board.Event.ID, "team_id", r.team.ID, "task_id", taskID,
		"tile", tile.Name, "medal", c.medal.String(), "bingos", c.lines)
	return c, true, nil
}

func (r *eventRun) scoreTask(ctx context.Context, tile bingo.Tile) (completion, error) {
	score, err := r.p.store.ScoreTask(ctx, r.board.Event.ID, r.team.ID, tile.ID, store.Scoring{
		TaskCount:   len(r.board.TileTasks(tile.ID)),
		TileCount:   len(r.board.Tiles),
		TaskPoints:  r.p.taskPoints,
		BingoPoints: r.p.bingoPoints,
	})
	if err != nil {
		return completion{}, err
	}
	return completion{tile: tile, medal: bingo.Medal(score.Level), lines: score.Lines}, nil
}
