package processor

import "github.com/playperu/bingo/internal/bingo"

// shouldRecordProof decides whether an action that advanced a challenge of
// task is kept as evidence. Nothing is recorded once the task is done. While
// it is open, the action counts if it completed the challenge or if task is
// the easiest open task of its tile.
func shouldRecordProof(task bingo.Task, tileTasks []bingo.Task, completed map[string]bool, justCompleted bool) bool {
	if completed[task.ID] {
		return false
	}
	if justCompleted {
		return true
	}
	for _, t := range tileTasks {
		if !completed[t.ID] {
			return t.ID == task.ID
		}
	}
	return false
}
