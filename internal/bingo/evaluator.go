package bingo

// Evaluator decides challenge and task completion for one team from its
// persisted progress.
type Evaluator struct {
	Tree *Tree
}

// IsComplete evaluates the challenge id recursively.
//
// A leaf completes once its quantity reaches the target; a repeatable leaf
// never does. A parent counts its completed children: under AND every child
// must be complete and the count must reach the target, under OR the count
// alone must reach it. A parent also completes under OR once the weights
// propagated into its own status reach the target, which is how repeatable
// children finish a parent.
func (e Evaluator) IsComplete(id string, p Progress) bool {
	c, ok := e.Tree.Challenge(id)
	if !ok {
		return false
	}

	switch n := c.Node.(type) {
	case Leaf:
		if n.Target == nil {
			return false
		}
		st, ok := p[id]
		return ok && st.Quantity >= *n.Target

	case Parent:
		children := e.Tree.Children(id)
		if len(children) == 0 {
			return false
		}
		completed := 0
		for _, child := range children {
			if e.IsComplete(child.ID, p) {
				completed++
			}
		}
		if n.RequireAll {
			return completed == len(children) && completed >= n.Target
		}
		return completed >= n.Target || p[id].Quantity >= n.Target
	}
	return false
}

// IsTaskComplete combines the task's root challenges with the task's own
// AND/OR flag. A task without roots is never complete.
func (e Evaluator) IsTaskComplete(task Task, p Progress) bool {
	roots := e.Tree.Roots(task.ID)
	if len(roots) == 0 {
		return false
	}
	for _, r := range roots {
		done := e.IsComplete(r.ID, p)
		if task.RequireAll && !done {
			return false
		}
		if !task.RequireAll && done {
			return true
		}
	}
	return task.RequireAll
}
