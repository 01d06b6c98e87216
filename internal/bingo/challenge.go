package bingo

import (
	"errors"
	"fmt"
)

var (
	ErrCycle            = errors.New("challenge parent chain forms a cycle")
	ErrUnknownChallenge = errors.New("unknown challenge")
)

// Node is the kind-specific part of a challenge: either a Leaf or a Parent.
type Node interface {
	isNode()
}

// Leaf is matched directly against actions through its trigger. A nil Target
// makes the leaf repeatable: it accumulates forever and never completes.
type Leaf struct {
	TriggerID string
	Target    *int
}

// Parent derives its completion from its children.
type Parent struct {
	RequireAll bool
	Target     int
}

func (Leaf) isNode()   {}
func (Parent) isNode() {}

type Challenge struct {
	ID       string
	TaskID   string
	ParentID string
	// Value is the weight added to the parent's running total.
	Value int
	// CountPerAction, when set, replaces the action quantity as the amount
	// contributed by each matching action.
	CountPerAction *int
	Node           Node
}

// Contribution returns the amount one action of quantity qty adds to this
// challenge.
func (c Challenge) Contribution(qty int) int {
	if c.CountPerAction != nil {
		return *c.CountPerAction
	}
	return qty
}

// Repeatable reports whether c is a leaf without a target quantity.
func (c Challenge) Repeatable() bool {
	leaf, ok := c.Node.(Leaf)
	return ok && leaf.Target == nil
}

// Tree is an arena of the challenges of one event, keyed by id, with a
// children index derived from the parent references.
type Tree struct {
	byID     map[string]Challenge
	children map[string][]string
	roots    map[string][]string
	defects  []error
}

// NewTree indexes challenges and rejects dangling parent references and
// parent chains that revisit a challenge. Structural problems that only make
// a branch unsatisfiable are collected in Defects instead.
func NewTree(challenges []Challenge) (*Tree, error) {
	t := &Tree{
		byID:     make(map[string]Challenge, len(challenges)),
		children: make(map[string][]string),
		roots:    make(map[string][]string),
	}
	for _, c := range challenges {
		if _, dup := t.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge %s", c.ID)
		}
		t.byID[c.ID] = c
	}

	for _, c := range challenges {
		if c.ParentID == "" {
			t.roots[c.TaskID] = append(t.roots[c.TaskID], c.ID)
			continue
		}
		parent, ok := t.byID[c.ParentID]
		if !ok {
			return nil, fmt.Errorf("challenge %s parent %s: %w", c.ID, c.ParentID, ErrUnknownChallenge)
		}
		if _, isLeaf := parent.Node.(Leaf); isLeaf {
			t.defects = append(t.defects, fmt.Errorf("challenge %s has leaf %s as parent", c.ID, parent.ID))
		}
		t.children[c.ParentID] = append(t.children[c.ParentID], c.ID)
	}

	for _, c := range challenges {
		seen := map[string]bool{c.ID: true}
		for p := c.ParentID; p != ""; p = t.byID[p].ParentID {
			if seen[p] {
				return nil, fmt.Errorf("challenge %s: %w", c.ID, ErrCycle)
			}
			seen[p] = true
		}
		if _, ok := c.Node.(Parent); ok && len(t.children[c.ID]) == 0 {
			t.defects = append(t.defects, fmt.Errorf("parent challenge %s has no children", c.ID))
		}
	}
	return t, nil
}

func (t *Tree) Challenge(id string) (Challenge, bool) {
	c, ok := t.byID[id]
	return c, ok
}

func (t *Tree) Children(id string) []Challenge {
	return t.collect(t.children[id])
}

// Roots returns the challenges of a task that have no parent.
func (t *Tree) Roots(taskID string) []Challenge {
	return t.collect(t.roots[taskID])
}

// Ancestors returns the parent chain of id, nearest first.
func (t *Tree) Ancestors(id string) []Challenge {
	var out []Challenge
	for p := t.byID[id].ParentID; p != ""; p = t.byID[p].ParentID {
		out = append(out, t.byID[p])
	}
	return out
}

// Defects lists configuration problems found while building the tree.
func (t *Tree) Defects() []error {
	return t.defects
}

func (t *Tree) collect(ids []string) []Challenge {
	out := make([]Challenge, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.byID[id])
	}
	return out
}
