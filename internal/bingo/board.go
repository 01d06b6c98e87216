package bingo

import "sort"

// Board is the read-only definition of one event: its tiles, tasks,
// challenges and the triggers they reference. It is loaded per request and
// never shared.
type Board struct {
	Event      Event
	Tiles      []Tile
	Tasks      []Task
	Challenges []Challenge
	Triggers   map[string]Trigger
}

func (b *Board) Tile(id string) (Tile, bool) {
	for _, t := range b.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

func (b *Board) Task(id string) (Task, bool) {
	for _, t := range b.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// TileTasks returns the tasks of a tile ordered by difficulty.
func (b *Board) TileTasks(tileID string) []Task {
	var out []Task
	for _, t := range b.Tasks {
		if t.TileID == tileID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Bindings pairs every leaf challenge with its trigger. Leaves whose trigger
// is missing from the board are left out.
func (b *Board) Bindings() []Binding {
	var out []Binding
	for _, c := range b.Challenges {
		leaf, ok := c.Node.(Leaf)
		if !ok {
			continue
		}
		tr, ok := b.Triggers[leaf.TriggerID]
		if !ok {
			continue
		}
		out = append(out, Binding{Challenge: c, Trigger: tr})
	}
	return out
}
