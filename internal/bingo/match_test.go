package bingo_test

import (
	"testing"

	"github.com/playperu/bingo/internal/bingo"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Vorkath", "vorkath"},
		{"  VORKATH  ", "vorkath"},
		{"Dragon_warhammer", "dragon warhammer"},
		{"dragon  warhammer", "dragon warhammer"},
		{"Kree'arra", "kree'arra"},
		{"Tombs-of_Amascut", "tombs of amascut"},
		{"Ｖｏｒｋａｔｈ", "vorkath"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bingo.NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatcherMatches(t *testing.T) {
	m := bingo.NewMatcher(bingo.ActionChat)

	tests := []struct {
		name    string
		trigger bingo.Trigger
		action  bingo.Action
		want    bool
	}{
		{
			name:    "wildcard source",
			trigger: bingo.Trigger{Name: "Vorkath", Type: bingo.ActionKillCount},
			action:  bingo.Action{Name: "vorkath", Source: "anything"},
			want:    true,
		},
		{
			name:    "wildcard source with empty action source",
			trigger: bingo.Trigger{Name: "Vorkath", Type: bingo.ActionKillCount},
			action:  bingo.Action{Name: "VORKATH"},
			want:    true,
		},
		{
			name:    "source equal ignoring case",
			trigger: bingo.Trigger{Name: "Draconic visage", Source: "Vorkath", Type: bingo.ActionDrop},
			action:  bingo.Action{Name: "draconic_visage", Source: "vorkath"},
			want:    true,
		},
		{
			name:    "source mismatch",
			trigger: bingo.Trigger{Name: "Draconic visage", Source: "Vorkath", Type: bingo.ActionDrop},
			action:  bingo.Action{Name: "Draconic visage", Source: "Skeletal Wyvern"},
			want:    false,
		},
		{
			name:    "source required but missing",
			trigger: bingo.Trigger{Name: "Draconic visage", Source: "Vorkath", Type: bingo.ActionDrop},
			action:  bingo.Action{Name: "Draconic visage"},
			want:    false,
		},
		{
			name:    "name mismatch",
			trigger: bingo.Trigger{Name: "Vorkath", Type: bingo.ActionKillCount},
			action:  bingo.Action{Name: "Zulrah"},
			want:    false,
		},
		{
			name:    "name only type skips source",
			trigger: bingo.Trigger{Name: "Clue scroll", Source: "Chat", Type: bingo.ActionChat},
			action:  bingo.Action{Name: "clue scroll", Source: "Beginner casket"},
			want:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.trigger, tt.action); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcherMatchMultiple(t *testing.T) {
	vorkath := bingo.Trigger{ID: "t1", Name: "Vorkath", Type: bingo.ActionKillCount}
	zulrah := bingo.Trigger{ID: "t2", Name: "Zulrah", Type: bingo.ActionKillCount}
	bindings := []bingo.Binding{
		{Challenge: leaf("bronze", "t-bronze", "", intp(5)), Trigger: vorkath},
		{Challenge: leaf("silver", "t-silver", "", intp(25)), Trigger: vorkath},
		{Challenge: leaf("other", "t-other", "", intp(5)), Trigger: zulrah},
	}

	got := bingo.NewMatcher().Match(bindings, bingo.Action{Name: "Vorkath", Type: bingo.ActionKillCount})
	if len(got) != 2 {
		t.Fatalf("matched %d, want 2", len(got))
	}
	if got[0].Challenge.ID != "bronze" || got[1].Challenge.ID != "silver" {
		t.Errorf("matched %s, %s", got[0].Challenge.ID, got[1].Challenge.ID)
	}

	if got := bingo.NewMatcher().Match(bindings, bingo.Action{Name: "Nex"}); len(got) != 0 {
		t.Errorf("matched %d for unknown name, want 0", len(got))
	}
}

func TestParseActionType(t *testing.T) {
	tests := []struct {
		in      string
		want    bingo.ActionType
		wantErr bool
	}{
		{"KC", bingo.ActionKillCount, false},
		{"kc", bingo.ActionKillCount, false},
		{"", bingo.ActionDrop, false},
		{"other", bingo.ActionOther, false},
		{"CHAT", "", true},
		{"LOOT", "", true},
	}
	for _, tt := range tests {
		got, err := bingo.ParseActionType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseActionType(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseActionType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
