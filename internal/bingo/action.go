package bingo

import (
	"fmt"
	"strings"
)

type ActionType string

const (
	ActionKillCount   ActionType = "KC"
	ActionDrop        ActionType = "DROP"
	ActionQuest       ActionType = "QUEST"
	ActionAchievement ActionType = "ACHIEVEMENT"
	ActionDiary       ActionType = "DIARY"
	ActionSkill       ActionType = "SKILL"
	ActionOther       ActionType = "OTHER"

	// ActionChat is only used by triggers fed from chat messages.
	ActionChat ActionType = "CHAT"
)

// SubmittableTypes lists the types a player action may carry.
var SubmittableTypes = []ActionType{
	ActionKillCount,
	ActionDrop,
	ActionQuest,
	ActionAchievement,
	ActionDiary,
	ActionSkill,
	ActionOther,
}

// ParseActionType returns the submittable type named by s, ignoring case.
// An empty string yields ActionDrop.
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ActionDrop, nil
	}
	for _, t := range SubmittableTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown action type %q", s)
}
