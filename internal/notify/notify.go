// Package notify builds the messages announced when a team completes a task
// or a bingo, and delivers them to subscribers.
package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/playperu/bingo/internal/bingo"
)

type Kind string

const (
	KindTask  Kind = "task"
	KindBingo Kind = "bingo"
)

const (
	ColorBronze = 0xCD7F32
	ColorSilver = 0xC0C0C0
	ColorGold   = 0xFFD700

	ColorSingleBingo   = 0x00FF00
	ColorDoubleBingo   = 0xFF4500
	ColorMultipleBingo = 0xFF0000
	ColorAnomaly       = 0xFF00FF
)

// Notification is a chat-ready announcement. Channel is the event's thread.
type Notification struct {
	EventID     string  `json:"event_id"`
	TeamID      string  `json:"team_id"`
	Kind        Kind    `json:"kind"`
	Channel     string  `json:"channel"`
	Title       string  `json:"title"`
	Color       int     `json:"color"`
	Description string  `json:"description"`
	Author      Author  `json:"author"`
	Fields      []Field `json:"fields"`
}

type Author struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func medalColor(m bingo.Medal) int {
	switch m {
	case bingo.MedalBronze:
		return ColorBronze
	case bingo.MedalSilver:
		return ColorSilver
	default:
		return ColorGold
	}
}

// TaskCompleted announces that team reached medal on tile. team.Points should
// be read after every update caused by the action.
func TaskCompleted(ev bingo.Event, team bingo.Team, tile bingo.Tile, medal bingo.Medal) Notification {
	name := medal.Title()
	return Notification{
		EventID:     ev.ID,
		TeamID:      team.ID,
		Kind:        KindTask,
		Channel:     ev.ThreadID,
		Title:       fmt.Sprintf("%s - %s Medal!", tile.Name, name),
		Color:       medalColor(medal),
		Description: fmt.Sprintf("The **%s** have completed a %s task on %s!", team.Name, strings.ToLower(name), tile.Name),
		Author:      Author{Name: team.Name, IconURL: team.ImageURL},
		Fields: []Field{
			{Name: "Total Points", Value: strconv.Itoa(team.Points), Inline: true},
			{Name: "Medal Level", Value: name, Inline: true},
		},
	}
}

// Bingo announces count new lines completed at medal level.
func Bingo(ev bingo.Event, team bingo.Team, count int, medal bingo.Medal) Notification {
	name := medal.Title()
	lower := strings.ToLower(name)

	n := Notification{
		EventID: ev.ID,
		TeamID:  team.ID,
		Kind:    KindBingo,
		Channel: ev.ThreadID,
		Author:  Author{Name: team.Name, IconURL: team.ImageURL},
		Fields: []Field{
			{Name: "Total Points", Value: strconv.Itoa(team.Points), Inline: true},
			{Name: "Bingo Count", Value: strconv.Itoa(count), Inline: true},
			{Name: "Medal Level", Value: name, Inline: true},
		},
	}
	switch {
	case count == 1:
		n.Title = name + " Bingo!"
		n.Description = fmt.Sprintf("The **%s** have completed a row or column at %s level!", team.Name, lower)
		n.Color = ColorSingleBingo
	case count == 2:
		n.Title = "Double " + name + " Bingo!"
		n.Description = fmt.Sprintf("The **%s** have completed TWO %s bingos!", team.Name, lower)
		n.Color = ColorDoubleBingo
	case count >= 3:
		n.Title = "Multiple " + name + " Bingos!"
		n.Description = fmt.Sprintf("The **%s** have completed %d %s bingos!", team.Name, count, lower)
		n.Color = ColorMultipleBingo
	default:
		n.Title = "Bingo Anomaly"
		n.Description = fmt.Sprintf("Something unexpected happened with %s's bingo count: %d", team.Name, count)
		n.Color = ColorAnomaly
	}
	return n
}
