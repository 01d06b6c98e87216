package bingo

// Medal is a tile's medal level for a team. It equals the number of tasks the
// team has completed on the tile.
type Medal int

const (
	MedalNone Medal = iota
	MedalBronze
	MedalSilver
	MedalGold
)

func (m Medal) String() string {
	switch m {
	case MedalNone:
		return "none"
	case MedalBronze:
		return "bronze"
	case MedalSilver:
		return "silver"
	case MedalGold:
		return "gold"
	}
	return "unknown"
}

// Title is the capitalised medal name used in notifications.
func (m Medal) Title() string {
	switch m {
	case MedalBronze:
		return "Bronze"
	case MedalSilver:
		return "Silver"
	case MedalGold:
		return "Gold"
	}
	return "Unknown"
}
