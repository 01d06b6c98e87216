package bingo

// Grid holds a team's medal levels on a square board.
type Grid struct {
	side  int
	cells []int
}

// NewGrid builds the grid for a board of tileCount tiles from levels, keyed
// by tile index. The side is the integer square root of tileCount; indexes
// that fall outside side*side are ignored and missing indexes read as zero.
func NewGrid(tileCount int, levels map[int]int) Grid {
	side := isqrt(tileCount)
	g := Grid{side: side, cells: make([]int, side*side)}
	for idx, lvl := range levels {
		if idx >= 0 && idx < len(g.cells) {
			g.cells[idx] = lvl
		}
	}
	return g
}

func (g Grid) Side() int { return g.side }

// Level returns the medal level at row, col.
func (g Grid) Level(row, col int) int {
	return g.cells[row*g.side+col]
}

// CountBingosAtLevel counts the rows and columns whose every cell is at
// least level. Levels below bronze never count.
func (g Grid) CountBingosAtLevel(level int) int {
	if level < int(MedalBronze) || g.side == 0 {
		return 0
	}
	count := 0
	for row := 0; row < g.side; row++ {
		full := true
		for col := 0; col < g.side && full; col++ {
			full = g.Level(row, col) >= level
		}
		if full {
			count++
		}
	}
	for col := 0; col < g.side; col++ {
		full := true
		for row := 0; row < g.side && full; row++ {
			full = g.Level(row, col) >= level
		}
		if full {
			count++
		}
	}
	return count
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
