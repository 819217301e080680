package rules

import "chessvar/internal/core"

var knightOffsets = [8][2]int{
	{-2, -1}, {-1, -2}, {1, -2}, {2, -1},
	{2, 1}, {1, 2}, {-1, 2}, {-2, 1},
}

func knight(b Reader, c core.Color, from, to core.Square) bool {
	dFile := to.File - from.File
	dRow := to.Row - from.Row
	for _, off := range knightOffsets {
		if off[0] == dFile && off[1] == dRow {
			return canLand(b, c, to)
		}
	}
	return false
}

// king has no check-safety constraint; it may step next to attacked squares.
func king(b Reader, c core.Color, from, to core.Square) bool {
	dFile := abs(to.File - from.File)
	dRow := abs(to.Row - from.Row)
	if dFile > 1 || dRow > 1 || (dFile == 0 && dRow == 0) {
		return false
	}
	return canLand(b, c, to)
}
