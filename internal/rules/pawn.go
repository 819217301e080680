package rules

import "chessvar/internal/core"

// pawnDirection returns the row step and home row for a color.
// White starts on row 6 (rank 2) and moves toward row 0.
func pawnDirection(c core.Color) (step, home int) {
	if c == core.ColorWhite {
		return -1, 6
	}
	return 1, 1
}

func pawn(b Reader, c core.Color, from, to core.Square) bool {
	step, home := pawnDirection(c)
	dRow := to.Row - from.Row

	if from.File == to.File {
		if dRow == step {
			return b.At(to).IsEmpty()
		}
		if from.Row == home && dRow == 2*step {
			mid := core.Square{File: from.File, Row: from.Row + step}
			return b.At(mid).IsEmpty() && b.At(to).IsEmpty()
		}
		return false
	}

	// Diagonal capture only
	if abs(to.File-from.File) == 1 && dRow == step {
		target := b.At(to)
		return !target.IsEmpty() && target.Color != c
	}

	return false
}
