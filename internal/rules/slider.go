package rules

import "chessvar/internal/core"

func bishop(b Reader, c core.Color, from, to core.Square) bool {
	dFile := abs(to.File - from.File)
	dRow := abs(to.Row - from.Row)
	if dFile != dRow || dFile == 0 {
		return false
	}
	return pathClear(b, from, to) && canLand(b, c, to)
}

func rook(b Reader, c core.Color, from, to core.Square) bool {
	sameFile := to.File == from.File
	sameRow := to.Row == from.Row
	if sameFile == sameRow {
		// Either diagonal/irregular or a null move
		return false
	}
	return pathClear(b, from, to) && canLand(b, c, to)
}

func queen(b Reader, c core.Color, from, to core.Square) bool {
	return bishop(b, c, from, to) || rook(b, c, from, to)
}

// pathClear checks the squares strictly between from and to along a straight
// or diagonal line. Adjacent squares have nothing in between.
func pathClear(b Reader, from, to core.Square) bool {
	fileDir := sign(to.File - from.File)
	rowDir := sign(to.Row - from.Row)

	sq := core.Square{File: from.File + fileDir, Row: from.Row + rowDir}
	for sq != to {
		if !b.At(sq).IsEmpty() {
			return false
		}
		sq.File += fileDir
		sq.Row += rowDir
	}
	return true
}
