// Package rules decides whether a single piece may travel between two squares.
// Only the moving piece's own movement pattern is considered: there is no
// notion of check, castling, en-passant or promotion.
package rules

import (
	"fmt"

	"chessvar/internal/core"
)

// Reader is a read-only view of a board
type Reader interface {
	At(sq core.Square) core.Piece
}

// Legal reports whether the piece on from may move to to
func Legal(b Reader, from, to core.Square) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}

	piece := b.At(from)
	if piece.IsEmpty() {
		return false
	}

	switch piece.Kind {
	case core.Pawn:
		return pawn(b, piece.Color, from, to)
	case core.Knight:
		return knight(b, piece.Color, from, to)
	case core.Bishop:
		return bishop(b, piece.Color, from, to)
	case core.Rook:
		return rook(b, piece.Color, from, to)
	case core.Queen:
		return queen(b, piece.Color, from, to)
	case core.King:
		return king(b, piece.Color, from, to)
	default:
		panic(fmt.Sprintf("rules: unknown piece kind %d on %s", piece.Kind, from))
	}
}

// Targets lists every square the piece on from may move to, rank 8 first
func Targets(b Reader, from core.Square) []core.Square {
	if !from.Valid() || b.At(from).IsEmpty() {
		return nil
	}

	var targets []core.Square
	for row := 0; row < 8; row++ {
		for file := 0; file < 8; file++ {
			to := core.Square{File: file, Row: row}
			if Legal(b, from, to) {
				targets = append(targets, to)
			}
		}
	}
	return targets
}

// canLand reports whether a piece of color c may finish on sq:
// the square is empty or holds an opposing piece.
func canLand(b Reader, c core.Color, sq core.Square) bool {
	p := b.At(sq)
	return p.IsEmpty() || p.Color != c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
