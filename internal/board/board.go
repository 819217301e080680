package board

import (
	"fmt"
	"strings"

	"chessvar/internal/core"
)

const (
	StartingPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

// Board is an 8x8 grid indexed [row][file], row 0 being rank 8.
// Board is a value: assigning it copies every cell.
type Board struct {
	squares [8][8]core.Piece
}

// New returns the standard initial arrangement
func New() Board {
	b, err := ParsePlacement(StartingPlacement)
	if err != nil {
		panic(fmt.Sprintf("board: starting placement: %v", err))
	}
	return b
}

func (b *Board) At(sq core.Square) core.Piece {
	if !sq.Valid() {
		return core.Piece{}
	}
	return b.squares[sq.Row][sq.File]
}

func (b *Board) Set(sq core.Square, p core.Piece) {
	b.squares[sq.Row][sq.File] = p
}

func (b *Board) Clear(sq core.Square) {
	b.squares[sq.Row][sq.File] = core.Piece{}
}

// GetPieceAt returns the piece on an algebraic square, or an empty piece for bad labels
func (b *Board) GetPieceAt(label string) core.Piece {
	sq, err := core.ParseSquare(label)
	if err != nil {
		return core.Piece{}
	}
	return b.At(sq)
}

// Count returns the number of occupied squares holding the given color
func (b *Board) Count(c core.Color) int {
	n := 0
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if p := b.squares[r][f]; !p.IsEmpty() && p.Color == c {
				n++
			}
		}
	}
	return n
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b.squares[r][f]
			if piece.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Letter()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
