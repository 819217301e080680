// Package game holds the state of a single chess game: the board, the side to
// move and an opaque status flag. It is the only place a board is mutated.
package game

import (
	"chessvar/internal/board"
	"chessvar/internal/core"
	"chessvar/internal/rules"
)

// Game is not safe for concurrent use.
type Game struct {
	board  board.Board
	turn   core.Color
	status core.Status
}

// New starts a game from the standard arrangement with White to move
func New() *Game {
	return FromPosition(board.New(), core.ColorWhite)
}

func FromPosition(b board.Board, turn core.Color) *Game {
	if turn != core.ColorBlack {
		turn = core.ColorWhite
	}
	return &Game{
		board:  b,
		turn:   turn,
		status: core.StatusUnfinished,
	}
}

// ApplyMove moves the piece on start to end if the move is legal for the side
// to move. The board and turn change only when it returns true.
func (g *Game) ApplyMove(start, end string) bool {
	from, to, ok := g.check(start, end)
	if !ok {
		return false
	}

	piece := g.board.At(from)
	g.board.Clear(from)
	g.board.Set(to, piece)
	g.turn = core.OppositeColor(g.turn)
	return true
}

// CanMove runs the same checks as ApplyMove without committing the move
func (g *Game) CanMove(start, end string) bool {
	_, _, ok := g.check(start, end)
	return ok
}

func (g *Game) check(start, end string) (from, to core.Square, ok bool) {
	from, err := core.ParseSquare(start)
	if err != nil {
		return from, to, false
	}
	to, err = core.ParseSquare(end)
	if err != nil {
		return from, to, false
	}

	piece := g.board.At(from)
	if piece.IsEmpty() || piece.Color != g.turn {
		return from, to, false
	}

	return from, to, rules.Legal(&g.board, from, to)
}

// Hints lists the squares the side to move's piece on start may move to
func (g *Game) Hints(start string) []core.Square {
	from, err := core.ParseSquare(start)
	if err != nil {
		return nil
	}
	piece := g.board.At(from)
	if piece.IsEmpty() || piece.Color != g.turn {
		return nil
	}
	return rules.Targets(&g.board, from)
}

// PieceAt returns the piece on a square; ok is false for bad labels and empty squares
func (g *Game) PieceAt(label string) (core.Piece, bool) {
	p := g.board.GetPieceAt(label)
	return p, !p.IsEmpty()
}

func (g *Game) Turn() core.Color {
	return g.turn
}

func (g *Game) Status() core.Status {
	return g.status
}

func (g *Game) SetStatus(s core.Status) {
	g.status = s
}

// Board returns a copy of the current position
func (g *Game) Board() board.Board {
	return g.board
}
