package board

import (
	"errors"
	"fmt"
	"strings"

	"chessvar/internal/core"
)

var ErrBadPlacement = errors.New("invalid FEN")

// ParsePlacement reads the piece-placement field of a FEN string
func ParsePlacement(field string) (Board, error) {
	var b Board

	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("%w: expected 8 ranks, got %d", ErrBadPlacement, len(ranks))
	}

	for r := 0; r < 8; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				if file > 8 {
					return Board{}, fmt.Errorf("%w: rank %d overflows", ErrBadPlacement, 8-r)
				}
				continue
			}
			if file >= 8 {
				return Board{}, fmt.Errorf("%w: too many pieces in rank %d", ErrBadPlacement, 8-r)
			}
			piece, ok := core.PieceFromLetter(ch)
			if !ok {
				return Board{}, fmt.Errorf("%w: unknown piece %q in rank %d", ErrBadPlacement, ch, 8-r)
			}
			b.squares[r][file] = piece
			file++
		}
		if file != 8 {
			return Board{}, fmt.Errorf("%w: rank %d has %d files", ErrBadPlacement, 8-r, file)
		}
	}

	return b, nil
}

// ParsePosition reads a placement field and an optional side-to-move field.
// Castling, en-passant and clock fields are accepted and ignored.
func ParsePosition(fen string) (Board, core.Color, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return Board{}, 0, fmt.Errorf("%w: empty", ErrBadPlacement)
	}
	if len(parts) > 6 {
		return Board{}, 0, fmt.Errorf("%w: expected at most 6 parts, got %d", ErrBadPlacement, len(parts))
	}

	b, err := ParsePlacement(parts[0])
	if err != nil {
		return Board{}, 0, err
	}

	turn := core.ColorWhite
	if len(parts) > 1 {
		switch parts[1] {
		case "w":
			turn = core.ColorWhite
		case "b":
			turn = core.ColorBlack
		default:
			return Board{}, 0, fmt.Errorf("%w: turn must be 'w' or 'b'", ErrBadPlacement)
		}
	}

	return b, turn, nil
}

// Placement writes the piece-placement field of the board
func (b *Board) Placement() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
