package core

import (
	"errors"
	"fmt"
)

var ErrBadSquare = errors.New("invalid square")

// Square addresses a cell of the stored grid. Row 0 holds rank 8, so White
// pawns advance toward decreasing rows.
type Square struct {
	File int
	Row  int
}

// ParseSquare translates an algebraic label such as "e4"
func ParseSquare(label string) (Square, error) {
	if len(label) != 2 {
		return Square{}, fmt.Errorf("%w: %q must be two characters", ErrBadSquare, label)
	}
	if label[0] < 'a' || label[0] > 'h' || label[1] < '1' || label[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q is off the board", ErrBadSquare, label)
	}
	return Square{
		File: int(label[0] - 'a'),
		Row:  int('8' - label[1]),
	}, nil
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File <= 7 && s.Row >= 0 && s.Row <= 7
}

// Rank returns the 1-based rank as written in algebraic notation
func (s Square) Rank() int {
	return 8 - s.Row
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File), byte('8' - s.Row)})
}
