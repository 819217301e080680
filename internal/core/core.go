package core

import "strings"

// Status is the game status flag. The engine never derives it; callers set it.
type Status string

const (
	StatusUnfinished Status = "UNFINISHED"
	StatusWhiteWon   Status = "WHITE_WON"
	StatusBlackWon   Status = "BLACK_WON"
)

func (s Status) String() string {
	return string(s)
}

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the color as shown to players
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func (c Color) Opposite() Color {
	return OppositeColor(c)
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w"/"b" and "white"/"black" in any case
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	}
	return 0, false
}
