package display

import (
	"fmt"
	"io"
	"strings"

	"chessvar/internal/board"
	"chessvar/internal/core"
)

type Theme string

const (
	ThemeOff   Theme = "off"
	ThemeBrown Theme = "brown"
	ThemeGreen Theme = "green"
	ThemeGray  Theme = "gray"
	ThemeAuto  Theme = "auto"
)

type themeColors struct {
	lightBg string
	darkBg  string
	hintBg  string
	white   string
	black   string
}

var themes = map[Theme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		hintBg:  "\033[48;5;178m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		hintBg:  "\033[48;5;185m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		hintBg:  "\033[48;5;110m",
		white:   "\033[97m",
		black:   "\033[30m",
	},
}

// ParseTheme accepts the theme names case-insensitively
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := themes[t]; ok || t == ThemeAuto {
		return t, nil
	}
	return "", fmt.Errorf("invalid theme: %s (use: off, brown, green, gray, auto)", name)
}

// Resolve turns auto into brown on a terminal and off elsewhere
func (t Theme) Resolve(isTerminal bool) Theme {
	if t != ThemeAuto {
		return t
	}
	if isTerminal {
		return ThemeBrown
	}
	return ThemeOff
}

// Colored reports whether the theme emits escape codes
func (t Theme) Colored() bool {
	return t != ThemeOff && t != ThemeAuto
}

// RenderBoard draws the board with rank 8 on top. Squares in hints are
// marked: with a background in color themes, with '*' on empty squares
// when color is off.
func RenderBoard(w io.Writer, b *board.Board, theme Theme, hints []core.Square) {
	colors, ok := themes[theme]
	if !ok {
		colors = themes[ThemeOff]
		theme = ThemeOff
	}

	marked := make(map[core.Square]bool, len(hints))
	for _, sq := range hints {
		marked[sq] = true
	}

	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%d ", 8-row)
		for file := 0; file < 8; file++ {
			sq := core.Square{File: file, Row: row}
			p := b.At(sq)

			if theme == ThemeOff {
				switch {
				case !p.IsEmpty():
					sb.WriteByte(p.Letter())
				case marked[sq]:
					sb.WriteByte('*')
				default:
					sb.WriteByte('.')
				}
				sb.WriteByte(' ')
				continue
			}

			bg := colors.darkBg
			if (row+file)%2 == 0 {
				bg = colors.lightBg
			}
			if marked[sq] {
				bg = colors.hintBg
			}

			if p.IsEmpty() {
				fmt.Fprintf(&sb, "%s  %s", bg, Reset)
				continue
			}
			fg := colors.black
			if p.Color == core.ColorWhite {
				fg = colors.white
			}
			fmt.Fprintf(&sb, "%s%s%c %s", bg, fg, p.Letter(), Reset)
		}
		fmt.Fprintf(&sb, " %d\n", 8-row)
	}
	sb.WriteString("  a b c d e f g h\n")

	io.WriteString(w, sb.String())
}
