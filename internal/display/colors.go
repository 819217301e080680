// Package display renders boards and prompts for terminals.
package display

import "chessvar/internal/core"

// Terminal color codes
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Prompt returns a colored prompt string; plain when color is off
func Prompt(text string, color bool) string {
	if !color {
		return text + " > "
	}
	return Yellow + text + " > " + Reset
}

// ColorName returns the color's name, colored when color is on
func ColorName(c core.Color, color bool) string {
	if !color {
		return c.Name()
	}
	if c == core.ColorWhite {
		return Blue + c.Name() + Reset
	}
	return Red + c.Name() + Reset
}

func paint(code, s string, color bool) string {
	if !color {
		return s
	}
	return code + s + Reset
}

// Error paints s red when color is on
func Error(s string, color bool) string {
	return paint(Red, s, color)
}

func Info(s string, color bool) string {
	return paint(Cyan, s, color)
}

// Success paints s green when color is on
func Success(s string, color bool) string {
	return paint(Green, s, color)
}
