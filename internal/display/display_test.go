package display

import (
	"bytes"
	"strings"
	"testing"

	"chessvar/internal/board"
	"chessvar/internal/core"
)

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"off", ThemeOff, false},
		{"Brown", ThemeBrown, false},
		{" green ", ThemeGreen, false},
		{"GRAY", ThemeGray, false},
		{"auto", ThemeAuto, false},
		{"purple", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTheme(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTheme(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := ThemeAuto.Resolve(true); got != ThemeBrown {
		t.Errorf("auto on terminal = %q, want brown", got)
	}
	if got := ThemeAuto.Resolve(false); got != ThemeOff {
		t.Errorf("auto off terminal = %q, want off", got)
	}
	if got := ThemeGray.Resolve(false); got != ThemeGray {
		t.Errorf("explicit theme changed to %q", got)
	}
	if ThemeOff.Colored() || ThemeAuto.Colored() || !ThemeGreen.Colored() {
		t.Error("Colored() mismatch")
	}
}

func TestRenderBoardPlain(t *testing.T) {
	b := board.New()
	e3, _ := core.ParseSquare("e3")
	e4, _ := core.ParseSquare("e4")

	var buf bytes.Buffer
	RenderBoard(&buf, &b, ThemeOff, []core.Square{e3, e4})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10:\n%s", len(lines), buf.String())
	}
	checks := map[int]string{
		0: "  a b c d e f g h",
		1: "8 r n b q k b n r  8",
		4: "5 . . . . . . . .  5",
		5: "4 . . . . * . . .  4",
		6: "3 . . . . * . . .  3",
		8: "1 R N B Q K B N R  1",
		9: "  a b c d e f g h",
	}
	for i, want := range checks {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("plain render contains escape codes")
	}
}

func TestRenderBoardColored(t *testing.T) {
	b := board.New()
	var buf bytes.Buffer
	RenderBoard(&buf, &b, ThemeGreen, nil)

	out := buf.String()
	if !strings.Contains(out, themes[ThemeGreen].lightBg) || !strings.Contains(out, themes[ThemeGreen].darkBg) {
		t.Error("colored render missing square backgrounds")
	}
	if strings.Contains(out, themes[ThemeGreen].hintBg) {
		t.Error("hint background used without hints")
	}
}

func TestRenderBoardUnknownThemeFallsBack(t *testing.T) {
	b := board.New()
	var buf bytes.Buffer
	RenderBoard(&buf, &b, Theme("neon"), nil)
	if strings.Contains(buf.String(), "\033[") {
		t.Error("unknown theme should render plain")
	}
}

func TestPaint(t *testing.T) {
	if got := Error("x", false); got != "x" {
		t.Errorf("Error plain = %q", got)
	}
	if got := Success("x", true); got != Green+"x"+Reset {
		t.Errorf("Success colored = %q", got)
	}
	if got := Info("x", true); got != Cyan+"x"+Reset {
		t.Errorf("Info colored = %q", got)
	}
	if got := ColorName(core.ColorBlack, false); got != "Black" {
		t.Errorf("ColorName = %q", got)
	}
	if got := Prompt("White", false); got != "White > " {
		t.Errorf("Prompt = %q", got)
	}
}
