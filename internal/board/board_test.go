package board

import (
	"errors"
	"strings"
	"testing"

	"chessvar/internal/core"
)

func TestNewBoard(t *testing.T) {
	b := New()

	tests := []struct {
		square string
		want   byte
	}{
		{"a1", 'R'}, {"b1", 'N'}, {"c1", 'B'}, {"d1", 'Q'}, {"e1", 'K'},
		{"e2", 'P'}, {"e7", 'p'}, {"d8", 'q'}, {"e8", 'k'}, {"h8", 'r'},
		{"e4", 0}, {"a5", 0},
	}
	for _, tt := range tests {
		if got := b.GetPieceAt(tt.square).Letter(); got != tt.want {
			t.Errorf("GetPieceAt(%s) = %q, want %q", tt.square, got, tt.want)
		}
	}

	if b.Count(core.ColorWhite) != 16 || b.Count(core.ColorBlack) != 16 {
		t.Errorf("Count() = %d/%d, want 16/16", b.Count(core.ColorWhite), b.Count(core.ColorBlack))
	}
	if !b.GetPieceAt("z9").IsEmpty() {
		t.Error("bad label should read as empty")
	}
}

func TestBoardIsValue(t *testing.T) {
	b := New()
	snapshot := b

	e2, _ := core.ParseSquare("e2")
	b.Clear(e2)

	if snapshot.At(e2).IsEmpty() {
		t.Error("copy shares storage with original")
	}
}

func TestPlacementRoundTrip(t *testing.T) {
	placements := []string{
		StartingPlacement,
		"rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR",
		"4k3/8/8/8/8/8/8/4K3",
		"8/8/8/8/8/8/8/8",
	}
	for _, fen := range placements {
		b, err := ParsePlacement(fen)
		if err != nil {
			t.Fatalf("ParsePlacement(%q) error: %v", fen, err)
		}
		if got := b.Placement(); got != fen {
			t.Errorf("Placement() = %q, want %q", got, fen)
		}
	}
}

func TestParsePlacementErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8",
		"9/8/8/8/8/8/8/8",
		"44p/8/8/8/8/8/8/8",
		"rnbqkbnrr/8/8/8/8/8/8/8",
		"7x/8/8/8/8/8/8/8",
		"7/8/8/8/8/8/8/8",
	}
	for _, fen := range bad {
		if _, err := ParsePlacement(fen); err == nil {
			t.Errorf("ParsePlacement(%q) should fail", fen)
		}
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		fen     string
		turn    core.Color
		wantErr bool
	}{
		{StartingPlacement, core.ColorWhite, false},
		{StartingPlacement + " b", core.ColorBlack, false},
		{StartingPlacement + " w KQkq - 0 1", core.ColorWhite, false},
		{StartingPlacement + " x", 0, true},
		{"", 0, true},
		{StartingPlacement + " w KQkq - 0 1 extra", 0, true},
	}
	for _, tt := range tests {
		_, turn, err := ParsePosition(tt.fen)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePosition(%q) should fail", tt.fen)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePosition(%q) error: %v", tt.fen, err)
			continue
		}
		if turn != tt.turn {
			t.Errorf("ParsePosition(%q) turn = %v, want %v", tt.fen, turn, tt.turn)
		}
	}
}

func TestToASCII(t *testing.T) {
	b := New()
	ascii := b.ToASCII()
	lines := strings.Split(ascii, "\n")
	if len(lines) != 10 {
		t.Fatalf("ToASCII() has %d lines, want 10", len(lines))
	}
	if lines[1] != "8 r n b q k b n r  8" {
		t.Errorf("rank 8 line = %q", lines[1])
	}
	if lines[5] != "4 . . . . . . . .  4" {
		t.Errorf("rank 4 line = %q", lines[5])
	}
	if lines[8] != "1 R N B Q K B N R  1" {
		t.Errorf("rank 1 line = %q", lines[8])
	}
}

func TestParseErrorsWrapSentinel(t *testing.T) {
	for _, fen := range []string{"", "8/8", StartingPlacement + " x"} {
		if _, _, err := ParsePosition(fen); !errors.Is(err, ErrBadPlacement) {
			t.Errorf("ParsePosition(%q) error = %v, want ErrBadPlacement", fen, err)
		}
	}
}
