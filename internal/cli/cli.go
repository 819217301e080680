// Package cli implements the command set of the local two-player terminal
// game. It does no I/O of its own; the caller feeds lines and prints output.
package cli

import (
	"fmt"
	"strings"

	"chessvar/internal/board"
	"chessvar/internal/core"
	"chessvar/internal/display"
	"chessvar/internal/game"
)

type Session struct {
	game       *game.Game
	theme      display.Theme
	isTerminal bool
}

// New starts a session on the standard arrangement. The auto theme is
// resolved against isTerminal.
func New(theme display.Theme, isTerminal bool) *Session {
	return &Session{
		game:       game.New(),
		theme:      theme.Resolve(isTerminal),
		isTerminal: isTerminal,
	}
}

func (s *Session) Game() *game.Game {
	return s.game
}

func (s *Session) Theme() display.Theme {
	return s.theme
}

// Prompt shows whose turn it is
func (s *Session) Prompt() string {
	return display.Prompt(s.game.Turn().Name(), s.theme.Colored())
}

// Execute runs one input line and returns what to print. quit is true for
// quit and exit.
func (s *Session) Execute(line string) (output string, quit bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return "", false
	}

	switch fields[0] {
	case "quit", "exit":
		return "Goodbye.\n", true
	case "help", "?":
		return helpText, false
	case "board":
		return s.renderBoard(nil), false
	case "turn":
		return display.ColorName(s.game.Turn(), s.theme.Colored()) + " to move\n", false
	case "hint":
		return s.hint(fields[1:]), false
	case "status":
		return s.status(line, fields[1:]), false
	case "new":
		return s.newGame(line, fields[1:]), false
	case "color", "colour":
		return s.setTheme(fields[1:]), false
	}

	// Moves: "e2 e4" or "e2e4"
	switch {
	case len(fields) == 2 && len(fields[0]) == 2 && len(fields[1]) == 2:
		return s.move(fields[0], fields[1]), false
	case len(fields) == 1 && len(fields[0]) == 4:
		return s.move(fields[0][:2], fields[0][2:]), false
	}

	return s.errorf("unknown command: %s (type 'help')", fields[0]), false
}

func (s *Session) move(from, to string) string {
	if st := s.game.Status(); st != core.StatusUnfinished {
		return s.errorf("game is over: %s", st)
	}
	if _, err := core.ParseSquare(from); err != nil {
		return s.errorf("%v", err)
	}
	if _, err := core.ParseSquare(to); err != nil {
		return s.errorf("%v", err)
	}

	piece, _ := s.game.PieceAt(from)
	captured, _ := s.game.PieceAt(to)
	if !s.game.ApplyMove(from, to) {
		return s.errorf("illegal move: %s %s", from, to)
	}

	summary := fmt.Sprintf("%s %s-%s", piece, from, to)
	if !captured.IsEmpty() {
		summary += fmt.Sprintf(" takes %s", captured)
	}

	var sb strings.Builder
	sb.WriteString(display.Success(summary, s.theme.Colored()))
	sb.WriteByte('\n')
	sb.WriteString(s.renderBoard(nil))
	return sb.String()
}

func (s *Session) hint(args []string) string {
	if len(args) != 1 {
		return s.errorf("usage: hint <square>")
	}
	if _, err := core.ParseSquare(args[0]); err != nil {
		return s.errorf("%v", err)
	}

	targets := s.game.Hints(args[0])
	if len(targets) == 0 {
		return display.Info("no moves from "+args[0], s.theme.Colored()) + "\n"
	}

	labels := make([]string, len(targets))
	for i, sq := range targets {
		labels[i] = sq.String()
	}
	return s.renderBoard(targets) + display.Info(strings.Join(labels, " "), s.theme.Colored()) + "\n"
}

// status shows the flag, or sets it when a value is given. The value keeps
// its original case from line.
func (s *Session) status(line string, args []string) string {
	if len(args) == 0 {
		return s.game.Status().String() + "\n"
	}
	value := strings.ToUpper(strings.Fields(line)[1])
	s.game.SetStatus(core.Status(value))
	return "Status set to " + value + "\n"
}

func (s *Session) newGame(line string, args []string) string {
	if len(args) == 0 {
		s.game = game.New()
		return s.renderBoard(nil)
	}

	// FEN letters are case-sensitive, so take the raw text after "new"
	fen := strings.TrimSpace(strings.TrimSpace(line)[len("new"):])
	b, turn, err := board.ParsePosition(fen)
	if err != nil {
		return s.errorf("%v", err)
	}
	s.game = game.FromPosition(b, turn)
	return s.renderBoard(nil)
}

func (s *Session) setTheme(args []string) string {
	if len(args) != 1 {
		return s.errorf("usage: color <off|brown|green|gray|auto>")
	}
	theme, err := display.ParseTheme(args[0])
	if err != nil {
		return s.errorf("%v", err)
	}
	s.theme = theme.Resolve(s.isTerminal)
	return "Theme set to " + string(s.theme) + "\n"
}

func (s *Session) renderBoard(hints []core.Square) string {
	var sb strings.Builder
	b := s.game.Board()
	display.RenderBoard(&sb, &b, s.theme, hints)
	fmt.Fprintf(&sb, "%s to move\n", display.ColorName(s.game.Turn(), s.theme.Colored()))
	return sb.String()
}

func (s *Session) errorf(format string, args ...any) string {
	return display.Error("Error: "+fmt.Sprintf(format, args...), s.theme.Colored()) + "\n"
}

const helpText = `Commands:
  e2 e4 | e2e4      move a piece
  hint <square>     show where the piece on a square can go
  board             show the board
  turn              show the side to move
  status [value]    show or set the game status
  new [fen]         start over, optionally from a FEN position
  color <theme>     off, brown, green, gray or auto
  help              show this help
  quit | exit       leave
`
