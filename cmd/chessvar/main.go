// Package main runs a two-player game on one terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"chessvar/internal/cli"
	"chessvar/internal/display"
)

func main() {
	themeName := flag.String("theme", "auto", "board theme: off, brown, green, gray, auto")
	history := flag.String("history", ".chessvar_history", "readline history file, empty to disable")
	flag.Parse()

	theme, err := display.ParseTheme(*themeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	s := cli.New(theme, isTerminal)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Println(display.Error(err.Error(), isTerminal))
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println(display.Info("chessvar", s.Theme().Colored()))
	fmt.Print("Type 'help' for commands\n\n")
	out, _ := s.Execute("board")
	fmt.Print(out)

	for {
		rl.SetPrompt(s.Prompt())

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, display.Error(err.Error(), s.Theme().Colored()))
			break
		}

		out, quit := s.Execute(line)
		fmt.Fprint(rl.Stdout(), out)
		if quit {
			break
		}
	}
}
