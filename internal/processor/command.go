package processor

import (
	"chessvar/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdMakeMove
	CmdGetBoard
	CmdGetSquare
	CmdSetStatus
	CmdClaimSeat
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string // empty for anonymous callers
	GameID string
	Args   any // command-specific arguments
}

// ProcessorResponse wraps a result or an error
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(userID string, req core.CreateGameRequest) Command {
	return Command{
		Type:   CmdCreateGame,
		UserID: userID,
		Args:   req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID string) Command {
	return Command{
		Type:   CmdDeleteGame,
		GameID: gameID,
	}
}

func NewMakeMoveCommand(gameID, userID string, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewGetSquareCommand(gameID, square string) Command {
	return Command{
		Type:   CmdGetSquare,
		GameID: gameID,
		Args:   square,
	}
}

func NewSetStatusCommand(gameID string, req core.StatusRequest) Command {
	return Command{
		Type:   CmdSetStatus,
		GameID: gameID,
		Args:   req,
	}
}

func NewClaimSeatCommand(gameID, userID string, req core.SeatRequest) Command {
	return Command{
		Type:   CmdClaimSeat,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}
