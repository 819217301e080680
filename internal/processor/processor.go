// Package processor turns transport-neutral commands into service calls and
// shapes their results into API responses.
package processor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"chessvar/internal/board"
	"chessvar/internal/core"
	"chessvar/internal/service"
)

// Processor executes commands against the session service
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetSquare:
		return p.handleGetSquare(cmd)
	case CmdSetStatus:
		return p.handleSetStatus(cmd)
	case CmdClaimSeat:
		return p.handleClaimSeat(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// normalizeSquare trims and lower-cases a label and checks it names a square
func normalizeSquare(label string) (string, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if _, err := core.ParseSquare(label); err != nil {
		return "", err
	}
	return label, nil
}

// isFENSafe rejects control characters before the FEN reaches the parser
func isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	fen := strings.TrimSpace(args.FEN)
	if !isFENSafe(fen) {
		return p.errorResponse("invalid FEN characters", core.ErrInvalidFEN)
	}

	var seat core.Color
	if args.Seat != "" {
		if cmd.UserID == "" {
			return p.errorResponse("claiming a seat requires authentication", core.ErrUnauthorized)
		}
		c, ok := core.ParseColor(args.Seat)
		if !ok {
			return p.errorResponse("invalid seat color", core.ErrInvalidRequest)
		}
		seat = c
	}

	snap, err := p.svc.CreateGame(fen, seat, cmd.UserID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    buildGameResponse(snap),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{
		Success: true,
		Data:    buildGameResponse(snap),
	}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true}
}

// handleMakeMove reports illegal moves as a successful response with
// Applied false; only malformed input and policy refusals are errors.
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	from, err := normalizeSquare(args.From)
	if err != nil {
		return p.errorResponseDetails("invalid start square", core.ErrInvalidSquare, err.Error())
	}
	to, err := normalizeSquare(args.To)
	if err != nil {
		return p.errorResponseDetails("invalid end square", core.ErrInvalidSquare, err.Error())
	}

	outcome, err := p.svc.ApplyMove(cmd.GameID, cmd.UserID, from, to)
	if err != nil {
		return p.serviceError(err)
	}

	resp := core.MoveResponse{
		Applied: outcome.Applied,
		From:    from,
		To:      to,
		Game:    buildGameResponse(outcome.Game),
	}
	switch {
	case !outcome.Applied:
		resp.Reason = core.ErrInvalidMove
	case !outcome.Captured.IsEmpty():
		resp.Captured = string(outcome.Captured.Letter())
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   snap.Board.Placement(),
			Board: snap.Board.ToASCII(),
		},
	}
}

func (p *Processor) handleGetSquare(cmd Command) ProcessorResponse {
	label, _ := cmd.Args.(string)
	square, err := normalizeSquare(label)
	if err != nil {
		return p.errorResponseDetails("invalid square", core.ErrInvalidSquare, err.Error())
	}

	piece, targets, err := p.svc.Hints(cmd.GameID, square)
	if err != nil {
		return p.serviceError(err)
	}

	resp := core.SquareResponse{
		Square:  square,
		Targets: make([]string, 0, len(targets)),
	}
	if !piece.IsEmpty() {
		resp.Piece = string(piece.Letter())
	}
	for _, t := range targets {
		resp.Targets = append(resp.Targets, t.String())
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleSetStatus(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.StatusRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	status := strings.ToUpper(strings.TrimSpace(args.Status))
	if status == "" {
		return p.errorResponse("status must not be empty", core.ErrInvalidRequest)
	}

	snap, err := p.svc.SetStatus(cmd.GameID, core.Status(status))
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{
		Success: true,
		Data:    buildGameResponse(snap),
	}
}

func (p *Processor) handleClaimSeat(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SeatRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if cmd.UserID == "" {
		return p.errorResponse("claiming a seat requires authentication", core.ErrUnauthorized)
	}

	color, ok := core.ParseColor(args.Color)
	if !ok {
		return p.errorResponse("invalid seat color", core.ErrInvalidRequest)
	}

	snap, err := p.svc.ClaimSeat(cmd.GameID, color, cmd.UserID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{
		Success: true,
		Data:    buildGameResponse(snap),
	}
}

func buildGameResponse(snap service.Snapshot) core.GameResponse {
	return core.GameResponse{
		GameID:    snap.GameID,
		FEN:       snap.Board.Placement(),
		Turn:      snap.Turn.String(),
		Status:    snap.Status.String(),
		MoveCount: snap.MoveCount,
		Seats: core.SeatsResponse{
			White: snap.WhiteUserID,
			Black: snap.BlackUserID,
		},
	}
}

// serviceError maps service sentinel errors to API error codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrGameOver):
		return p.errorResponseDetails("game is over", core.ErrGameOver, err.Error())
	case errors.Is(err, service.ErrNotYourSeat):
		return p.errorResponseDetails("not your seat", core.ErrNotYourSeat, err.Error())
	case errors.Is(err, service.ErrSeatTaken):
		return p.errorResponseDetails("seat taken", core.ErrSeatTaken, err.Error())
	case errors.Is(err, board.ErrBadPlacement):
		return p.errorResponseDetails("invalid FEN", core.ErrInvalidFEN, err.Error())
	default:
		return p.errorResponse(fmt.Sprintf("internal error: %v", err), core.ErrInternalError)
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return p.errorResponseDetails(message, code, "")
}

func (p *Processor) errorResponseDetails(message, code, details string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   message,
			Code:    code,
			Details: details,
		},
	}
}
