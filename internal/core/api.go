package core

// Request types

type CreateGameRequest struct {
	FEN  string `json:"fen,omitempty" validate:"omitempty,max=100"`
	Seat string `json:"seat,omitempty" validate:"omitempty,oneof=w b"` // Claims a color for the authenticated user
}

type MoveRequest struct {
	From string `json:"from" validate:"required,max=8"`
	To   string `json:"to" validate:"required,max=8"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

type SeatRequest struct {
	Color string `json:"color" validate:"required,oneof=w b"`
}

// Response types

type GameResponse struct {
	GameID    string        `json:"gameId"`
	FEN       string        `json:"fen"`    // Piece placement field only
	Turn      string        `json:"turn"`   // "w" or "b"
	Status    string        `json:"status"` // "UNFINISHED" unless set by a caller
	MoveCount int           `json:"moveCount"`
	Seats     SeatsResponse `json:"seats"`
}

type SeatsResponse struct {
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`
}

type MoveResponse struct {
	Applied  bool         `json:"applied"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Captured string       `json:"captured,omitempty"` // FEN letter of the captured piece
	Reason   string       `json:"reason,omitempty"`   // INVALID_MOVE when not applied
	Game     GameResponse `json:"game"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type SquareResponse struct {
	Square  string   `json:"square"`
	Piece   string   `json:"piece,omitempty"` // FEN letter, empty for a vacant square
	Targets []string `json:"targets"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
