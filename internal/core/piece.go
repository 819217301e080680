package core

type Kind byte

const (
	Pawn Kind = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Piece is identified by kind and color only. The zero value is an empty cell.
type Piece struct {
	Kind  Kind
	Color Color
}

func (p Piece) IsEmpty() bool {
	return p.Kind == 0
}

// Letter returns the FEN letter for the piece, upper case for White and 0 for an empty cell
func (p Piece) Letter() byte {
	var l byte
	switch p.Kind {
	case Pawn:
		l = 'p'
	case Knight:
		l = 'n'
	case Bishop:
		l = 'b'
	case Rook:
		l = 'r'
	case Queen:
		l = 'q'
	case King:
		l = 'k'
	default:
		return 0
	}
	if p.Color == ColorWhite {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// PieceFromLetter maps a FEN letter to a piece
func PieceFromLetter(l byte) (Piece, bool) {
	color := ColorBlack
	if l >= 'A' && l <= 'Z' {
		color = ColorWhite
		l += 'a' - 'A'
	}

	var kind Kind
	switch l {
	case 'p':
		kind = Pawn
	case 'n':
		kind = Knight
	case 'b':
		kind = Bishop
	case 'r':
		kind = Rook
	case 'q':
		kind = Queen
	case 'k':
		kind = King
	default:
		return Piece{}, false
	}
	return Piece{Kind: kind, Color: color}, true
}
