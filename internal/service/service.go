// Package service holds the server's live games and coordinates moves,
// seats, persistence and long-poll notification around them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chessvar/internal/board"
	"chessvar/internal/core"
	"chessvar/internal/game"
	"chessvar/internal/storage"
)

const (
	GameIdleTTL        = 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameOver        = errors.New("game is no longer in progress")
	ErrNotYourSeat     = errors.New("color is seated by another user")
	ErrSeatTaken       = errors.New("seat already claimed")
	ErrStorageDisabled = errors.New("storage disabled")
)

// session is one live game plus the bookkeeping the engine does not track
type session struct {
	game         *game.Game
	white        string // seated user IDs, empty when open
	black        string
	moveCount    int
	lastActivity time.Time
}

func (ss *session) seat(c core.Color) string {
	if c == core.ColorBlack {
		return ss.black
	}
	return ss.white
}

// Snapshot is a detached view of a game
type Snapshot struct {
	GameID      string
	Board       board.Board
	Turn        core.Color
	Status      core.Status
	MoveCount   int
	WhiteUserID string
	BlackUserID string
}

// MoveOutcome reports an attempted move; Applied is false for illegal moves
type MoveOutcome struct {
	Applied  bool
	Piece    core.Piece
	Captured core.Piece
	Game     Snapshot
}

// Service coordinates game state, users and storage
type Service struct {
	games     map[string]*session
	mu        sync.RWMutex
	store     *storage.Store // nil if persistence disabled
	jwtSecret []byte
	waiter    *WaitRegistry
	now       func() time.Time
}

// New creates a service; store may be nil
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*session),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
		now:       time.Now,
	}
}

// GetStorageHealth returns "ok", "degraded" or "disabled"
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

func (s *Service) snapshot(id string, ss *session) Snapshot {
	return Snapshot{
		GameID:      id,
		Board:       ss.game.Board(),
		Turn:        ss.game.Turn(),
		Status:      ss.game.Status(),
		MoveCount:   ss.moveCount,
		WhiteUserID: ss.white,
		BlackUserID: ss.black,
	}
}

// CreateGame starts a game from a FEN position, or the standard setup when
// fen is empty. A non-zero seat claims that color for userID.
func (s *Service) CreateGame(fen string, seat core.Color, userID string) (Snapshot, error) {
	var g *game.Game
	if fen == "" {
		g = game.New()
	} else {
		b, turn, err := board.ParsePosition(fen)
		if err != nil {
			return Snapshot{}, err
		}
		g = game.FromPosition(b, turn)
	}

	ss := &session{game: g, lastActivity: s.now()}
	switch seat {
	case core.ColorWhite:
		ss.white = userID
	case core.ColorBlack:
		ss.black = userID
	}

	id := uuid.New().String()

	// Storage writes are queued under the lock to keep them in game order
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[id] = ss
	snap := s.snapshot(id, ss)

	if s.store != nil {
		record := storage.GameRecord{
			GameID:           id,
			InitialPlacement: snap.Board.Placement(),
			InitialTurn:      snap.Turn.String(),
			Status:           snap.Status.String(),
			WhiteUserID:      ss.white,
			BlackUserID:      ss.black,
			StartTimeUTC:     s.now().UTC(),
		}
		if err := s.store.RecordNewGame(record); err != nil {
			log.Printf("Failed to persist game %s: %v", id, err)
		}
	}

	return snap, nil
}

// GetGame returns a snapshot of the game
func (s *Service) GetGame(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.games[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	ss.lastActivity = s.now()
	return s.snapshot(id, ss), nil
}

// DeleteGame drops the game, releases its waiters and removes it from storage
func (s *Service) DeleteGame(id string) error {
	s.mu.Lock()
	if _, ok := s.games[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	delete(s.games, id)
	if s.store != nil {
		if err := s.store.DeleteGame(id); err != nil {
			log.Printf("Failed to delete game %s from storage: %v", id, err)
		}
	}
	s.mu.Unlock()

	s.waiter.RemoveGame(id)
	return nil
}

// ApplyMove attempts from-to for userID. Errors are reserved for missing
// games, finished games and seat violations; an illegal move is reported
// through MoveOutcome.Applied.
func (s *Service) ApplyMove(id, userID, from, to string) (MoveOutcome, error) {
	s.mu.Lock()

	ss, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return MoveOutcome{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if ss.game.Status() != core.StatusUnfinished {
		s.mu.Unlock()
		return MoveOutcome{}, fmt.Errorf("%w: status %s", ErrGameOver, ss.game.Status())
	}

	mover := ss.game.Turn()
	if owner := ss.seat(mover); owner != "" && owner != userID {
		s.mu.Unlock()
		return MoveOutcome{}, fmt.Errorf("%w: %s", ErrNotYourSeat, mover.Name())
	}

	piece, _ := ss.game.PieceAt(from)
	captured, _ := ss.game.PieceAt(to)
	ss.lastActivity = s.now()

	if !ss.game.ApplyMove(from, to) {
		snap := s.snapshot(id, ss)
		s.mu.Unlock()
		return MoveOutcome{Applied: false, Game: snap}, nil
	}

	ss.moveCount++
	snap := s.snapshot(id, ss)

	if s.store != nil {
		record := storage.MoveRecord{
			GameID:         id,
			Ply:            snap.MoveCount,
			FromSquare:     from,
			ToSquare:       to,
			Piece:          string(piece.Letter()),
			PlacementAfter: snap.Board.Placement(),
			PlayerColor:    mover.String(),
			MoveTimeUTC:    s.now().UTC(),
		}
		if !captured.IsEmpty() {
			record.Captured = string(captured.Letter())
		}
		if err := s.store.RecordMove(record); err != nil {
			log.Printf("Failed to persist move %s-%s in game %s: %v", from, to, id, err)
		}
	}
	s.mu.Unlock()

	s.waiter.NotifyGame(id, snap.MoveCount)

	return MoveOutcome{Applied: true, Piece: piece, Captured: captured, Game: snap}, nil
}

// Hints returns the piece on square and its legal destinations. Targets are
// only produced for the side to move.
func (s *Service) Hints(id, square string) (core.Piece, []core.Square, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ss, ok := s.games[id]
	if !ok {
		return core.Piece{}, nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	piece, _ := ss.game.PieceAt(square)
	return piece, ss.game.Hints(square), nil
}

// SetStatus stores an opaque status flag on the game
func (s *Service) SetStatus(id string, status core.Status) (Snapshot, error) {
	s.mu.Lock()
	ss, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	ss.game.SetStatus(status)
	ss.lastActivity = s.now()
	snap := s.snapshot(id, ss)
	if s.store != nil {
		if err := s.store.UpdateGameStatus(id, status.String()); err != nil {
			log.Printf("Failed to persist status of game %s: %v", id, err)
		}
	}
	s.mu.Unlock()

	s.waiter.WakeGame(id)
	return snap, nil
}

// ClaimSeat binds a color of the game to userID. Reclaiming one's own seat
// is a no-op.
func (s *Service) ClaimSeat(id string, color core.Color, userID string) (Snapshot, error) {
	s.mu.Lock()
	ss, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	owner := ss.seat(color)
	if owner != "" && owner != userID {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSeatTaken, color.Name())
	}
	if color == core.ColorBlack {
		ss.black = userID
	} else {
		ss.white = userID
	}
	ss.lastActivity = s.now()
	snap := s.snapshot(id, ss)
	if s.store != nil && owner == "" {
		if err := s.store.UpdateSeat(id, color.String(), userID); err != nil {
			log.Printf("Failed to persist seat of game %s: %v", id, err)
		}
	}
	s.mu.Unlock()

	s.waiter.WakeGame(id)
	return snap, nil
}

// RegisterWait returns a channel that closes when the game's move count
// moves past moveCount, the game changes, or the wait times out. It is
// already closed when the caller is behind or the game does not exist.
func (s *Service) RegisterWait(ctx context.Context, id string, moveCount int) <-chan struct{} {
	// Registration happens under the read lock so a move cannot slip in
	// between the count check and the waiter becoming visible.
	s.mu.RLock()
	defer s.mu.RUnlock()

	ss, ok := s.games[id]
	if !ok || ss.moveCount != moveCount {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.waiter.RegisterWait(ctx, id, moveCount)
}

// RunCleanupJob evicts idle games every interval until ctx is done
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(GameIdleTTL); n > 0 {
				log.Printf("cleanup: evicted %d idle games", n)
			}
		}
	}
}

// evictIdle drops games untouched for longer than ttl from memory. Their
// storage rows are kept.
func (s *Service) evictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var evicted []string
	for id, ss := range s.games {
		if ss.lastActivity.Before(cutoff) {
			delete(s.games, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		s.waiter.RemoveGame(id)
	}
	return len(evicted)
}

// Shutdown releases waiters, drops games and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*session)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
