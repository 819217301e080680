package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "chess.db"), true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestGameLifecycle(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC().Truncate(time.Second)

	game := GameRecord{
		GameID:           "g1",
		InitialPlacement: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		InitialTurn:      "w",
		Status:           "UNFINISHED",
		StartTimeUTC:     start,
	}
	if err := s.RecordNewGame(game); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordMove(MoveRecord{
		GameID: "g1", Ply: 1, FromSquare: "d2", ToSquare: "d4", Piece: "P",
		PlacementAfter: "rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR",
		PlayerColor:    "w", MoveTimeUTC: start,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordMove(MoveRecord{
		GameID: "g1", Ply: 2, FromSquare: "g7", ToSquare: "g5", Piece: "p",
		PlacementAfter: "rnbqkbnr/pppppp1p/8/6p1/3P4/8/PPP1PPPP/RNBQKBNR",
		PlayerColor:    "b", MoveTimeUTC: start,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSeat("g1", "w", "user-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateGameStatus("g1", "WHITE_WON"); err != nil {
		t.Fatal(err)
	}
	flush(t, s)

	if !s.IsHealthy() {
		t.Fatal("store degraded")
	}

	games, err := s.QueryGames("*", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	want := game
	want.Status = "WHITE_WON"
	want.WhiteUserID = "user-1"
	if diff := cmp.Diff([]GameRecord{want}, games, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("QueryGames mismatch (-want +got):\n%s", diff)
	}

	moves, err := s.QueryMoves("g1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range moves {
		got = append(got, m.PlayerColor+":"+m.FromSquare+m.ToSquare)
	}
	if diff := cmp.Diff([]string{"w:d2d4", "b:g7g5"}, got); diff != "" {
		t.Errorf("QueryMoves mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteGame("g1"); err != nil {
		t.Fatal(err)
	}
	flush(t, s)

	if games, _ := s.QueryGames("g1", ""); len(games) != 0 {
		t.Errorf("game still present after delete: %+v", games)
	}
	if moves, _ := s.QueryMoves("g1"); len(moves) != 0 {
		t.Errorf("moves still present after delete: %d", len(moves))
	}
}

func TestDuplicatePlyDegradesStore(t *testing.T) {
	s := newTestStore(t)
	s.RecordNewGame(GameRecord{GameID: "g1", InitialPlacement: "8/8/8/8/8/8/8/8", InitialTurn: "w", Status: "UNFINISHED", StartTimeUTC: time.Now().UTC()})
	m := MoveRecord{GameID: "g1", Ply: 1, FromSquare: "a1", ToSquare: "a2", Piece: "R", PlacementAfter: "8/8/8/8/8/8/R7/8", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()}
	s.RecordMove(m)
	s.RecordMove(m)
	flush(t, s)

	if s.IsHealthy() {
		t.Fatal("duplicate ply should degrade the store")
	}
	// Degraded stores drop writes without error
	if err := s.RecordMove(m); err != nil {
		t.Errorf("RecordMove on degraded store: %v", err)
	}
}

func TestUpdateSeatRejectsBadColor(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateSeat("g1", "x", "u"); err == nil {
		t.Error("expected error for bad seat color")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	alice := UserRecord{UserID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", CreatedAt: now}
	if err := s.CreateUser(alice); err != nil {
		t.Fatal(err)
	}

	dup := []UserRecord{
		{UserID: "u2", Username: "ALICE", PasswordHash: "h", CreatedAt: now},
		{UserID: "u3", Username: "bob", Email: "Alice@Example.com", PasswordHash: "h", CreatedAt: now},
	}
	for _, u := range dup {
		if err := s.CreateUser(u); !errors.Is(err, ErrUserExists) {
			t.Errorf("CreateUser(%s) error = %v, want ErrUserExists", u.Username, err)
		}
	}

	got, err := s.GetUserByUsername("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u1" {
		t.Errorf("GetUserByUsername = %+v", got)
	}
	if _, err := s.GetUserByEmail("ALICE@example.com"); err != nil {
		t.Errorf("GetUserByEmail: %v", err)
	}
	if _, err := s.GetUserByID("missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByID(missing) error = %v, want sql.ErrNoRows", err)
	}

	if err := s.UpdateUserLastLoginSync("u1", now); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateUserPassword("u1", "new-hash"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUserByID("u1")
	if got.PasswordHash != "new-hash" || got.LastLoginAt == nil {
		t.Errorf("after updates: %+v", got)
	}

	users, err := s.GetAllUsers()
	if err != nil || len(users) != 1 {
		t.Fatalf("GetAllUsers = %v, %v", users, err)
	}

	if err := s.DeleteUserByID("u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetUserByID("u1"); !errors.Is(err, sql.ErrNoRows) {
		t.Error("user still present after delete")
	}
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s, err := NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDB(); err != nil {
		t.Fatalf("DeleteDB: %v", err)
	}
	// Close after DeleteDB is a no-op
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWritesAfterCloseFail(t *testing.T) {
	s := newTestStore(t)
	record := GameRecord{
		GameID:           "g-closed",
		InitialPlacement: "8/8/8/8/8/8/8/8",
		InitialTurn:      "w",
		Status:           "UNFINISHED",
		StartTimeUTC:     time.Now().UTC(),
	}
	if err := s.RecordNewGame(record); err != nil {
		t.Fatalf("RecordNewGame before Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.UpdateGameStatus("g-closed", "WHITE_WON"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("UpdateGameStatus after Close = %v, want ErrStoreClosed", err)
	}

	// Flush must fail fast rather than wait for the caller's deadline
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := s.Flush(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Flush after Close = %v, want ErrStoreClosed", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Flush after Close took %v", elapsed)
	}
}
