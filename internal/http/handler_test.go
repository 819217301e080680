package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"

	"chessvar/internal/core"
	"chessvar/internal/processor"
	"chessvar/internal/service"
	"chessvar/internal/storage"
)

func newTestApp(t *testing.T, withStorage bool) *fiber.App {
	t.Helper()
	var store *storage.Store
	if withStorage {
		var err error
		store, err = storage.NewStore(filepath.Join(t.TempDir(), "chess.db"), true)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.InitDB(); err != nil {
			t.Fatal(err)
		}
	}
	svc := service.New(store, []byte("test-secret-minimum-32-characters-long"))
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return NewFiberApp(processor.New(svc), svc, true)
}

// do sends a request and decodes the JSON response into out when non-nil
func do(t *testing.T, app *fiber.App, method, path, body, token string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, app *fiber.App, body, token string) core.GameResponse {
	t.Helper()
	var game core.GameResponse
	if code := do(t, app, http.MethodPost, "/api/v1/games", body, token, &game); code != fiber.StatusCreated {
		t.Fatalf("create game status = %d", code)
	}
	return game
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, false)
	var body map[string]any
	if code := do(t, app, http.MethodGet, "/health", "", "", &body); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "healthy" || body["storage"] != "disabled" {
		t.Errorf("health = %v", body)
	}
}

func TestOpeningOverHTTP(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, "", "")
	movePath := "/api/v1/games/" + game.GameID + "/moves"

	steps := []struct {
		from, to string
		applied  bool
		captured string
		turn     string
	}{
		{"d2", "d4", true, "", "b"},
		{"g7", "g5", true, "", "w"},
		{"c1", "g5", true, "p", "b"},
		{"e7", "e4", false, "", "b"},
		{"e8", "e6", false, "", "b"},
	}

	for _, s := range steps {
		var mr core.MoveResponse
		body := `{"from":"` + s.from + `","to":"` + s.to + `"}`
		if code := do(t, app, http.MethodPost, movePath, body, "", &mr); code != fiber.StatusOK {
			t.Fatalf("%s-%s status = %d", s.from, s.to, code)
		}
		if mr.Applied != s.applied || mr.Captured != s.captured || mr.Game.Turn != s.turn {
			t.Errorf("%s-%s = %+v", s.from, s.to, mr)
		}
	}

	var br core.BoardResponse
	do(t, app, http.MethodGet, "/api/v1/games/"+game.GameID+"/board", "", "", &br)
	if br.FEN != "rnbqkbnr/pppppp1p/8/6B1/3P4/8/PPP1PPPP/RN1QKBNR" {
		t.Errorf("board FEN = %q", br.FEN)
	}
	if !strings.Contains(br.Board, "5 . . . . . . B .  5") {
		t.Errorf("ASCII board:\n%s", br.Board)
	}
}

func TestSquareHints(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, `{"fen":"4k3/8/8/8/8/8/8/4K2R w"}`, "")

	var sr core.SquareResponse
	if code := do(t, app, http.MethodGet, "/api/v1/games/"+game.GameID+"/squares/E1", "", "", &sr); code != fiber.StatusOK {
		t.Fatalf("status = %d", code)
	}
	want := core.SquareResponse{
		Square:  "e1",
		Piece:   "K",
		Targets: []string{"d2", "e2", "f2", "d1", "f1"},
	}
	if diff := cmp.Diff(want, sr); diff != "" {
		t.Errorf("square mismatch (-want +got):\n%s", diff)
	}

	var er core.ErrorResponse
	if code := do(t, app, http.MethodGet, "/api/v1/games/"+game.GameID+"/squares/k9", "", "", &er); code != fiber.StatusBadRequest || er.Code != core.ErrInvalidSquare {
		t.Errorf("bad square = %d %+v", code, er)
	}
}

func TestRequestErrors(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, "", "")
	base := "/api/v1/games/" + game.GameID

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown game", http.MethodGet, "/api/v1/games/00000000-0000-0000-0000-000000000000", "", fiber.StatusNotFound, core.ErrGameNotFound},
		{"malformed id", http.MethodGet, "/api/v1/games/not-a-uuid", "", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing to", http.MethodPost, base + "/moves", `{"from":"e2"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"long label", http.MethodPost, base + "/moves", `{"from":"e2","to":"e22"}`, fiber.StatusBadRequest, core.ErrInvalidSquare},
		{"blank label", http.MethodPost, base + "/moves", `{"from":"  ","to":"e4"}`, fiber.StatusBadRequest, core.ErrInvalidSquare},
		{"oversized label", http.MethodPost, base + "/moves", `{"from":"e2","to":"e4e4e4e4e4"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"off-board label", http.MethodPost, base + "/moves", `{"from":"e2","to":"e9"}`, fiber.StatusBadRequest, core.ErrInvalidSquare},
		{"broken json", http.MethodPost, base + "/moves", `{"from":`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad fen", http.MethodPost, "/api/v1/games", `{"fen":"8/8/8"}`, fiber.StatusBadRequest, core.ErrInvalidFEN},
		{"bad seat", http.MethodPost, "/api/v1/games", `{"seat":"red"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"anonymous seat", http.MethodPost, "/api/v1/games", `{"seat":"w"}`, fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"seat without token", http.MethodPost, base + "/seats", `{"color":"w"}`, fiber.StatusUnauthorized, core.ErrUnauthorized},
		{"empty status", http.MethodPut, base + "/status", `{"status":""}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var er core.ErrorResponse
			code := do(t, app, tt.method, tt.path, tt.body, "", &er)
			if code != tt.wantCode || er.Code != tt.wantErr {
				t.Errorf("got %d %+v, want %d %s", code, er, tt.wantCode, tt.wantErr)
			}
		})
	}
}

func TestMoveLabelsAreNormalized(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, "", "")

	var mr core.MoveResponse
	code := do(t, app, http.MethodPost, "/api/v1/games/"+game.GameID+"/moves", `{"from":" E2","to":"e4 "}`, "", &mr)
	if code != fiber.StatusOK || !mr.Applied {
		t.Fatalf("padded move = %d %+v", code, mr)
	}
	if mr.From != "e2" || mr.To != "e4" || mr.Game.Turn != "b" {
		t.Errorf("move response = %+v", mr)
	}
}

func TestContentType(t *testing.T) {
	app := newTestApp(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader("fen=8"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestStatusAndDelete(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, "", "")
	base := "/api/v1/games/" + game.GameID

	var gr core.GameResponse
	if code := do(t, app, http.MethodPut, base+"/status", `{"status":"black_won"}`, "", &gr); code != fiber.StatusOK {
		t.Fatalf("set status = %d", code)
	}
	if gr.Status != "BLACK_WON" {
		t.Errorf("status = %q", gr.Status)
	}

	var er core.ErrorResponse
	if code := do(t, app, http.MethodPost, base+"/moves", `{"from":"e2","to":"e4"}`, "", &er); code != fiber.StatusConflict || er.Code != core.ErrGameOver {
		t.Errorf("move after game over = %d %+v", code, er)
	}

	if code := do(t, app, http.MethodDelete, base, "", "", nil); code != fiber.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	if code := do(t, app, http.MethodGet, base, "", "", nil); code != fiber.StatusNotFound {
		t.Errorf("get after delete = %d", code)
	}
}

func TestLongPoll(t *testing.T) {
	app := newTestApp(t, false)
	game := createGame(t, app, "", "")
	base := "/api/v1/games/" + game.GameID

	// Stale move count returns at once
	var gr core.GameResponse
	start := time.Now()
	do(t, app, http.MethodGet, base+"?wait=true&moveCount=5", "", "", &gr)
	if time.Since(start) > 2*time.Second {
		t.Error("stale long-poll blocked")
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		req := httptest.NewRequest(http.MethodPost, base+"/moves", strings.NewReader(`{"from":"e2","to":"e4"}`))
		req.Header.Set("Content-Type", "application/json")
		if resp, err := app.Test(req, -1); err == nil {
			resp.Body.Close()
		}
	}()

	if code := do(t, app, http.MethodGet, base+"?wait=true&moveCount=0", "", "", &gr); code != fiber.StatusOK {
		t.Fatalf("long-poll status = %d", code)
	}
	if gr.MoveCount != 1 || gr.Turn != "b" {
		t.Errorf("long-poll returned %+v", gr)
	}
}

func TestAccountsAndSeats(t *testing.T) {
	app := newTestApp(t, true)

	var alice AuthResponse
	code := do(t, app, http.MethodPost, "/api/v1/auth/register",
		`{"username":"Alice","email":"alice@example.com","password":"chess1234"}`, "", &alice)
	if code != fiber.StatusCreated || alice.Token == "" || alice.Username != "alice" {
		t.Fatalf("register = %d %+v", code, alice)
	}

	var er core.ErrorResponse
	if code := do(t, app, http.MethodPost, "/api/v1/auth/register",
		`{"username":"alice","password":"chess1234"}`, "", &er); code != fiber.StatusConflict {
		t.Errorf("duplicate register = %d", code)
	}
	if code := do(t, app, http.MethodPost, "/api/v1/auth/register",
		`{"username":"weak","password":"onlyletters"}`, "", &er); code != fiber.StatusBadRequest {
		t.Errorf("weak password = %d", code)
	}

	var bob AuthResponse
	do(t, app, http.MethodPost, "/api/v1/auth/register", `{"username":"bob","password":"chess1234"}`, "", &bob)

	var login AuthResponse
	if code := do(t, app, http.MethodPost, "/api/v1/auth/login",
		`{"identifier":"ALICE@example.com","password":"chess1234"}`, "", &login); code != fiber.StatusOK || login.UserID != alice.UserID {
		t.Errorf("login = %d %+v", code, login)
	}
	if code := do(t, app, http.MethodPost, "/api/v1/auth/login",
		`{"identifier":"alice","password":"wrong1234"}`, "", &er); code != fiber.StatusUnauthorized {
		t.Errorf("bad login = %d", code)
	}

	var me UserResponse
	if code := do(t, app, http.MethodGet, "/api/v1/auth/me", "", alice.Token, &me); code != fiber.StatusOK || me.UserID != alice.UserID {
		t.Errorf("me = %d %+v", code, me)
	}
	if code := do(t, app, http.MethodGet, "/api/v1/auth/me", "", "garbage", &er); code != fiber.StatusUnauthorized {
		t.Errorf("me with bad token = %d", code)
	}

	game := createGame(t, app, `{"seat":"w"}`, alice.Token)
	if game.Seats.White != alice.UserID {
		t.Fatalf("seats = %+v", game.Seats)
	}
	base := "/api/v1/games/" + game.GameID

	if code := do(t, app, http.MethodPost, base+"/moves", `{"from":"e2","to":"e4"}`, bob.Token, &er); code != fiber.StatusForbidden || er.Code != core.ErrNotYourSeat {
		t.Errorf("foreign move = %d %+v", code, er)
	}

	var gr core.GameResponse
	if code := do(t, app, http.MethodPost, base+"/seats", `{"color":"b"}`, bob.Token, &gr); code != fiber.StatusOK || gr.Seats.Black != bob.UserID {
		t.Errorf("claim = %d %+v", code, gr)
	}
	if code := do(t, app, http.MethodPost, base+"/seats", `{"color":"w"}`, bob.Token, &er); code != fiber.StatusConflict || er.Code != core.ErrSeatTaken {
		t.Errorf("claim taken seat = %d %+v", code, er)
	}

	var mr core.MoveResponse
	if code := do(t, app, http.MethodPost, base+"/moves", `{"from":"e2","to":"e4"}`, alice.Token, &mr); code != fiber.StatusOK || !mr.Applied {
		t.Errorf("seated move = %d %+v", code, mr)
	}
}
