package storage

import "time"

// UserRecord is a row in the users table
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// GameRecord is a row in the games table. Seat columns hold a user ID or
// the empty string for an open seat.
type GameRecord struct {
	GameID           string    `db:"game_id"`
	InitialPlacement string    `db:"initial_placement"`
	InitialTurn      string    `db:"initial_turn"`
	Status           string    `db:"status"`
	WhiteUserID      string    `db:"white_user_id"`
	BlackUserID      string    `db:"black_user_id"`
	StartTimeUTC     time.Time `db:"start_time_utc"`
}

// MoveRecord is a row in the append-only moves log
type MoveRecord struct {
	MoveID         int64     `db:"move_id"`
	GameID         string    `db:"game_id"`
	Ply            int       `db:"ply"`
	FromSquare     string    `db:"from_square"`
	ToSquare       string    `db:"to_square"`
	Piece          string    `db:"piece"`
	Captured       string    `db:"captured"`
	PlacementAfter string    `db:"placement_after"`
	PlayerColor    string    `db:"player_color"`
	MoveTimeUTC    time.Time `db:"move_time_utc"`
}

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_placement TEXT NOT NULL,
	initial_turn TEXT NOT NULL CHECK(initial_turn IN ('w', 'b')),
	status TEXT NOT NULL DEFAULT 'UNFINISHED',
	white_user_id TEXT NOT NULL DEFAULT '',
	black_user_id TEXT NOT NULL DEFAULT '',
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	from_square TEXT NOT NULL,
	to_square TEXT NOT NULL,
	piece TEXT NOT NULL,
	captured TEXT NOT NULL DEFAULT '',
	placement_after TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_user ON games(white_user_id);
CREATE INDEX IF NOT EXISTS idx_games_black_user ON games(black_user_id);
`
