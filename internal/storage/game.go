package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_placement, initial_turn, status,
			white_user_id, black_user_id, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialPlacement, record.InitialTurn, record.Status,
			record.WhiteUserID, record.BlackUserID, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously appends a move to the log
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, ply, from_square, to_square, piece, captured,
			placement_after, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.Ply, record.FromSquare, record.ToSquare,
			record.Piece, record.Captured, record.PlacementAfter,
			record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// UpdateGameStatus asynchronously stores a new status flag
func (s *Store) UpdateGameStatus(gameID, status string) error {
	return s.enqueue("status update", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET status = ? WHERE game_id = ?`, status, gameID)
		return err
	})
}

// UpdateSeat asynchronously assigns a color of a game to a user
func (s *Store) UpdateSeat(gameID, color, userID string) error {
	var query string
	switch color {
	case "w":
		query = `UPDATE games SET white_user_id = ? WHERE game_id = ?`
	case "b":
		query = `UPDATE games SET black_user_id = ? WHERE game_id = ?`
	default:
		return fmt.Errorf("invalid seat color %q", color)
	}

	return s.enqueue("seat update", func(tx *sql.Tx) error {
		_, err := tx.Exec(query, userID, gameID)
		return err
	})
}

// DeleteGame asynchronously removes a game and its moves
func (s *Store) DeleteGame(gameID string) error {
	return s.enqueue("game deletion", func(tx *sql.Tx) error {
		// foreign_keys is per connection, so the cascade is not relied on
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, gameID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// QueryGames retrieves games, optionally filtered by game ID and seated user.
// Empty or "*" matches everything.
func (s *Store) QueryGames(gameID, userID string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_placement, initial_turn, status,
		white_user_id, black_user_id, start_time_utc
	FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if userID != "" && userID != "*" {
		query += " AND (white_user_id = ? OR black_user_id = ?)"
		args = append(args, userID, userID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialPlacement, &g.InitialTurn, &g.Status,
			&g.WhiteUserID, &g.BlackUserID, &g.StartTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// QueryMoves returns the logged moves of a game in ply order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	query := `SELECT
		move_id, game_id, ply, from_square, to_square, piece, captured,
		placement_after, player_color, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY ply ASC`

	rows, err := s.db.Query(query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		err := rows.Scan(
			&m.MoveID, &m.GameID, &m.Ply, &m.FromSquare, &m.ToSquare,
			&m.Piece, &m.Captured, &m.PlacementAfter, &m.PlayerColor, &m.MoveTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return moves, nil
}
