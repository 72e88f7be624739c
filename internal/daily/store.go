package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one player's finished daily puzzle.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
	Won       bool   `json:"won"`
}

// LBRow is one leaderboard line.
type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// DefaultLeaderboardLimit applies when callers pass limit <= 0.
const DefaultLeaderboardLimit = 20

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("daily: already played: %w", err)
	}
	return cnt > 0, nil
}

// InsertResult stores r. A second result for the same (user, date) is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, word_index, guesses, elapsed_ms, won)
		 VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, r.WordIndex, r.Guesses, r.ElapsedMs, r.Won,
	)
	if err != nil {
		return fmt.Errorf("daily: insert result: %w", err)
	}
	return nil
}

// Leaderboard returns the fastest winners for date: elapsed time, then
// guesses, then who finished first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ''), d.guesses, d.elapsed_ms
		 FROM daily_results d
		 LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=? AND d.won=1
		 ORDER BY d.elapsed_ms ASC, d.guesses ASC, d.created_at ASC, d.rowid ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("daily: leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
