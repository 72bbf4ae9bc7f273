package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PreferenceRepository stores per-profile genre interest scores.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// IncrementGenres bumps the score of every listed genre by one for the given
// profile, creating rows as needed. All increments happen inside a single
// transaction so a partial failure leaves no half-applied signal.
func (r *PreferenceRepository) IncrementGenres(ctx context.Context, profileID string, genres []string) error {
	if len(genres) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preference tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO genre_preferences
		(profile_id, genre, score, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(profile_id, genre)
		DO UPDATE SET score = score + 1, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare preference upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, genre := range genres {
		if _, err := stmt.ExecContext(ctx, profileID, genre, now); err != nil {
			return fmt.Errorf("increment genre %q: %w", genre, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preference tx: %w", err)
	}
	return nil
}

// GetScores returns the profile's genre scores, or nil when the profile has
// no tracked interest yet.
func (r *PreferenceRepository) GetScores(ctx context.Context, profileID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT genre, score FROM genre_preferences WHERE profile_id = ?", profileID)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	var scores map[string]int
	for rows.Next() {
		var genre string
		var score int
		if err := rows.Scan(&genre, &score); err != nil {
			return nil, fmt.Errorf("scan preference row: %w", err)
		}
		if scores == nil {
			scores = make(map[string]int)
		}
		scores[genre] = score
	}
	return scores, rows.Err()
}
