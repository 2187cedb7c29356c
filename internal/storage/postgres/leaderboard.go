package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScorePerLevel and damage divisor for the leaderboard score formula.
const (
	scorePerLevel = 1000
	damageDivisor = 10
)

// Score computes the leaderboard score for a finished match.
//
// Postcondition: the result is level*1000 plus one point per 10 damage
// dealt; equal inputs always produce equal scores.
func Score(level, damageDealt int) int {
	return level*scorePerLevel + damageDealt/damageDivisor
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	ID          int64
	Player      string
	Level       int
	DamageDealt int
	Score       int
	CreatedAt   time.Time
}

// ErrNoScores is returned when a leaderboard query yields no rows.
var ErrNoScores = errors.New("no scores recorded")

// LeaderboardRepository persists match results and answers ranking queries.
type LeaderboardRepository struct {
	db *pgxpool.Pool
}

// NewLeaderboardRepository creates a LeaderboardRepository backed by the
// given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLeaderboardRepository(db *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// SubmitScore records a finished match and returns the player's standing.
//
// Rank is 1 plus the number of strictly higher scores on the board, so tied
// scores share a rank. newHigh reports whether this score beats the
// player's previous personal best; a player's first score is always a new
// high.
//
// Precondition: player must be non-empty; level must be >= 1.
// Postcondition: on nil error the score row is committed and rank >= 1.
func (r *LeaderboardRepository) SubmitScore(ctx context.Context, player string, level, damageDealt int) (rank, score int, newHigh bool, err error) {
	if player == "" {
		return 0, 0, false, fmt.Errorf("submitting score: player must not be empty")
	}
	if level < 1 {
		return 0, 0, false, fmt.Errorf("submitting score: level must be >= 1, got %d", level)
	}

	score = Score(level, damageDealt)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previousBest *int
	err = tx.QueryRow(ctx,
		`SELECT MAX(score) FROM scores WHERE player = $1`,
		player,
	).Scan(&previousBest)
	if err != nil {
		return 0, 0, false, fmt.Errorf("querying personal best: %w", err)
	}
	newHigh = previousBest == nil || score > *previousBest

	_, err = tx.Exec(ctx,
		`INSERT INTO scores (player, level, damage_dealt, score)
		 VALUES ($1, $2, $3, $4)`,
		player, level, damageDealt, score,
	)
	if err != nil {
		return 0, 0, false, fmt.Errorf("inserting score: %w", err)
	}

	err = tx.QueryRow(ctx,
		`SELECT 1 + COUNT(*) FROM scores WHERE score > $1`,
		score,
	).Scan(&rank)
	if err != nil {
		return 0, 0, false, fmt.Errorf("computing rank: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, false, fmt.Errorf("committing score: %w", err)
	}
	return rank, score, newHigh, nil
}

// Top returns the highest limit scores, best first. Ties order by earliest
// submission.
//
// Precondition: limit must be >= 1.
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if limit < 1 {
		return nil, fmt.Errorf("querying top scores: limit must be >= 1, got %d", limit)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, player, level, damage_dealt, score, created_at
		 FROM scores
		 ORDER BY score DESC, created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying top scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.ID, &e.Player, &e.Level, &e.DamageDealt, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning score row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating score rows: %w", err)
	}
	return entries, nil
}

// PersonalBest returns the player's highest score.
//
// Postcondition: returns ErrNoScores when the player has no submissions.
func (r *LeaderboardRepository) PersonalBest(ctx context.Context, player string) (ScoreEntry, error) {
	var e ScoreEntry
	err := r.db.QueryRow(ctx,
		`SELECT id, player, level, damage_dealt, score, created_at
		 FROM scores
		 WHERE player = $1
		 ORDER BY score DESC, created_at ASC
		 LIMIT 1`,
		player,
	).Scan(&e.ID, &e.Player, &e.Level, &e.DamageDealt, &e.Score, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScoreEntry{}, ErrNoScores
		}
		return ScoreEntry{}, fmt.Errorf("querying personal best: %w", err)
	}
	return e, nil
}
