package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/leaderboard"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GameStore struct {
	db *sqlx.DB
}

func NewGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

const (
	createGameQuery = `INSERT INTO games (id, name, slug, status, created_at)
		VALUES (:id, :name, :slug, :status, :created_at)`
	createPlayQuery = `INSERT INTO plays (id, game_id, sequence_number, quarter, down, distance, yard_line, status, created_at)
		VALUES (:id, :game_id, :sequence_number, :quarter, :down, :distance, :yard_line, :status, :created_at)`
	updatePlayQuery = `UPDATE plays SET
		status = :status,
		actual_outcome = :actual_outcome,
		locked_at = :locked_at,
		locked_by = :locked_by,
		scored_at = :scored_at
		WHERE id = :id`
	upsertPredictionQuery = `INSERT INTO predictions (id, play_id, user_id, predicted_outcome, game_breaker, points_awarded, created_at, updated_at)
		VALUES (:id, :play_id, :user_id, :predicted_outcome, :game_breaker, 0, :created_at, :updated_at)
		ON CONFLICT (play_id, user_id) DO UPDATE SET
		predicted_outcome = excluded.predicted_outcome,
		game_breaker = excluded.game_breaker,
		updated_at = excluded.updated_at`
	updatePredictionScoreQuery = `UPDATE predictions SET
		points_awarded = :points_awarded,
		streak_before = :streak_before,
		streak_after = :streak_after,
		scored_at = :scored_at
		WHERE id = :id`
	leaderboardEntriesQuery = `
		SELECT u.id AS user_id, u.name AS user_name, u.role AS role, p.points_awarded AS points_awarded
		FROM predictions p
		JOIN plays pl ON pl.id = p.play_id
		JOIN users u ON u.id = p.user_id
		WHERE pl.game_id = ?`
)

func (s *GameStore) CreateGame(ctx context.Context, tx *sqlx.Tx, g *game.Game) error {
	_, err := tx.NamedExecContext(ctx, createGameQuery, g)
	return err
}

func (s *GameStore) GetGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	return getGame(ctx, s.db, "SELECT * FROM games WHERE id = ?", id)
}

func (s *GameStore) GetGameTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*game.Game, error) {
	return getGame(ctx, tx, "SELECT * FROM games WHERE id = ?", id)
}

func (s *GameStore) GetGameBySlug(ctx context.Context, slug string) (*game.Game, error) {
	return getGame(ctx, s.db, "SELECT * FROM games WHERE slug = ?", slug)
}

func getGame(ctx context.Context, q sqlx.QueryerContext, query string, arg interface{}) (*game.Game, error) {
	var g game.Game
	if err := sqlx.GetContext(ctx, q, &g, query, arg); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GameStore) ListGames(ctx context.Context) ([]game.Game, error) {
	var games []game.Game
	err := s.db.SelectContext(ctx, &games, "SELECT * FROM games ORDER BY created_at DESC, name ASC")
	return games, err
}

func (s *GameStore) ListGamesByStatus(ctx context.Context, statuses ...game.GameStatus) ([]game.Game, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM games WHERE status IN (?) ORDER BY created_at DESC, name ASC", statuses)
	if err != nil {
		return nil, err
	}
	var games []game.Game
	err = s.db.SelectContext(ctx, &games, s.db.Rebind(query), args...)
	return games, err
}

func (s *GameStore) UpdateGameStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status game.GameStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE games SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *GameStore) CreatePlay(ctx context.Context, tx *sqlx.Tx, p *game.Play) error {
	_, err := tx.NamedExecContext(ctx, createPlayQuery, p)
	return err
}

func (s *GameStore) UpdatePlay(ctx context.Context, tx *sqlx.Tx, p *game.Play) error {
	_, err := tx.NamedExecContext(ctx, updatePlayQuery, p)
	return err
}

func (s *GameStore) GetPlay(ctx context.Context, id uuid.UUID) (*game.Play, error) {
	return getPlay(ctx, s.db, id)
}

func (s *GameStore) GetPlayTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*game.Play, error) {
	return getPlay(ctx, tx, id)
}

func getPlay(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*game.Play, error) {
	var p game.Play
	if err := sqlx.GetContext(ctx, q, &p, "SELECT * FROM plays WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GameStore) GetPlays(ctx context.Context, gameID uuid.UUID) ([]game.Play, error) {
	return getPlays(ctx, s.db, gameID)
}

func (s *GameStore) GetPlaysTx(ctx context.Context, tx *sqlx.Tx, gameID uuid.UUID) ([]game.Play, error) {
	return getPlays(ctx, tx, gameID)
}

func getPlays(ctx context.Context, q sqlx.QueryerContext, gameID uuid.UUID) ([]game.Play, error) {
	var plays []game.Play
	err := sqlx.SelectContext(ctx, q, &plays, "SELECT * FROM plays WHERE game_id = ? ORDER BY sequence_number ASC", gameID)
	return plays, err
}

// GetCurrentPlay returns nil when every play of the game is scored.
func (s *GameStore) GetCurrentPlay(ctx context.Context, gameID uuid.UUID) (*game.Play, error) {
	var p game.Play
	err := s.db.GetContext(ctx, &p, `SELECT * FROM plays
		WHERE game_id = ? AND status != ?
		ORDER BY sequence_number DESC LIMIT 1`, gameID, game.PlayScored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GameStore) NextSequenceNumberTx(ctx context.Context, tx *sqlx.Tx, gameID uuid.UUID) (int, error) {
	var maxSeq sql.NullInt64
	err := tx.GetContext(ctx, &maxSeq, "SELECT MAX(sequence_number) FROM plays WHERE game_id = ?", gameID)
	if err != nil {
		return 0, err
	}
	return int(maxSeq.Int64) + 1, nil
}

// UpsertPrediction inserts the prediction or, when the user already has one
// for the play, replaces its outcome and game breaker flag in place.
func (s *GameStore) UpsertPrediction(ctx context.Context, tx *sqlx.Tx, p *game.Prediction) error {
	_, err := tx.NamedExecContext(ctx, upsertPredictionQuery, p)
	return err
}

func (s *GameStore) UpdatePredictionScore(ctx context.Context, tx *sqlx.Tx, p *game.Prediction) error {
	_, err := tx.NamedExecContext(ctx, updatePredictionScoreQuery, p)
	return err
}

func (s *GameStore) GetPrediction(ctx context.Context, playID, userID uuid.UUID) (*game.Prediction, error) {
	return getPrediction(ctx, s.db, playID, userID)
}

func (s *GameStore) GetPredictionTx(ctx context.Context, tx *sqlx.Tx, playID, userID uuid.UUID) (*game.Prediction, error) {
	return getPrediction(ctx, tx, playID, userID)
}

func getPrediction(ctx context.Context, q sqlx.QueryerContext, playID, userID uuid.UUID) (*game.Prediction, error) {
	var p game.Prediction
	err := sqlx.GetContext(ctx, q, &p, "SELECT * FROM predictions WHERE play_id = ? AND user_id = ?", playID, userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GameStore) GetPredictionsByPlayTx(ctx context.Context, tx *sqlx.Tx, playID uuid.UUID) ([]game.Prediction, error) {
	var predictions []game.Prediction
	err := tx.SelectContext(ctx, &predictions, "SELECT * FROM predictions WHERE play_id = ? ORDER BY created_at ASC, id ASC", playID)
	return predictions, err
}

// GetUserPredictionsForPlaysTx returns the user's predictions among the given plays.
func (s *GameStore) GetUserPredictionsForPlaysTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, playIDs []uuid.UUID) ([]game.Prediction, error) {
	if len(playIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM predictions WHERE user_id = ? AND play_id IN (?)", userID, playIDs)
	if err != nil {
		return nil, err
	}
	var predictions []game.Prediction
	err = tx.SelectContext(ctx, &predictions, tx.Rebind(query), args...)
	return predictions, err
}

func (s *GameStore) GetUserPredictionsForGame(ctx context.Context, gameID, userID uuid.UUID) ([]game.Prediction, error) {
	var predictions []game.Prediction
	err := s.db.SelectContext(ctx, &predictions, `SELECT p.* FROM predictions p
		JOIN plays pl ON pl.id = p.play_id
		WHERE pl.game_id = ? AND p.user_id = ?
		ORDER BY pl.sequence_number ASC`, gameID, userID)
	return predictions, err
}

// LatestScoredPredictionIDTx finds the prediction that last moved the user's streak.
func (s *GameStore) LatestScoredPredictionIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM predictions
		WHERE user_id = ? AND scored_at IS NOT NULL
		ORDER BY scored_at DESC, updated_at DESC LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}

func (s *GameStore) GetLeaderboardEntries(ctx context.Context, gameID uuid.UUID) ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	err := s.db.SelectContext(ctx, &entries, leaderboardEntriesQuery, gameID)
	return entries, err
}
