package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/AdamBeresnev/playcall/internal/scoring"
	"github.com/AdamBeresnev/playcall/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PredictionService struct {
	db        *sqlx.DB
	store     *store.GameStore
	userStore *store.UserStore
	boundary  game.DriveBoundary
}

// NewPredictionService uses game.DefaultDriveBoundary when boundary is nil.
func NewPredictionService(db *sqlx.DB, store *store.GameStore, userStore *store.UserStore, boundary game.DriveBoundary) *PredictionService {
	if boundary == nil {
		boundary = game.DefaultDriveBoundary
	}
	return &PredictionService{db: db, store: store, userStore: userStore, boundary: boundary}
}

// SubmitPrediction creates the user's prediction for an open play, or
// overwrites the one already there.
func (s *PredictionService) SubmitPrediction(ctx context.Context, playID, userID uuid.UUID, predicted outcome.Outcome, useGameBreaker bool) (*game.Prediction, error) {
	if !predicted.Valid() {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidOutcome, predicted)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	play, err := s.store.GetPlayTx(ctx, tx, playID)
	if err != nil {
		return nil, lookupErr(err, "play", playID)
	}
	if _, err := s.userStore.GetUserTx(ctx, tx, userID); err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	if !play.AcceptsPredictions() {
		return nil, fmt.Errorf("%w: play %s is %s", game.ErrInvalidState, playID, play.Status)
	}

	if useGameBreaker {
		spent, err := s.gameBreakerSpent(ctx, tx, play, userID)
		if err != nil {
			return nil, err
		}
		if spent {
			return nil, game.ErrGameBreakerSpent
		}
	}

	now := time.Now().UTC()
	p := game.Prediction{
		ID:               uuid.New(),
		PlayID:           playID,
		UserID:           userID,
		PredictedOutcome: predicted,
		GameBreaker:      useGameBreaker,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.UpsertPrediction(ctx, tx, &p); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	// the row may predate this call, read back its id and timestamps
	saved, err := s.store.GetPredictionTx(ctx, tx, playID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return saved, tx.Commit()
}

// gameBreakerSpent reports whether the user flagged a prediction on any
// other play of the same drive. Several plays can be open at once, so plays
// after this one count too.
func (s *PredictionService) gameBreakerSpent(ctx context.Context, tx *sqlx.Tx, play *game.Play, userID uuid.UUID) (bool, error) {
	plays, err := s.store.GetPlaysTx(ctx, tx, play.GameID)
	if err != nil {
		return false, fmt.Errorf("failed to get plays: %w", err)
	}

	drive := game.DriveOf(plays, play.ID, s.boundary)
	others := make([]uuid.UUID, 0, len(drive))
	for _, pl := range drive {
		if pl.ID != play.ID {
			others = append(others, pl.ID)
		}
	}
	if len(others) == 0 {
		return false, nil
	}

	predictions, err := s.store.GetUserPredictionsForPlaysTx(ctx, tx, userID, others)
	if err != nil {
		return false, fmt.Errorf("failed to get drive predictions: %w", err)
	}
	for _, p := range predictions {
		if p.GameBreaker {
			return true, nil
		}
	}
	return false, nil
}

func (s *PredictionService) GameBreakerAvailable(ctx context.Context, playID, userID uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	play, err := s.store.GetPlayTx(ctx, tx, playID)
	if err != nil {
		return false, lookupErr(err, "play", playID)
	}
	spent, err := s.gameBreakerSpent(ctx, tx, play, userID)
	if err != nil {
		return false, err
	}
	return !spent, nil
}

// GetPrediction returns nil without an error when the user has not
// predicted the play.
func (s *PredictionService) GetPrediction(ctx context.Context, playID, userID uuid.UUID) (*game.Prediction, error) {
	p, err := s.store.GetPrediction(ctx, playID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

func (s *PredictionService) PredictionsForGame(ctx context.Context, gameID, userID uuid.UUID) ([]game.Prediction, error) {
	return s.store.GetUserPredictionsForGame(ctx, gameID, userID)
}

// PlayStatus is what a player's screen polls for.
type PlayStatus struct {
	Play                 *game.Play       `json:"play"`
	Prediction           *game.Prediction `json:"prediction"`
	GameBreakerAvailable bool             `json:"game_breaker_available"`
	Streak               int              `json:"streak"`
	Multiplier           float64          `json:"multiplier"`
}

func (s *PredictionService) PlayStatus(ctx context.Context, gameID, userID uuid.UUID) (*PlayStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetGameTx(ctx, tx, gameID); err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	u, err := s.userStore.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}

	status := &PlayStatus{
		Streak:     u.Streak,
		Multiplier: scoring.StreakMultiplier(u.Streak),
	}

	plays, err := s.store.GetPlaysTx(ctx, tx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plays: %w", err)
	}
	current := game.CurrentPlay(plays)
	if current == nil {
		return status, nil
	}
	status.Play = current

	p, err := s.store.GetPredictionTx(ctx, tx, current.ID, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	default:
		status.Prediction = p
	}

	spent, err := s.gameBreakerSpent(ctx, tx, current, userID)
	if err != nil {
		return nil, err
	}
	status.GameBreakerAvailable = !spent
	return status, nil
}
