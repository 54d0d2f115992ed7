package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/middleware"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/AdamBeresnev/playcall/internal/scoring"
	"github.com/AdamBeresnev/playcall/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlayService struct {
	db        *sqlx.DB
	store     *store.GameStore
	userStore *store.UserStore
	notifier  Notifier
}

func NewPlayService(db *sqlx.DB, store *store.GameStore, userStore *store.UserStore, notifier Notifier) *PlayService {
	return &PlayService{db: db, store: store, userStore: userStore, notifier: orNop(notifier)}
}

type PlayInput struct {
	Quarter  int    `validate:"min=1,max=4"`
	Down     int    `validate:"min=1,max=4"`
	Distance int    `validate:"min=0,max=99"`
	YardLine string `validate:"max=16"`
}

func (s *PlayService) CreatePlay(ctx context.Context, gameID uuid.UUID, input PlayInput) (*game.Play, error) {
	input.YardLine = strings.TrimSpace(input.YardLine)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	g, err := s.store.GetGameTx(ctx, tx, gameID)
	if err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	if g.Status == game.GameFinished {
		return nil, fmt.Errorf("%w: game %s is finished", game.ErrInvalidState, gameID)
	}

	wentLive := false
	if g.Status == game.GamePending {
		if err := s.store.UpdateGameStatusTx(ctx, tx, gameID, game.GameLive); err != nil {
			return nil, fmt.Errorf("failed to start game: %w", err)
		}
		wentLive = true
	}

	seq, err := s.store.NextSequenceNumberTx(ctx, tx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next sequence number: %w", err)
	}

	play := game.Play{
		ID:             uuid.New(),
		GameID:         gameID,
		SequenceNumber: seq,
		Quarter:        input.Quarter,
		Down:           input.Down,
		Distance:       input.Distance,
		YardLine:       input.YardLine,
		Status:         game.PlayOpen,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreatePlay(ctx, tx, &play); err != nil {
		return nil, fmt.Errorf("failed to create play: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("play created", "game_id", gameID, "play_id", play.ID, "sequence", seq)
	if wentLive {
		s.notifier.Publish(gameID, EventGameStatus, map[string]interface{}{"status": game.GameLive})
	}
	s.notifier.Publish(gameID, EventPlayCreated, play)
	return &play, nil
}

// LockPlay closes the play for predictions. The acting user, if any, is
// taken from the request context.
func (s *PlayService) LockPlay(ctx context.Context, playID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	play, err := s.store.GetPlayTx(ctx, tx, playID)
	if err != nil {
		return lookupErr(err, "play", playID)
	}
	if play.Status != game.PlayOpen {
		return fmt.Errorf("%w: play %s is %s", game.ErrInvalidState, playID, play.Status)
	}

	now := time.Now().UTC()
	play.Status = game.PlayLocked
	play.LockedAt = &now
	if actor, ok := middleware.GetUserIDFromContext(ctx); ok {
		play.LockedBy = &actor
	}

	if err := s.store.UpdatePlay(ctx, tx, play); err != nil {
		return fmt.Errorf("failed to lock play: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("play locked", "play_id", playID)
	s.notifier.Publish(play.GameID, EventPlayLocked, play)
	return nil
}

// ScorePlay records the actual outcome and scores every prediction of the
// play against its user's current streak.
func (s *PlayService) ScorePlay(ctx context.Context, playID uuid.UUID, actual outcome.Outcome) error {
	if !actual.Valid() {
		return fmt.Errorf("%w: %q", game.ErrInvalidOutcome, actual)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	play, err := s.store.GetPlayTx(ctx, tx, playID)
	if err != nil {
		return lookupErr(err, "play", playID)
	}
	if play.Status == game.PlayScored {
		return fmt.Errorf("%w: play %s is already scored", game.ErrInvalidState, playID)
	}

	now := time.Now().UTC()
	play.Resolve(actual, now)
	if err := s.store.UpdatePlay(ctx, tx, play); err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}

	predictions, err := s.store.GetPredictionsByPlayTx(ctx, tx, playID)
	if err != nil {
		return fmt.Errorf("failed to get predictions: %w", err)
	}

	for i := range predictions {
		p := &predictions[i]
		u, err := s.userStore.GetUserTx(ctx, tx, p.UserID)
		if err != nil {
			return lookupErr(err, "user", p.UserID)
		}

		result := scoring.Score(p.PredictedOutcome, actual, u.Streak, p.GameBreaker)
		p.PointsAwarded = result.Points
		p.StreakBefore = u.Streak
		p.StreakAfter = result.Streak
		p.ScoredAt = &now

		if err := s.store.UpdatePredictionScore(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to score prediction: %w", err)
		}
		if err := s.userStore.UpdateStreak(ctx, tx, p.UserID, result.Streak); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("play scored", "play_id", playID, "outcome", actual, "predictions", len(predictions))
	s.notifier.Publish(play.GameID, EventPlayScored, play)
	return nil
}

// CorrectPlay replaces the outcome of a scored play. The play is re-scored
// from each prediction's stored streak_before, then every play scored after
// it is re-scored in the order it was scored (scored_at, then sequence
// number) with the recomputed streaks.
func (s *PlayService) CorrectPlay(ctx context.Context, playID uuid.UUID, actual outcome.Outcome) error {
	if !actual.Valid() {
		return fmt.Errorf("%w: %q", game.ErrInvalidOutcome, actual)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	play, err := s.store.GetPlayTx(ctx, tx, playID)
	if err != nil {
		return lookupErr(err, "play", playID)
	}
	if !play.IsScored() {
		return fmt.Errorf("%w: play %s is not scored", game.ErrInvalidState, playID)
	}

	play.Resolve(actual, time.Now().UTC())
	if err := s.store.UpdatePlay(ctx, tx, play); err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}

	plays, err := s.store.GetPlaysTx(ctx, tx, play.GameID)
	if err != nil {
		return fmt.Errorf("failed to get plays: %w", err)
	}

	streaks := make(map[uuid.UUID]int)
	lastPrediction := make(map[uuid.UUID]uuid.UUID)

	for _, pl := range scoredSince(plays, play) {
		if err := s.rescore(ctx, tx, pl, streaks, lastPrediction); err != nil {
			return err
		}
	}

	for userID, predictionID := range lastPrediction {
		latest, err := s.store.LatestScoredPredictionIDTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to get latest prediction: %w", err)
		}
		if latest != predictionID {
			continue
		}
		if err := s.userStore.UpdateStreak(ctx, tx, userID, streaks[userID]); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("play corrected", "play_id", playID, "outcome", actual)
	s.notifier.Publish(play.GameID, EventPlayCorrected, play)
	return nil
}

// scoredSince returns from and every play scored after it, in scoring order.
// Plays scored at the same instant fall back to sequence order.
func scoredSince(plays []game.Play, from *game.Play) []game.Play {
	scoredBefore := func(a, b game.Play) bool {
		if !a.ScoredAt.Equal(*b.ScoredAt) {
			return a.ScoredAt.Before(*b.ScoredAt)
		}
		return a.SequenceNumber < b.SequenceNumber
	}

	chain := []game.Play{*from}
	for _, pl := range plays {
		if pl.ID == from.ID || !pl.IsScored() || pl.ScoredAt == nil {
			continue
		}
		if scoredBefore(*from, pl) {
			chain = append(chain, pl)
		}
	}
	sort.SliceStable(chain[1:], func(i, j int) bool {
		return scoredBefore(chain[1+i], chain[1+j])
	})
	return chain
}

// rescore scores one play's predictions. A user seen for the first time
// starts from the streak stored on the prediction.
func (s *PlayService) rescore(ctx context.Context, tx *sqlx.Tx, pl game.Play, streaks map[uuid.UUID]int, last map[uuid.UUID]uuid.UUID) error {
	predictions, err := s.store.GetPredictionsByPlayTx(ctx, tx, pl.ID)
	if err != nil {
		return fmt.Errorf("failed to get predictions: %w", err)
	}

	for i := range predictions {
		p := &predictions[i]
		before, ok := streaks[p.UserID]
		if !ok {
			before = p.StreakBefore
		}

		result := scoring.Score(p.PredictedOutcome, *pl.ActualOutcome, before, p.GameBreaker)
		p.PointsAwarded = result.Points
		p.StreakBefore = before
		p.StreakAfter = result.Streak
		if p.ScoredAt == nil {
			p.ScoredAt = pl.ScoredAt
		}

		if err := s.store.UpdatePredictionScore(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to rescore prediction: %w", err)
		}
		streaks[p.UserID] = result.Streak
		last[p.UserID] = p.ID
	}
	return nil
}

func (s *PlayService) CurrentPlay(ctx context.Context, gameID uuid.UUID) (*game.Play, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	return s.store.GetCurrentPlay(ctx, gameID)
}

func (s *PlayService) ListPlays(ctx context.Context, gameID uuid.UUID) ([]game.Play, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	return s.store.GetPlays(ctx, gameID)
}

func (s *PlayService) GetPlay(ctx context.Context, playID uuid.UUID) (*game.Play, error) {
	play, err := s.store.GetPlay(ctx, playID)
	if err != nil {
		return nil, lookupErr(err, "play", playID)
	}
	return play, nil
}
