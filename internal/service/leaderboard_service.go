package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/leaderboard"
	"github.com/AdamBeresnev/playcall/internal/store"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

type LeaderboardService struct {
	store *store.GameStore
}

func NewLeaderboardService(store *store.GameStore) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Leaderboard totals the game's points per player. It is rebuilt from the
// predictions on every call.
func (s *LeaderboardService) Leaderboard(ctx context.Context, gameID uuid.UUID) ([]leaderboard.Row, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	entries, err := s.store.GetLeaderboardEntries(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard entries: %w", err)
	}
	return leaderboard.Build(entries), nil
}

// BroadcastLive pushes the leaderboard of every live game somebody watches.
func (s *LeaderboardService) BroadcastLive(ctx context.Context, n LiveNotifier) error {
	games, err := s.store.ListGamesByStatus(ctx, game.GameLive)
	if err != nil {
		return fmt.Errorf("failed to list live games: %w", err)
	}
	for _, g := range games {
		if n.Subscribers(g.ID) == 0 {
			continue
		}
		rows, err := s.Leaderboard(ctx, g.ID)
		if err != nil {
			return err
		}
		n.Publish(g.ID, EventLeaderboard, rows)
	}
	return nil
}

// StartBroadcastScheduler runs BroadcastLive every interval until the
// returned scheduler is shut down.
func (s *LeaderboardService) StartBroadcastScheduler(n LiveNotifier, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := s.BroadcastLive(ctx, n); err != nil {
				slog.Error("leaderboard broadcast failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule leaderboard broadcast: %w", err)
	}

	sched.Start()
	return sched, nil
}
