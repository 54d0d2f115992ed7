package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/store"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
)

type GameService struct {
	db       *sqlx.DB
	store    *store.GameStore
	notifier Notifier
}

func NewGameService(db *sqlx.DB, store *store.GameStore, notifier Notifier) *GameService {
	return &GameService{db: db, store: store, notifier: orNop(notifier)}
}

type GameInput struct {
	Name string `validate:"required,max=100"`
}

func (s *GameService) CreateGame(ctx context.Context, name string) (*game.Game, error) {
	input := GameInput{Name: strings.TrimSpace(name)}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.New()
	g := game.Game{
		ID:        id,
		Name:      input.Name,
		Slug:      gameSlug(input.Name, id),
		Status:    game.GamePending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateGame(ctx, tx, &g); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	slog.Info("game created", "game_id", g.ID, "slug", g.Slug)
	return &g, tx.Commit()
}

// Names are not unique, so the slug carries the start of the id
func gameSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	if base == "" {
		base = "game"
	}
	return base + "-" + id.String()[:8]
}

func (s *GameService) GetGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "game", id)
	}
	return g, nil
}

// ResolveGame accepts either a game id or its slug.
func (s *GameService) ResolveGame(ctx context.Context, ref string) (*game.Game, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.GetGame(ctx, id)
	}
	g, err := s.store.GetGameBySlug(ctx, ref)
	if err != nil {
		return nil, lookupErr(err, "game", ref)
	}
	return g, nil
}

func (s *GameService) ListGames(ctx context.Context) ([]game.Game, error) {
	return s.store.ListGames(ctx)
}

// ListActiveGames returns the games players can still join.
func (s *GameService) ListActiveGames(ctx context.Context) ([]game.Game, error) {
	return s.store.ListGamesByStatus(ctx, game.GamePending, game.GameLive)
}

func (s *GameService) UpdateGameStatus(ctx context.Context, id uuid.UUID, status game.GameStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: game status %q", game.ErrInvalidInput, status)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.store.GetGameTx(ctx, tx, id); err != nil {
		return lookupErr(err, "game", id)
	}
	if err := s.store.UpdateGameStatusTx(ctx, tx, id, status); err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("game status changed", "game_id", id, "status", status)
	s.notifier.Publish(id, EventGameStatus, map[string]interface{}{"status": status})
	return nil
}
