package service

import (
	"context"
	"strings"
	"testing"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.games.CreateGame(ctx, "  Bears at Packers  ")
	require.NoError(t, err)
	assert.Equal(t, "Bears at Packers", g.Name)
	assert.Equal(t, game.GamePending, g.Status)
	assert.True(t, strings.HasPrefix(g.Slug, "bears-at-packers-"), g.Slug)

	other, err := env.games.CreateGame(ctx, "Bears at Packers")
	require.NoError(t, err)
	assert.NotEqual(t, g.Slug, other.Slug)

	bySlug, err := env.games.ResolveGame(ctx, g.Slug)
	require.NoError(t, err)
	assert.Equal(t, g.ID, bySlug.ID)

	byID, err := env.games.ResolveGame(ctx, g.ID.String())
	require.NoError(t, err)
	assert.Equal(t, g.Slug, byID.Slug)

	_, err = env.games.ResolveGame(ctx, "no-such-game")
	assert.ErrorIs(t, err, game.ErrNotFound)

	_, err = env.games.CreateGame(ctx, "   ")
	assert.ErrorIs(t, err, game.ErrInvalidInput)

	_, err = env.games.CreateGame(ctx, strings.Repeat("x", 101))
	assert.ErrorIs(t, err, game.ErrInvalidInput)
}

func TestUpdateGameStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	live := env.game(t)
	finished := env.game(t)
	require.NoError(t, env.games.UpdateGameStatus(ctx, live.ID, game.GameLive))
	require.NoError(t, env.games.UpdateGameStatus(ctx, finished.ID, game.GameFinished))

	assert.ErrorIs(t, env.games.UpdateGameStatus(ctx, live.ID, "paused"), game.ErrInvalidInput)
	assert.ErrorIs(t, env.games.UpdateGameStatus(ctx, uuid.New(), game.GameLive), game.ErrNotFound)

	all, err := env.games.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := env.games.ListActiveGames(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	assert.Equal(t, 2, env.notifier.count(EventGameStatus))
}
