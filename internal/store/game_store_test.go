package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/playcall/internal/db"
	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/AdamBeresnev/playcall/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// every connection to :memory: is its own database
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, "file://../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	return database
}

func withTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx)) {
	t.Helper()
	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func seedGame(t *testing.T, database *sqlx.DB, s *GameStore) *game.Game {
	t.Helper()
	id := uuid.New()
	g := &game.Game{
		ID:        id,
		Name:      "Bears at Packers",
		Slug:      "bears-at-packers-" + id.String()[:8],
		Status:    game.GamePending,
		CreatedAt: time.Now().UTC(),
	}
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.CreateGame(context.Background(), tx, g))
	})
	return g
}

func seedPlay(t *testing.T, database *sqlx.DB, s *GameStore, gameID uuid.UUID, seq int) *game.Play {
	t.Helper()
	p := &game.Play{
		ID:             uuid.New(),
		GameID:         gameID,
		SequenceNumber: seq,
		Quarter:        1,
		Down:           1,
		Status:         game.PlayOpen,
		CreatedAt:      time.Now().UTC(),
	}
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.CreatePlay(context.Background(), tx, p))
	})
	return p
}

func seedUser(t *testing.T, us *UserStore, name string, role users.Role) *users.User {
	t.Helper()
	u := &users.User{ID: uuid.New(), Name: name, Role: role, CreatedAt: time.Now().UTC()}
	require.NoError(t, us.CreateUser(context.Background(), u))
	return u
}

func TestCreateAndGetGame(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	g := seedGame(t, database, s)

	fetched, err := s.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, fetched.Name)
	assert.Equal(t, g.Slug, fetched.Slug)
	assert.Equal(t, game.GamePending, fetched.Status)
	assert.WithinDuration(t, g.CreatedAt, fetched.CreatedAt, time.Second)

	bySlug, err := s.GetGameBySlug(context.Background(), g.Slug)
	require.NoError(t, err)
	assert.Equal(t, g.ID, bySlug.ID)

	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.UpdateGameStatusTx(context.Background(), tx, g.ID, game.GameFinished))
	})

	active, err := s.ListGamesByStatus(context.Background(), game.GamePending, game.GameLive)
	require.NoError(t, err)
	assert.Empty(t, active)

	finished, err := s.ListGamesByStatus(context.Background(), game.GameFinished)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, g.ID, finished[0].ID)
}

func TestPlaysSequenceAndCurrentPlay(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	ctx := context.Background()
	g := seedGame(t, database, s)

	current, err := s.GetCurrentPlay(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, current, "no plays yet")

	withTx(t, database, func(tx *sqlx.Tx) {
		next, err := s.NextSequenceNumberTx(ctx, tx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, next)
	})

	p1 := seedPlay(t, database, s, g.ID, 1)
	p2 := seedPlay(t, database, s, g.ID, 2)

	withTx(t, database, func(tx *sqlx.Tx) {
		next, err := s.NextSequenceNumberTx(ctx, tx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, next)
	})

	current, err = s.GetCurrentPlay(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, p2.ID, current.ID)

	now := time.Now().UTC()
	p2.Resolve(outcome.RunLeft, now)
	p1.Status = game.PlayLocked
	p1.LockedAt = &now
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.UpdatePlay(ctx, tx, p2))
		require.NoError(t, s.UpdatePlay(ctx, tx, p1))
	})

	current, err = s.GetCurrentPlay(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, p1.ID, current.ID)
	assert.Equal(t, game.PlayLocked, current.Status)
	assert.Nil(t, current.ActualOutcome)

	fetched, err := s.GetPlay(ctx, p2.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ActualOutcome)
	assert.Equal(t, outcome.RunLeft, *fetched.ActualOutcome)
	assert.Nil(t, fetched.LockedBy)

	p1.Resolve(outcome.Sack, now)
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.UpdatePlay(ctx, tx, p1))
	})

	current, err = s.GetCurrentPlay(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, current, "all plays scored")

	plays, err := s.GetPlays(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, plays, 2)
	assert.Equal(t, 1, plays[0].SequenceNumber)
	assert.Equal(t, 2, plays[1].SequenceNumber)
}

func TestDuplicateSequenceNumberRejected(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	g := seedGame(t, database, s)
	seedPlay(t, database, s, g.ID, 1)

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = s.CreatePlay(context.Background(), tx, &game.Play{
		ID:             uuid.New(),
		GameID:         g.ID,
		SequenceNumber: 1,
		Quarter:        1,
		Down:           2,
		Status:         game.PlayOpen,
		CreatedAt:      time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestUpsertPrediction(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	us := NewUserStore(database)
	ctx := context.Background()

	g := seedGame(t, database, s)
	p := seedPlay(t, database, s, g.ID, 1)
	alice := seedUser(t, us, "Alice", users.RolePlayer)

	now := time.Now().UTC()
	first := &game.Prediction{
		ID:               uuid.New(),
		PlayID:           p.ID,
		UserID:           alice.ID,
		PredictedOutcome: outcome.RunLeft,
		GameBreaker:      true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.UpsertPrediction(ctx, tx, first))
	})

	second := &game.Prediction{
		ID:               uuid.New(),
		PlayID:           p.ID,
		UserID:           alice.ID,
		PredictedOutcome: outcome.PassLongRight,
		GameBreaker:      false,
		CreatedAt:        now.Add(time.Second),
		UpdatedAt:        now.Add(time.Second),
	}
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, s.UpsertPrediction(ctx, tx, second))
	})

	fetched, err := s.GetPrediction(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, fetched.ID, "identity survives the overwrite")
	assert.Equal(t, outcome.PassLongRight, fetched.PredictedOutcome)
	assert.False(t, fetched.GameBreaker)
	assert.Equal(t, 0, fetched.PointsAwarded)
	assert.Nil(t, fetched.ScoredAt)

	withTx(t, database, func(tx *sqlx.Tx) {
		preds, err := s.GetPredictionsByPlayTx(ctx, tx, p.ID)
		require.NoError(t, err)
		assert.Len(t, preds, 1)
	})
}

func TestUpdatePredictionScoreAndLatest(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	us := NewUserStore(database)
	ctx := context.Background()

	g := seedGame(t, database, s)
	p1 := seedPlay(t, database, s, g.ID, 1)
	p2 := seedPlay(t, database, s, g.ID, 2)
	alice := seedUser(t, us, "Alice", users.RolePlayer)

	now := time.Now().UTC()
	var preds []*game.Prediction
	for _, p := range []*game.Play{p1, p2} {
		pred := &game.Prediction{ID: uuid.New(), PlayID: p.ID, UserID: alice.ID, PredictedOutcome: outcome.RunLeft, CreatedAt: now, UpdatedAt: now}
		withTx(t, database, func(tx *sqlx.Tx) {
			require.NoError(t, s.UpsertPrediction(ctx, tx, pred))
		})
		preds = append(preds, pred)
	}

	withTx(t, database, func(tx *sqlx.Tx) {
		latest, err := s.LatestScoredPredictionIDTx(ctx, tx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, latest)
	})

	for i, pred := range preds {
		pred.PointsAwarded = 210
		pred.StreakBefore = i
		pred.StreakAfter = i + 1
		pred.ScoredAt = utils.Ptr(now.Add(time.Duration(i) * time.Second))
		withTx(t, database, func(tx *sqlx.Tx) {
			require.NoError(t, s.UpdatePredictionScore(ctx, tx, pred))
		})
	}

	withTx(t, database, func(tx *sqlx.Tx) {
		latest, err := s.LatestScoredPredictionIDTx(ctx, tx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, preds[1].ID, latest)

		inPlays, err := s.GetUserPredictionsForPlaysTx(ctx, tx, alice.ID, []uuid.UUID{p1.ID})
		require.NoError(t, err)
		require.Len(t, inPlays, 1)
		assert.Equal(t, preds[0].ID, inPlays[0].ID)
	})

	all, err := s.GetUserPredictionsForGame(ctx, g.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[1].StreakBefore)
	assert.Equal(t, 2, all[1].StreakAfter)
}

func TestLeaderboardEntries(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewGameStore(database)
	us := NewUserStore(database)
	ctx := context.Background()

	g := seedGame(t, database, s)
	other := seedGame(t, database, s)
	p := seedPlay(t, database, s, g.ID, 1)
	otherPlay := seedPlay(t, database, s, other.ID, 1)

	alice := seedUser(t, us, "Alice", users.RolePlayer)
	seedUser(t, us, "Bob", users.RolePlayer)

	now := time.Now().UTC()
	for _, playID := range []uuid.UUID{p.ID, otherPlay.ID} {
		pred := &game.Prediction{ID: uuid.New(), PlayID: playID, UserID: alice.ID, PredictedOutcome: outcome.Sack, CreatedAt: now, UpdatedAt: now}
		withTx(t, database, func(tx *sqlx.Tx) {
			require.NoError(t, s.UpsertPrediction(ctx, tx, pred))
		})
	}

	entries, err := s.GetLeaderboardEntries(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.Equal(t, "Alice", entries[0].UserName)
	assert.Equal(t, users.RolePlayer, entries[0].Role)
}
