package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AdamBeresnev/playcall/internal/db"
	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/AdamBeresnev/playcall/internal/store"
	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, "file://../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type published struct {
	gameID uuid.UUID
	event  string
}

type recordingNotifier struct {
	mu       sync.Mutex
	events   []published
	watchers int
}

func (n *recordingNotifier) Publish(gameID uuid.UUID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{gameID: gameID, event: event})
}

func (n *recordingNotifier) Subscribers(uuid.UUID) int {
	return n.watchers
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.event == event {
			c++
		}
	}
	return c
}

type testEnv struct {
	db          *sqlx.DB
	gameStore   *store.GameStore
	userStore   *store.UserStore
	notifier    *recordingNotifier
	games       *GameService
	plays       *PlayService
	predictions *PredictionService
	leaderboard *LeaderboardService
	users       *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := setupTestDB(t)
	gs := store.NewGameStore(database)
	us := store.NewUserStore(database)
	n := &recordingNotifier{}
	return &testEnv{
		db:          database,
		gameStore:   gs,
		userStore:   us,
		notifier:    n,
		games:       NewGameService(database, gs, n),
		plays:       NewPlayService(database, gs, us, n),
		predictions: NewPredictionService(database, gs, us, nil),
		leaderboard: NewLeaderboardService(gs),
		users:       NewUserService(us),
	}
}

func (e *testEnv) game(t *testing.T) *game.Game {
	t.Helper()
	g, err := e.games.CreateGame(context.Background(), "Bears at Packers")
	require.NoError(t, err)
	return g
}

func (e *testEnv) play(t *testing.T, gameID uuid.UUID, quarter, down int) *game.Play {
	t.Helper()
	p, err := e.plays.CreatePlay(context.Background(), gameID, PlayInput{Quarter: quarter, Down: down, Distance: 10, YardLine: "OWN 25"})
	require.NoError(t, err)
	return p
}

func (e *testEnv) user(t *testing.T, name string, role users.Role) *users.User {
	t.Helper()
	u, err := e.users.FindOrCreateByName(context.Background(), name, role)
	require.NoError(t, err)
	return u
}

func (e *testEnv) predict(t *testing.T, playID, userID uuid.UUID, o outcome.Outcome, gb bool) *game.Prediction {
	t.Helper()
	p, err := e.predictions.SubmitPrediction(context.Background(), playID, userID, o, gb)
	require.NoError(t, err)
	return p
}

func (e *testEnv) streak(t *testing.T, userID uuid.UUID) int {
	t.Helper()
	u, err := e.userStore.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u.Streak
}

func (e *testEnv) prediction(t *testing.T, playID, userID uuid.UUID) *game.Prediction {
	t.Helper()
	p, err := e.predictions.GetPrediction(context.Background(), playID, userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}
