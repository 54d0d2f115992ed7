package service

import "github.com/google/uuid"

const (
	EventPlayCreated   = "play_created"
	EventPlayLocked    = "play_locked"
	EventPlayScored    = "play_scored"
	EventPlayCorrected = "play_corrected"
	EventGameStatus    = "game_status"
	EventLeaderboard   = "leaderboard"
)

// Notifier fans game events out to whoever is watching the game.
type Notifier interface {
	Publish(gameID uuid.UUID, event string, payload interface{})
}

// LiveNotifier also knows whether anyone is watching.
type LiveNotifier interface {
	Notifier
	Subscribers(gameID uuid.UUID) int
}

type nopNotifier struct{}

func (nopNotifier) Publish(uuid.UUID, string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
