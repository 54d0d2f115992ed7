package game

import (
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GamePending  GameStatus = "pending"
	GameLive     GameStatus = "live"
	GameFinished GameStatus = "finished"
)

func (s GameStatus) Valid() bool {
	switch s {
	case GamePending, GameLive, GameFinished:
		return true
	}
	return false
}

type Game struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Slug      string     `db:"slug" json:"slug"`
	Status    GameStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

func (g *Game) IsActive() bool {
	return g.Status == GamePending || g.Status == GameLive
}
