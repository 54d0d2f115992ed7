package game

import (
	"time"

	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/google/uuid"
)

type Prediction struct {
	ID     uuid.UUID `db:"id" json:"id"`
	PlayID uuid.UUID `db:"play_id" json:"play_id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`

	PredictedOutcome outcome.Outcome `db:"predicted_outcome" json:"predicted_outcome"`
	GameBreaker      bool            `db:"game_breaker" json:"game_breaker"`

	// Written by the scoring pass, zero until the play is scored
	PointsAwarded int        `db:"points_awarded" json:"points_awarded"`
	StreakBefore  int        `db:"streak_before" json:"streak_before"`
	StreakAfter   int        `db:"streak_after" json:"streak_after"`
	ScoredAt      *time.Time `db:"scored_at" json:"scored_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
