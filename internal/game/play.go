package game

import (
	"time"

	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/google/uuid"
)

type PlayStatus string

const (
	PlayOpen   PlayStatus = "open"
	PlayLocked PlayStatus = "locked"
	PlayScored PlayStatus = "scored"
)

type Play struct {
	ID     uuid.UUID `db:"id" json:"id"`
	GameID uuid.UUID `db:"game_id" json:"game_id"`

	// Assigned on creation, max+1 within the game
	SequenceNumber int `db:"sequence_number" json:"sequence_number"`

	Quarter  int    `db:"quarter" json:"quarter"`
	Down     int    `db:"down" json:"down"`
	Distance int    `db:"distance" json:"distance"`
	YardLine string `db:"yard_line" json:"yard_line"`

	Status        PlayStatus       `db:"status" json:"status"`
	ActualOutcome *outcome.Outcome `db:"actual_outcome" json:"actual_outcome"`

	LockedAt *time.Time `db:"locked_at" json:"locked_at,omitempty"`
	LockedBy *uuid.UUID `db:"locked_by" json:"locked_by,omitempty"`
	ScoredAt *time.Time `db:"scored_at" json:"scored_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (p *Play) AcceptsPredictions() bool {
	return p.Status == PlayOpen
}

func (p *Play) IsScored() bool {
	return p.Status == PlayScored && p.ActualOutcome != nil
}

// CurrentPlay picks the highest-sequence play that is not scored yet.
func CurrentPlay(plays []Play) *Play {
	var current *Play
	for i := range plays {
		if plays[i].Status == PlayScored {
			continue
		}
		if current == nil || plays[i].SequenceNumber > current.SequenceNumber {
			current = &plays[i]
		}
	}
	return current
}

// Resolve records the actual outcome and marks the play scored. The first
// scoring time is kept across corrections.
func (p *Play) Resolve(actual outcome.Outcome, at time.Time) {
	p.ActualOutcome = &actual
	p.Status = PlayScored
	if p.ScoredAt == nil {
		p.ScoredAt = &at
	}
}
