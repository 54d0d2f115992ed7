package game

import (
	"sort"

	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/google/uuid"
)

// DriveBoundary reports whether next starts a new drive, given the play
// right before it in the same game.
type DriveBoundary func(prev, next Play) bool

// DefaultDriveBoundary starts a new drive after a 4th down, after a
// turnover or touchdown, and at the start of the second half. Plays carry
// no possession data, so this is a best guess from downs and outcomes.
func DefaultDriveBoundary(prev, next Play) bool {
	if prev.Down == 4 {
		return true
	}
	if prev.Quarter <= 2 && next.Quarter >= 3 {
		return true
	}
	if prev.ActualOutcome != nil {
		switch *prev.ActualOutcome {
		case outcome.Interception, outcome.Fumble, outcome.Touchdown:
			return true
		}
	}
	return false
}

// DriveOf returns every play of target's drive, including plays after
// target, in sequence order. plays may come in any order; nil if target is
// absent.
func DriveOf(plays []Play, target uuid.UUID, boundary DriveBoundary) []Play {
	ordered := make([]Play, len(plays))
	copy(ordered, plays)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	idx := -1
	for i := range ordered {
		if ordered[i].ID == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	start := idx
	for start > 0 && !boundary(ordered[start-1], ordered[start]) {
		start--
	}
	end := idx + 1
	for end < len(ordered) && !boundary(ordered[end-1], ordered[end]) {
		end++
	}
	return ordered[start:end]
}
