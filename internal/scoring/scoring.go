package scoring

import "github.com/AdamBeresnev/playcall/internal/outcome"

// Tier point values
const (
	RunPoints       = 140
	PassPoints      = 220
	DirectionPoints = 70
	BackPoints      = 380
	ShortPoints     = 200
	LongPoints      = 290
)

const gameBreakerFactor = 2

type Match int

const (
	NoMatch Match = iota
	PartialMatch
	ExactMatch
)

func (m Match) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case PartialMatch:
		return "partial"
	default:
		return "none"
	}
}

type Result struct {
	Points int
	Streak int
	Match  Match
}

// Score rates a prediction against the actual outcome. streak is the
// user's streak going into this play; Result.Streak is the streak coming
// out of it.
func Score(predicted, actual outcome.Outcome, streak int, gameBreaker bool) Result {
	if streak < 0 {
		streak = 0
	}
	p := predicted.Decompose()
	a := actual.Decompose()

	match := Classify(p, a)
	base := BasePoints(p, match)
	if gameBreaker {
		base *= gameBreakerFactor
	}

	// multiplier is kept in tenths so half-up rounding stays exact
	points := (base*multiplierTenths(streak) + 5) / 10

	return Result{
		Points: points,
		Streak: nextStreak(streak, match),
		Match:  match,
	}
}

// Classify compares the tiers the prediction specified with the actual
// outcome. Untyped outcomes never match anything, themselves included.
func Classify(predicted, actual outcome.Tiers) Match {
	if !predicted.Typed() || !actual.Typed() || predicted.Kind != actual.Kind {
		return NoMatch
	}
	if predicted.Depth != outcome.DepthNone && predicted.Depth != actual.Depth {
		return PartialMatch
	}
	if predicted.Direction != outcome.DirectionNone && predicted.Direction != actual.Direction {
		return PartialMatch
	}
	return ExactMatch
}

// BasePoints is the score before any multiplier.
func BasePoints(predicted outcome.Tiers, match Match) int {
	switch match {
	case ExactMatch:
		points := kindPoints(predicted.Kind) + depthPoints(predicted.Depth)
		if predicted.Direction != outcome.DirectionNone {
			points += DirectionPoints
		}
		return points
	case PartialMatch:
		return kindPoints(predicted.Kind)
	default:
		return 0
	}
}

// StreakMultiplier returns the multiplier applied for a streak going into a play.
func StreakMultiplier(streak int) float64 {
	return float64(multiplierTenths(streak)) / 10
}

func multiplierTenths(streak int) int {
	switch {
	case streak >= 10:
		return 30
	case streak >= 5:
		return 20
	case streak >= 3:
		return 15
	case streak >= 1:
		return 12
	default:
		return 10
	}
}

func nextStreak(streak int, match Match) int {
	switch match {
	case ExactMatch:
		return streak + 1
	case PartialMatch:
		return streak
	default:
		return 0
	}
}

func kindPoints(k outcome.Kind) int {
	switch k {
	case outcome.KindRun:
		return RunPoints
	case outcome.KindPass:
		return PassPoints
	default:
		return 0
	}
}

func depthPoints(d outcome.Depth) int {
	switch d {
	case outcome.DepthBack:
		return BackPoints
	case outcome.DepthShort:
		return ShortPoints
	case outcome.DepthLong:
		return LongPoints
	default:
		return 0
	}
}
