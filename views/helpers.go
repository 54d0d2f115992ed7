package views

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/middleware"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	users "github.com/AdamBeresnev/playcall/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func situation(p game.Play) string {
	s := fmt.Sprintf("Q%d %s & %d", p.Quarter, ordinal(p.Down), p.Distance)
	if p.YardLine != "" {
		s += " at " + p.YardLine
	}
	return s
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

var gameStatuses = []game.GameStatus{game.GamePending, game.GameLive, game.GameFinished}

func homePath(u *users.User) string {
	if u.IsAdmin() {
		return "/admin/games"
	}
	return "/games"
}

func gamePath(g game.Game, isAdmin bool) string {
	if isAdmin {
		return "/admin/games/" + g.Slug
	}
	return "/games/" + g.Slug
}

// playPath is the admin endpoint for verb on p, e.g. /admin/plays/{id}/lock.
func playPath(p game.Play, verb string) string {
	return "/admin/plays/" + p.ID.String() + "/" + verb
}

func predictedOutcome(p *game.Prediction) *outcome.Outcome {
	if p == nil {
		return nil
	}
	return &p.PredictedOutcome
}
