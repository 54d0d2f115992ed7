package leaderboard

import (
	"sort"

	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/google/uuid"
)

// Entry is one prediction row of a game joined with its user.
type Entry struct {
	UserID   uuid.UUID  `db:"user_id"`
	UserName string     `db:"user_name"`
	Role     users.Role `db:"role"`
	Points   int        `db:"points_awarded"`
}

type Row struct {
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	TotalPoints int       `json:"total_points"`
}

// Build sums points per player. Users without a prediction in the entries
// do not appear; ties are ordered by name.
func Build(entries []Entry) []Row {
	totals := make(map[uuid.UUID]*Row)
	for _, e := range entries {
		if e.Role != users.RolePlayer {
			continue
		}
		row, ok := totals[e.UserID]
		if !ok {
			row = &Row{UserID: e.UserID, UserName: e.UserName}
			totals[e.UserID] = row
		}
		row.TotalPoints += e.Points
	}

	rows := make([]Row, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].UserName != rows[j].UserName {
			return rows[i].UserName < rows[j].UserName
		}
		return rows[i].UserID.String() < rows[j].UserID.String()
	})
	return rows
}
