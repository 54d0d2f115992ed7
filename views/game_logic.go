package views

import (
	"sort"

	"github.com/AdamBeresnev/playcall/internal/game"
)

type Drive struct {
	Number int
	Plays  []game.Play
}

// GroupDrives splits the game's plays into drives for display, oldest first.
func GroupDrives(plays []game.Play, boundary game.DriveBoundary) []Drive {
	if boundary == nil {
		boundary = game.DefaultDriveBoundary
	}

	ordered := make([]game.Play, len(plays))
	copy(ordered, plays)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	var drives []Drive
	for i, p := range ordered {
		if i == 0 || boundary(ordered[i-1], p) {
			drives = append(drives, Drive{Number: len(drives) + 1})
		}
		last := &drives[len(drives)-1]
		last.Plays = append(last.Plays, p)
	}
	return drives
}
