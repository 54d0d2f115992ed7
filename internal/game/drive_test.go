package game

import (
	"testing"

	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/AdamBeresnev/playcall/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlay(seq, quarter, down int, actual *outcome.Outcome) Play {
	status := PlayOpen
	if actual != nil {
		status = PlayScored
	}
	return Play{
		ID:             uuid.New(),
		SequenceNumber: seq,
		Quarter:        quarter,
		Down:           down,
		Status:         status,
		ActualOutcome:  actual,
	}
}

func sequences(plays []Play) []int {
	var seqs []int
	for _, p := range plays {
		seqs = append(seqs, p.SequenceNumber)
	}
	return seqs
}

func TestDefaultDriveBoundary(t *testing.T) {
	testCases := []struct {
		name     string
		prev     Play
		next     Play
		expected bool
	}{
		{"first to second down", newPlay(1, 1, 1, utils.Ptr(outcome.RunLeft)), newPlay(2, 1, 2, nil), false},
		{"conversion keeps the drive", newPlay(1, 1, 3, utils.Ptr(outcome.PassShortLeft)), newPlay(2, 1, 1, nil), false},
		{"after fourth down", newPlay(1, 1, 4, utils.Ptr(outcome.RunLeft)), newPlay(2, 1, 1, nil), true},
		{"after interception", newPlay(1, 1, 2, utils.Ptr(outcome.Interception)), newPlay(2, 1, 1, nil), true},
		{"after fumble", newPlay(1, 2, 1, utils.Ptr(outcome.Fumble)), newPlay(2, 2, 1, nil), true},
		{"after touchdown", newPlay(1, 3, 3, utils.Ptr(outcome.Touchdown)), newPlay(2, 3, 1, nil), true},
		{"sack keeps the drive", newPlay(1, 1, 2, utils.Ptr(outcome.Sack)), newPlay(2, 1, 3, nil), false},
		{"second half", newPlay(1, 2, 2, utils.Ptr(outcome.RunRight)), newPlay(2, 3, 1, nil), true},
		{"quarter change mid half", newPlay(1, 1, 2, utils.Ptr(outcome.RunRight)), newPlay(2, 2, 3, nil), false},
		{"unscored previous play", newPlay(1, 1, 2, nil), newPlay(2, 1, 3, nil), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DefaultDriveBoundary(tc.prev, tc.next))
		})
	}
}

func TestDriveOf(t *testing.T) {
	plays := []Play{
		newPlay(1, 1, 1, utils.Ptr(outcome.RunLeft)),
		newPlay(2, 1, 2, utils.Ptr(outcome.PassShortLeft)),
		newPlay(3, 1, 3, utils.Ptr(outcome.Touchdown)),
		newPlay(4, 1, 1, utils.Ptr(outcome.RunCenter)),
		newPlay(5, 1, 2, nil),
	}

	assert.Equal(t, []int{1, 2, 3}, sequences(DriveOf(plays, plays[2].ID, DefaultDriveBoundary)))
	assert.Equal(t, []int{4, 5}, sequences(DriveOf(plays, plays[4].ID, DefaultDriveBoundary)))
	assert.Equal(t, []int{1, 2, 3}, sequences(DriveOf(plays, plays[0].ID, DefaultDriveBoundary)), "later plays of the drive are included")
	assert.Equal(t, []int{4, 5}, sequences(DriveOf(plays, plays[3].ID, DefaultDriveBoundary)))
	assert.Nil(t, DriveOf(plays, uuid.New(), DefaultDriveBoundary))
}

func TestDriveOfUnorderedInputAndCustomBoundary(t *testing.T) {
	plays := []Play{
		newPlay(3, 1, 3, nil),
		newPlay(1, 1, 1, nil),
		newPlay(2, 1, 2, nil),
	}

	everyPlay := func(prev, next Play) bool { return true }
	neverSplit := func(prev, next Play) bool { return false }

	require.Equal(t, []int{3}, sequences(DriveOf(plays, plays[0].ID, everyPlay)))
	require.Equal(t, []int{1, 2, 3}, sequences(DriveOf(plays, plays[0].ID, neverSplit)))
	require.Equal(t, []int{1, 2, 3}, sequences(DriveOf(plays, plays[1].ID, neverSplit)))

	// input slice order is left untouched
	assert.Equal(t, 3, plays[0].SequenceNumber)
}

func TestCurrentPlay(t *testing.T) {
	assert.Nil(t, CurrentPlay(nil))

	plays := []Play{
		newPlay(1, 1, 1, utils.Ptr(outcome.RunLeft)),
		newPlay(2, 1, 2, nil),
		newPlay(3, 1, 3, nil),
	}
	plays[1].Status = PlayLocked

	current := CurrentPlay(plays)
	require.NotNil(t, current)
	assert.Equal(t, 3, current.SequenceNumber)

	plays[1].Status = PlayScored
	plays[2].Status = PlayScored
	assert.Nil(t, CurrentPlay(plays))
}
