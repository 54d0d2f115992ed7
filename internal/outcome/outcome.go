package outcome

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome is one value of the closed play outcome vocabulary.
type Outcome string

const (
	RunLeft   Outcome = "RUN_LEFT"
	RunCenter Outcome = "RUN_CENTER"
	RunRight  Outcome = "RUN_RIGHT"

	PassBackLeft    Outcome = "PASS_BACK_LEFT"
	PassBackCenter  Outcome = "PASS_BACK_CENTER"
	PassBackRight   Outcome = "PASS_BACK_RIGHT"
	PassShortLeft   Outcome = "PASS_SHORT_LEFT"
	PassShortCenter Outcome = "PASS_SHORT_CENTER"
	PassShortRight  Outcome = "PASS_SHORT_RIGHT"
	PassLongLeft    Outcome = "PASS_LONG_LEFT"
	PassLongCenter  Outcome = "PASS_LONG_CENTER"
	PassLongRight   Outcome = "PASS_LONG_RIGHT"
	PassIncomplete  Outcome = "PASS_INCOMPLETE"

	Sack              Outcome = "SACK"
	Interception      Outcome = "INTERCEPTION"
	Fumble            Outcome = "FUMBLE"
	Touchdown         Outcome = "TOUCHDOWN"
	PenaltyReplayDown Outcome = "PENALTY_REPLAY_DOWN"
)

// ErrUnknown is returned by Parse for values outside the vocabulary.
var ErrUnknown = errors.New("unknown outcome")

// Order matters, it is the order the admin and player screens list outcomes in.
var vocabulary = []Outcome{
	RunLeft, RunCenter, RunRight,
	PassBackLeft, PassBackCenter, PassBackRight,
	PassShortLeft, PassShortCenter, PassShortRight,
	PassLongLeft, PassLongCenter, PassLongRight,
	PassIncomplete,
	Sack, Interception, Fumble, Touchdown, PenaltyReplayDown,
}

var tiers = make(map[Outcome]Tiers, len(vocabulary))

func init() {
	for _, o := range vocabulary {
		tiers[o] = decompose(string(o))
	}
}

// All returns the full vocabulary in display order.
func All() []Outcome {
	out := make([]Outcome, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Parse validates s against the vocabulary.
func Parse(s string) (Outcome, error) {
	o := Outcome(strings.TrimSpace(s))
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return o, nil
}

func (o Outcome) Valid() bool {
	_, ok := tiers[o]
	return ok
}

// Decompose splits the outcome into its tiers. Values outside the
// vocabulary come back as KindOther with no tiers.
func (o Outcome) Decompose() Tiers {
	if t, ok := tiers[o]; ok {
		return t
	}
	return Tiers{Kind: KindOther}
}

// Label is the human readable form, "PASS_SHORT_LEFT" -> "Pass short left".
func (o Outcome) Label() string {
	s := strings.ToLower(strings.ReplaceAll(string(o), "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (o Outcome) String() string {
	return string(o)
}
