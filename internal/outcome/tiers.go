package outcome

import "strings"

type Kind string

const (
	KindRun   Kind = "run"
	KindPass  Kind = "pass"
	KindOther Kind = "other"
)

type Depth string

const (
	DepthNone  Depth = ""
	DepthBack  Depth = "back"
	DepthShort Depth = "short"
	DepthLong  Depth = "long"
)

type Direction string

const (
	DirectionNone   Direction = ""
	DirectionLeft   Direction = "left"
	DirectionCenter Direction = "center"
	DirectionRight  Direction = "right"
)

const (
	runMarker        = "RUN"
	passMarker       = "PASS"
	incompleteMarker = "INCOMPLETE"
)

// Tiers is an outcome split into its orthogonal facets. Depth and
// Direction are empty when the outcome does not specify them.
type Tiers struct {
	Kind      Kind
	Depth     Depth
	Direction Direction
}

// Typed reports whether the outcome takes part in tier scoring at all.
func (t Tiers) Typed() bool {
	return t.Kind == KindRun || t.Kind == KindPass
}

func decompose(id string) Tiers {
	tokens := strings.Split(id, "_")
	switch tokens[0] {
	case runMarker:
		t := Tiers{Kind: KindRun}
		if len(tokens) > 1 {
			t.Direction = Direction(strings.ToLower(tokens[1]))
		}
		return t
	case passMarker:
		t := Tiers{Kind: KindPass}
		if len(tokens) < 2 || tokens[1] == incompleteMarker {
			return t
		}
		t.Depth = Depth(strings.ToLower(tokens[1]))
		if len(tokens) > 2 {
			t.Direction = Direction(strings.ToLower(tokens[2]))
		}
		return t
	default:
		return Tiers{Kind: KindOther}
	}
}
