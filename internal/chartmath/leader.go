package chartmath

import "math"

// DefaultLeaderTolerance is the value delta, in currency units, below which a
// rank swap between two different candidates is treated as noise.
const DefaultLeaderTolerance = 0.01

// Leader is the held "top item" of a ranked list, e.g. the costliest feature
// shown on a summary card.
type Leader struct {
	Candidate string  `json:"candidate"`
	Value     float64 `json:"value"`
}

// IsZero reports whether no leader is held.
func (l Leader) IsZero() bool {
	return l.Candidate == ""
}

// Stabilize applies hysteresis to repeated recomputations of a ranking: the
// held leader is replaced by a different incoming candidate only when the
// value moved by more than tolerance. The same candidate always refreshes its
// value. This keeps near-tied candidates from flickering across recomputes.
func Stabilize(held Leader, incoming Leader, tolerance float64) Leader {
	if tolerance <= 0 {
		tolerance = DefaultLeaderTolerance
	}
	if held.IsZero() || incoming.IsZero() {
		return incoming
	}
	if incoming.Candidate == held.Candidate {
		return incoming
	}
	if math.Abs(incoming.Value-held.Value) <= tolerance {
		return held
	}
	return incoming
}
