package sensor

import "strings"

// Quadrant is one of the four diagonal regions around the agent.
type Quadrant uint8

const (
	NorthEast Quadrant = iota
	NorthWest
	SouthEast
	SouthWest
)

// NumQuadrants is the number of quadrants a signature can hold.
const NumQuadrants = 4

var quadrantNames = [NumQuadrants]string{"NE", "NW", "SE", "SW"}

func (q Quadrant) String() string {
	if int(q) >= NumQuadrants {
		return "?"
	}
	return quadrantNames[q]
}

// Signature is the set of quadrants found most obstructed around the agent.
type Signature uint8

// NewSignature builds a signature holding the given quadrants.
func NewSignature(quadrants ...Quadrant) Signature {
	var s Signature
	for _, q := range quadrants {
		s = s.With(q)
	}
	return s
}

// With returns a copy of the signature that also holds q.
func (s Signature) With(q Quadrant) Signature {
	return s | 1<<q
}

// Has reports whether q is part of the signature.
func (s Signature) Has(q Quadrant) bool {
	return s&(1<<q) != 0
}

// Empty reports whether no quadrant is part of the signature.
func (s Signature) Empty() bool {
	return s == 0
}

// Shared returns how many quadrants both signatures hold.
func (s Signature) Shared(o Signature) int {
	n := 0
	for q := Quadrant(0); q < NumQuadrants; q++ {
		if s.Has(q) && o.Has(q) {
			n++
		}
	}
	return n
}

// Quadrants lists the quadrants of the signature in NE, NW, SE, SW order.
func (s Signature) Quadrants() []Quadrant {
	var qs []Quadrant
	for q := Quadrant(0); q < NumQuadrants; q++ {
		if s.Has(q) {
			qs = append(qs, q)
		}
	}
	return qs
}

func (s Signature) String() string {
	names := make([]string, 0, NumQuadrants)
	for _, q := range s.Quadrants() {
		names = append(names, q.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
