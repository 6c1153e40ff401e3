/*
Package experience keeps the log of past decisions the agent draws on and the policy that
turns that log into the next move.

There is no learned value function: the policy replays actions that scored well in the same
or a similar obstruction signature, weighted by how well they scored, and explores uniformly
at random when nothing in the log applies.
*/
package experience

import (
	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/sensor"
)

// Record is one logged decision. It is never modified once appended.
type Record struct {
	Signature sensor.Signature // Signature is the obstruction signature at decision time.
	Position  grid.Position    // Position is where the decision was taken.
	Legal     sensor.LegalMask // Legal is the set of moves that were available.
	Action    grid.Direction   // Action is the move that was chosen.
	Outcome   float64          // Outcome is the score of the move, in [-1, 1].
}

// Table is an append-only, ordered log of records.
type Table struct {
	records []Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Append adds a record to the end of the log.
func (t *Table) Append(r Record) {
	t.records = append(t.records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of every record in insertion order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Clear empties the log.
func (t *Table) Clear() {
	t.records = nil
}
