// Package universe maintains the latest known channel values of every
// DMX universe in a show and serializes that state into packed pixel
// rows for video encoding. One row is one universe; row order is
// ascending universe id and is stable run-to-run.
package universe

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmxio/olavc/showfile"
)

// Sentinel errors for state accumulation. Callers distinguish failure
// modes using errors.Is.
var (
	ErrTooManyUniverses = errors.New("universe: more universes than declared")
	ErrIncompleteSet    = errors.New("universe: universe state undefined at commit")
	ErrStrideTooShort   = errors.New("universe: row stride shorter than row width")
	ErrNonPositiveCount = errors.New("universe: non-positive universe count")
)

// Commit is the outcome of applying one frame to the table: whether the
// updated state should be emitted as an output frame, and for how long
// it is held.
type Commit struct {
	Emit       bool
	DurationMS int64
}

// Table tracks the most recent ChannelRow observed for each universe
// id. It is created empty, only ever grows, and is owned by a single
// conversion pass; no locking is provided or needed.
type Table struct {
	expected int
	finalMS  int64
	rows     map[uint32]showfile.ChannelRow
	order    []uint32 // ascending ids, maintained on insert
}

// NewTable creates a table expecting exactly expected distinct
// universes. finalMS replaces the unknown-duration sentinel of a
// stream's last frame; it is clamped to at least one millisecond.
func NewTable(expected int, finalMS int64) (*Table, error) {
	if expected <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveCount, expected)
	}
	if finalMS < 1 {
		finalMS = 1
	}
	return &Table{
		expected: expected,
		finalMS:  finalMS,
		rows:     make(map[uint32]showfile.ChannelRow, expected),
		order:    make([]uint32, 0, expected),
	}, nil
}

// Apply overwrites (or inserts) the stored state for the frame's
// universe and decides whether the new overall state commits.
//
// A zero duration marks an initialization-only update and never emits.
// Any other duration requires the table to be complete: every declared
// universe must have been seen at least once.
func (t *Table) Apply(f showfile.Frame) (Commit, error) {
	if _, ok := t.rows[f.Universe]; !ok {
		if len(t.order) == t.expected {
			return Commit{}, fmt.Errorf("%w: universe %d exceeds declared count %d",
				ErrTooManyUniverses, f.Universe, t.expected)
		}
		i := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= f.Universe })
		t.order = append(t.order, 0)
		copy(t.order[i+1:], t.order[i:])
		t.order[i] = f.Universe
	}
	t.rows[f.Universe] = f.Channels

	if f.Duration == 0 {
		return Commit{}, nil
	}
	if len(t.order) != t.expected {
		return Commit{}, fmt.Errorf("%w: have %d of %d universes",
			ErrIncompleteSet, len(t.order), t.expected)
	}

	d := f.Duration
	if d == showfile.UnknownDuration {
		d = t.finalMS
	}
	return Commit{Emit: true, DurationMS: d}, nil
}

// Len reports the number of distinct universes seen so far.
func (t *Table) Len() int {
	return len(t.order)
}

// Universes returns the ids present in the table in ascending order.
func (t *Table) Universes() []uint32 {
	out := make([]uint32, len(t.order))
	copy(out, t.order)
	return out
}

// Row returns the stored channel state for one universe.
func (t *Table) Row(id uint32) (showfile.ChannelRow, bool) {
	row, ok := t.rows[id]
	return row, ok
}
