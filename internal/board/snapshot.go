package board

import (
	"fmt"

	"svw.info/nonogram/internal/domain"
)

// Snapshot is an opaque copy of the grid taken at one nesting depth.
// Snapshots are stack-disciplined: the taker must Restore or Drop them in
// LIFO order. Violations panic with domain.ErrSnapshotMisuse.
type Snapshot[C domain.Color[C]] struct {
	cells []C
	depth int
}

// MakeSnapshot captures the current grid.
func (b *Board[C]) MakeSnapshot() Snapshot[C] {
	cells := make([]C, len(b.cells))
	copy(cells, b.cells)
	b.snapDepth++
	return Snapshot[C]{cells: cells, depth: b.snapDepth}
}

// Restore reverts the grid to the snapshot. No observer events fire for the
// re-broadened cells: restoration is not a narrowing.
func (b *Board[C]) Restore(s Snapshot[C]) {
	b.pop(s)
	copy(b.cells, s.cells)
}

// Drop discards the snapshot without reverting.
func (b *Board[C]) Drop(s Snapshot[C]) {
	b.pop(s)
}

func (b *Board[C]) pop(s Snapshot[C]) {
	if s.depth != b.snapDepth {
		panic(fmt.Sprintf("%v: depth %d, expected %d", domain.ErrSnapshotMisuse, s.depth, b.snapDepth))
	}
	b.snapDepth--
}
