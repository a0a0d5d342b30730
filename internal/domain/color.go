package domain

// ColorID identifies one palette entry. ID 0 is always the blank color.
type ColorID uint8

// MaxPaletteSize bounds the number of palette entries, blank included.
const MaxPaletteSize = 32

// CellState is the possibility set of one cell as a bitmask over ColorIDs.
// Bit i set means "the cell can still be color i". Both cell flavors project
// into this representation for observers and cache keys.
type CellState uint32

// Color is the capability set shared by the binary and multi-color cell
// flavors. A value of a type C implementing Color[C] is one cell's current
// possibility set.
//
// Solving only ever narrows a cell, so RefineWith is the single mutation
// gate: it reports whether the new value changes anything and fails when the
// new value is not a subset of the old one.
type Color[C any] interface {
	comparable

	// Blank returns the blank (background) color.
	Blank() C
	// IsSolved reports whether exactly one concrete color remains.
	IsSolved() bool
	// SolutionRate is 1.0 for a solved cell and scales down with the number
	// of remaining candidates; full is the complete possibility set of the
	// puzzle's palette.
	SolutionRate(full C) float64
	// Variants enumerates the concrete colors still possible, in palette
	// order with blank last.
	Variants() []C
	// CanBe reports whether the possibility sets intersect.
	CanBe(c C) bool
	// CanBeBlank reports whether blank is still possible.
	CanBeBlank() bool
	// Union widens the receiver with c. Used only by the line solver to
	// accumulate feasible placements; the zero value is the identity.
	Union(c C) C
	// Normalize folds solver-internal aggregate states back into the
	// canonical cell representation.
	Normalize() C
	// Minus removes the colors of c from the possibility set. Fails if the
	// cell is already solved or nothing would remain.
	Minus(c C) (C, error)
	// RefineWith validates that c narrows (or equals) the receiver and
	// reports whether it is an actual change.
	RefineWith(c C) (bool, error)
	// State projects the possibility set onto a ColorID bitmask.
	State() CellState
	// AsID returns the concrete color id; ok is false unless solved.
	AsID() (ColorID, bool)
	// FromID returns the solved cell for one concrete color id.
	FromID(id ColorID) C
}
