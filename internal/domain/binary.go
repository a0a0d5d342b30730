package domain

import "fmt"

// BinaryColor is the cell flavor for black-and-white puzzles.
//
// Undefined carries no information and is equivalent, as a possibility set,
// to {White, Black}. BlackOrWhite is an aggregate produced while the line
// solver merges placements; Normalize folds it back to Undefined so boards
// only ever hold the first three states.
type BinaryColor uint8

const (
	Undefined BinaryColor = iota
	White
	Black
	BlackOrWhite
)

const (
	maskWhite CellState = 1 << 0
	maskBlack CellState = 1 << 1
)

func (c BinaryColor) mask() CellState {
	switch c {
	case White:
		return maskWhite
	case Black:
		return maskBlack
	default:
		return maskWhite | maskBlack
	}
}

func binaryFromMask(m CellState) BinaryColor {
	switch m {
	case maskWhite:
		return White
	case maskBlack:
		return Black
	default:
		return Undefined
	}
}

func (c BinaryColor) Blank() BinaryColor { return White }

func (c BinaryColor) IsSolved() bool { return c == White || c == Black }

func (c BinaryColor) SolutionRate(_ BinaryColor) float64 {
	if c.IsSolved() {
		return 1
	}
	return 0
}

// Variants lists concrete candidates in palette order, blank last.
func (c BinaryColor) Variants() []BinaryColor {
	if c.IsSolved() {
		return []BinaryColor{c}
	}
	return []BinaryColor{Black, White}
}

func (c BinaryColor) CanBe(o BinaryColor) bool { return c.mask()&o.mask() != 0 }

func (c BinaryColor) CanBeBlank() bool { return c.mask()&maskWhite != 0 }

// Union accumulates placement outcomes; Undefined (the zero value) is the
// identity element.
func (c BinaryColor) Union(o BinaryColor) BinaryColor {
	switch {
	case c == Undefined:
		return o
	case c == o:
		return c
	default:
		return BlackOrWhite
	}
}

func (c BinaryColor) Normalize() BinaryColor {
	if c == BlackOrWhite {
		return Undefined
	}
	return c
}

func (c BinaryColor) Minus(o BinaryColor) (BinaryColor, error) {
	if c.IsSolved() {
		return c, fmt.Errorf("cannot unset %v from already solved cell %v", o, c)
	}
	rest := c.mask() &^ o.mask()
	if rest == 0 {
		return c, fmt.Errorf("cannot unset %v from %v: nothing would remain", o, c)
	}
	return binaryFromMask(rest), nil
}

func (c BinaryColor) RefineWith(n BinaryColor) (bool, error) {
	oldMask, newMask := c.mask(), n.mask()
	if newMask == oldMask {
		return false, nil
	}
	if newMask&^oldMask != 0 {
		return false, fmt.Errorf("update %v -> %v would re-broaden the cell", c, n)
	}
	return true, nil
}

func (c BinaryColor) State() CellState { return c.mask() }

func (c BinaryColor) AsID() (ColorID, bool) {
	switch c {
	case White:
		return 0, true
	case Black:
		return 1, true
	default:
		return 0, false
	}
}

func (c BinaryColor) FromID(id ColorID) BinaryColor {
	if id == 0 {
		return White
	}
	return Black
}

func (c BinaryColor) String() string {
	switch c {
	case White:
		return "."
	case Black:
		return "X"
	default:
		return "?"
	}
}
