package domain

import "fmt"

// Clue is one block of a normalized puzzle description. Color is a palette
// id for colored puzzles; binary ones accept only 0 or 1 and read either as
// black.
type Clue struct {
	Size  int     `json:"size"`
	Color ColorID `json:"color,omitempty"`
}

// Puzzle is the normalized puzzle value the core consumes: dimensions,
// an optional palette (absent means black-and-white) and per-line clues.
// Parsing puzzle files into this shape is someone else's job.
type Puzzle struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Palette *Palette `json:"-"`
	Rows    [][]Clue `json:"rows"`
	Cols    [][]Clue `json:"cols"`
}

// Colored reports whether the puzzle uses a multi-color palette.
func (p *Puzzle) Colored() bool { return p.Palette != nil }

// Validate checks the descriptions against the dimensions and the palette.
// It runs exactly once, at board construction; afterwards the refinement
// operator preserves all invariants.
func (p *Puzzle) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: non-positive dimensions %dx%d", ErrMalformedPuzzle, p.Width, p.Height)
	}
	if len(p.Rows) != p.Height {
		return fmt.Errorf("%w: %d row descriptions for height %d", ErrMalformedPuzzle, len(p.Rows), p.Height)
	}
	if len(p.Cols) != p.Width {
		return fmt.Errorf("%w: %d column descriptions for width %d", ErrMalformedPuzzle, len(p.Cols), p.Width)
	}
	for i, clues := range p.Rows {
		if err := p.validateLine(clues, p.Width); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	for j, clues := range p.Cols {
		if err := p.validateLine(clues, p.Height); err != nil {
			return fmt.Errorf("column %d: %w", j, err)
		}
	}
	return nil
}

func (p *Puzzle) validateLine(clues []Clue, length int) error {
	need := 0
	for i, c := range clues {
		if c.Size < 1 {
			return fmt.Errorf("%w: block size %d", ErrMalformedPuzzle, c.Size)
		}
		if p.Colored() {
			if c.Color == 0 || !p.Palette.Has(c.Color) {
				return fmt.Errorf("%w: block color %d not in palette", ErrMalformedPuzzle, c.Color)
			}
		} else if c.Color > 1 {
			return fmt.Errorf("%w: color %d in a binary puzzle", ErrMalformedPuzzle, c.Color)
		}
		need += c.Size
		if i > 0 && sameClueColor(clues[i-1], c, p.Colored()) {
			need++
		}
	}
	if need > length {
		return fmt.Errorf("%w: blocks need %d cells, line has %d", ErrMalformedPuzzle, need, length)
	}
	return nil
}

func sameClueColor(a, b Clue, colored bool) bool {
	if !colored {
		return true
	}
	return a.Color == b.Color
}

// BinaryDescriptions converts one side's clues for a binary board.
func BinaryDescriptions(clues [][]Clue) []Description[BinaryColor] {
	out := make([]Description[BinaryColor], len(clues))
	for i, line := range clues {
		blocks := make([]Block[BinaryColor], len(line))
		for k, c := range line {
			blocks[k] = Block[BinaryColor]{Size: c.Size, Color: Black}
		}
		out[i] = NewDescription(blocks...)
	}
	return out
}

// ColoredDescriptions converts one side's clues for a colored board.
func ColoredDescriptions(clues [][]Clue) []Description[ColorSet] {
	out := make([]Description[ColorSet], len(clues))
	for i, line := range clues {
		blocks := make([]Block[ColorSet], len(line))
		for k, c := range line {
			blocks[k] = Block[ColorSet]{Size: c.Size, Color: SetOf(c.Color)}
		}
		out[i] = NewDescription(blocks...)
	}
	return out
}
