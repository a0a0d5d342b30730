// Package generator derives clue descriptions from solution grids, the
// reverse of solving. It backs the randomized round-trip tests and any
// caller that wants puzzles from pictures.
package generator

import (
	"fmt"
	"math/rand"

	"svw.info/nonogram/internal/domain"
)

// ClueGenerator builds normalized puzzles out of complete grids.
type ClueGenerator struct{}

func New() *ClueGenerator { return &ClueGenerator{} }

// FromGrid derives row and column descriptions from a solved grid of color
// ids. A nil palette means a binary puzzle (ids 0 and 1 only).
func (g *ClueGenerator) FromGrid(grid domain.Grid, palette *domain.Palette) (*domain.Puzzle, error) {
	height := len(grid)
	if height == 0 {
		return nil, fmt.Errorf("%w: empty grid", domain.ErrMalformedPuzzle)
	}
	width := len(grid[0])
	for i, row := range grid {
		if len(row) != width {
			return nil, fmt.Errorf("%w: jagged grid at row %d", domain.ErrMalformedPuzzle, i)
		}
		for j, id := range row {
			if palette == nil && id > 1 {
				return nil, fmt.Errorf("%w: color %d in binary grid at (%d,%d)", domain.ErrMalformedPuzzle, id, i, j)
			}
			if palette != nil && !palette.Has(id) {
				return nil, fmt.Errorf("%w: color %d not in palette at (%d,%d)", domain.ErrMalformedPuzzle, id, i, j)
			}
		}
	}

	p := &domain.Puzzle{
		Width:   width,
		Height:  height,
		Palette: palette,
		Rows:    make([][]domain.Clue, height),
		Cols:    make([][]domain.Clue, width),
	}
	for i, row := range grid {
		p.Rows[i] = lineClues(row)
	}
	for j := 0; j < width; j++ {
		col := make([]domain.ColorID, height)
		for i := 0; i < height; i++ {
			col[i] = grid[i][j]
		}
		p.Cols[j] = lineClues(col)
	}
	return p, nil
}

// Random draws a random binary grid and derives its clues. The same seed
// always produces the same puzzle.
func (g *ClueGenerator) Random(seed int64, width, height int) (*domain.Puzzle, domain.Grid) {
	rng := rand.New(rand.NewSource(seed))
	grid := make(domain.Grid, height)
	for i := range grid {
		grid[i] = make([]domain.ColorID, width)
		for j := range grid[i] {
			if rng.Intn(2) == 1 {
				grid[i][j] = 1
			}
		}
	}
	p, err := g.FromGrid(grid, nil)
	if err != nil {
		// a freshly drawn binary grid is always well-formed
		panic(err)
	}
	return p, grid
}

// lineClues collects the maximal runs of identical nonblank colors.
func lineClues(line []domain.ColorID) []domain.Clue {
	var clues []domain.Clue
	i := 0
	for i < len(line) {
		id := line[i]
		start := i
		for i < len(line) && line[i] == id {
			i++
		}
		if id != 0 {
			clues = append(clues, domain.Clue{Size: i - start, Color: id})
		}
	}
	return clues
}
