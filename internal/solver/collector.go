package solver

import (
	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
)

// collector accumulates distinct complete assignments, in discovery order,
// up to the configured cap. Deduplication is by grid equality.
type collector[C domain.Color[C]] struct {
	max   int
	seen  map[string]struct{}
	grids [][]C
}

func newCollector[C domain.Color[C]](max int) *collector[C] {
	return &collector[C]{max: max, seen: make(map[string]struct{})}
}

// Add records a full assignment unless it is a duplicate or the cap is
// reached. The slice is copied.
func (c *collector[C]) Add(cells []C) bool {
	if c.Full() {
		return false
	}
	key := board.CellsKey(cells)
	if _, dup := c.seen[key]; dup {
		return false
	}
	c.seen[key] = struct{}{}
	grid := make([]C, len(cells))
	copy(grid, cells)
	c.grids = append(c.grids, grid)
	return true
}

func (c *collector[C]) Full() bool { return len(c.grids) >= c.max }

func (c *collector[C]) Count() int { return len(c.grids) }

// Grids converts the collected assignments to color-id matrices.
func (c *collector[C]) Grids(height, width int) ([]domain.Grid, error) {
	out := make([]domain.Grid, 0, len(c.grids))
	for _, cells := range c.grids {
		g, err := board.CellsGrid(cells, height, width)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
