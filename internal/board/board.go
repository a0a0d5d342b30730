// Package board holds the mutable cell grid shared by every solving layer.
// The grid only ever narrows: all writes go through the cells' refinement
// relation, so an invalid update is reported instead of applied.
package board

import (
	"fmt"
	"strconv"
	"strings"

	"svw.info/nonogram/internal/domain"
)

// Observer receives one event per cell narrowing, synchronously on the
// solver's thread. Observers must not re-enter the solver.
type Observer func(p domain.Point, before, after domain.CellState)

// Board is the H x W cell grid plus its row and column descriptions.
type Board[C domain.Color[C]] struct {
	width, height int
	rows, cols    []domain.Description[C]
	cells         []C
	full          C

	observers []Observer
	snapDepth int
}

// New creates a board with every cell set to the full possibility set.
func New[C domain.Color[C]](rows, cols []domain.Description[C], full C) *Board[C] {
	b := &Board[C]{
		width:  len(cols),
		height: len(rows),
		rows:   rows,
		cols:   cols,
		full:   full,
	}
	b.cells = make([]C, b.width*b.height)
	for i := range b.cells {
		b.cells[i] = full
	}
	return b
}

func (b *Board[C]) Width() int  { return b.width }
func (b *Board[C]) Height() int { return b.height }

// Full returns the initial (completely unsolved) cell value.
func (b *Board[C]) Full() C { return b.full }

// RowDesc returns the description of row i.
func (b *Board[C]) RowDesc(i int) domain.Description[C] { return b.rows[i] }

// ColDesc returns the description of column j.
func (b *Board[C]) ColDesc(j int) domain.Description[C] { return b.cols[j] }

// LineDesc returns the description for a line job.
func (b *Board[C]) LineDesc(j domain.LineJob) domain.Description[C] {
	if j.Column {
		return b.cols[j.Index]
	}
	return b.rows[j.Index]
}

// Subscribe registers an observer for cell-narrowing events.
func (b *Board[C]) Subscribe(o Observer) {
	b.observers = append(b.observers, o)
}

func (b *Board[C]) notify(p domain.Point, before, after C) {
	for _, o := range b.observers {
		o(p, before.State(), after.State())
	}
}

func (b *Board[C]) idx(p domain.Point) int { return p.Row*b.width + p.Col }

// Cell returns the current possibility set at p.
func (b *Board[C]) Cell(p domain.Point) C { return b.cells[b.idx(p)] }

// GetRow copies out row i.
func (b *Board[C]) GetRow(i int) []C {
	out := make([]C, b.width)
	copy(out, b.cells[i*b.width:(i+1)*b.width])
	return out
}

// GetCol copies out column j.
func (b *Board[C]) GetCol(j int) []C {
	out := make([]C, b.height)
	for i := 0; i < b.height; i++ {
		out[i] = b.cells[i*b.width+j]
	}
	return out
}

// GetLine copies out the line addressed by the job.
func (b *Board[C]) GetLine(j domain.LineJob) []C {
	if j.Column {
		return b.GetCol(j.Index)
	}
	return b.GetRow(j.Index)
}

// SetRow refines row i with values and returns the indices that changed.
// Any cell that would be broadened fails the whole write.
func (b *Board[C]) SetRow(i int, values []C) ([]int, error) {
	return b.setLine(domain.LineJob{Index: i}, values)
}

// SetCol refines column j with values and returns the indices that changed.
func (b *Board[C]) SetCol(j int, values []C) ([]int, error) {
	return b.setLine(domain.LineJob{Column: true, Index: j}, values)
}

// SetLine dispatches to SetRow or SetCol.
func (b *Board[C]) SetLine(j domain.LineJob, values []C) ([]int, error) {
	return b.setLine(j, values)
}

func (b *Board[C]) setLine(job domain.LineJob, values []C) ([]int, error) {
	length := b.width
	if job.Column {
		length = b.height
	}
	if len(values) != length {
		return nil, fmt.Errorf("line length mismatch: got %d, want %d", len(values), length)
	}

	// validate the whole write before mutating anything
	changed := make([]int, 0, 4)
	for k, v := range values {
		p := job2point(job, k)
		diff, err := b.Cell(p).RefineWith(v)
		if err != nil {
			return nil, fmt.Errorf("%s cell %d: %w", job, k, err)
		}
		if diff {
			changed = append(changed, k)
		}
	}
	for _, k := range changed {
		p := job2point(job, k)
		before := b.cells[b.idx(p)]
		b.cells[b.idx(p)] = values[k]
		b.notify(p, before, values[k])
	}
	return changed, nil
}

func job2point(job domain.LineJob, k int) domain.Point {
	if job.Column {
		return domain.Point{Row: k, Col: job.Index}
	}
	return domain.Point{Row: job.Index, Col: k}
}

// SetColor narrows the cell at p to c.
func (b *Board[C]) SetColor(p domain.Point, c C) error {
	before := b.Cell(p)
	diff, err := before.RefineWith(c)
	if err != nil {
		return err
	}
	if diff {
		b.cells[b.idx(p)] = c
		b.notify(p, before, c)
	}
	return nil
}

// UnsetColor removes c from the possibility set at p. It fails when c was
// the only remaining value.
func (b *Board[C]) UnsetColor(p domain.Point, c C) error {
	before := b.Cell(p)
	after, err := before.Minus(c)
	if err != nil {
		return fmt.Errorf("%w: %v at %v", domain.ErrInfeasible, err, p)
	}
	b.cells[b.idx(p)] = after
	b.notify(p, before, after)
	return nil
}

// IsSolvedFull reports whether every cell holds a concrete color.
func (b *Board[C]) IsSolvedFull() bool {
	for _, c := range b.cells {
		if !c.IsSolved() {
			return false
		}
	}
	return true
}

// SolutionRate is the average cell solution rate over the whole grid.
func (b *Board[C]) SolutionRate() float64 {
	if len(b.cells) == 0 {
		return 1
	}
	sum := 0.0
	for _, c := range b.cells {
		sum += c.SolutionRate(b.full)
	}
	return sum / float64(len(b.cells))
}

// RowSolutionRate is the solved fraction of row i.
func (b *Board[C]) RowSolutionRate(i int) float64 {
	return lineRate(b.cells[i*b.width:(i+1)*b.width], b.full)
}

// ColSolutionRate is the solved fraction of column j.
func (b *Board[C]) ColSolutionRate(j int) float64 {
	sum := 0.0
	for i := 0; i < b.height; i++ {
		sum += b.cells[i*b.width+j].SolutionRate(b.full)
	}
	return sum / float64(b.height)
}

// IsLineSolved reports whether every cell of the line is concrete.
func (b *Board[C]) IsLineSolved(j domain.LineJob) bool {
	for _, c := range b.GetLine(j) {
		if !c.IsSolved() {
			return false
		}
	}
	return true
}

func lineRate[C domain.Color[C]](cells []C, full C) float64 {
	if len(cells) == 0 {
		return 1
	}
	sum := 0.0
	for _, c := range cells {
		sum += c.SolutionRate(full)
	}
	return sum / float64(len(cells))
}

// UnsolvedCells lists every non-concrete cell in row-major order.
func (b *Board[C]) UnsolvedCells() []domain.Point {
	var out []domain.Point
	for i := 0; i < b.height; i++ {
		for j := 0; j < b.width; j++ {
			if !b.cells[i*b.width+j].IsSolved() {
				out = append(out, domain.Point{Row: i, Col: j})
			}
		}
	}
	return out
}

// Neighbours returns the up-to-4 orthogonal neighbours of p.
func (b *Board[C]) Neighbours(p domain.Point) []domain.Point {
	out := make([]domain.Point, 0, 4)
	if p.Row > 0 {
		out = append(out, domain.Point{Row: p.Row - 1, Col: p.Col})
	}
	if p.Row < b.height-1 {
		out = append(out, domain.Point{Row: p.Row + 1, Col: p.Col})
	}
	if p.Col > 0 {
		out = append(out, domain.Point{Row: p.Row, Col: p.Col - 1})
	}
	if p.Col < b.width-1 {
		out = append(out, domain.Point{Row: p.Row, Col: p.Col + 1})
	}
	return out
}

// UnsolvedNeighbours filters Neighbours down to non-concrete cells.
func (b *Board[C]) UnsolvedNeighbours(p domain.Point) []domain.Point {
	var out []domain.Point
	for _, n := range b.Neighbours(p) {
		if !b.Cell(n).IsSolved() {
			out = append(out, n)
		}
	}
	return out
}

// Cells copies out the whole grid in row-major order.
func (b *Board[C]) Cells() []C {
	out := make([]C, len(b.cells))
	copy(out, b.cells)
	return out
}

// Key is a content encoding of the grid, used for solution de-duplication.
func (b *Board[C]) Key() string {
	return CellsKey(b.cells)
}

// CellsKey encodes any cell sequence the same way Key does.
func CellsKey[C domain.Color[C]](cells []C) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteString(strconv.FormatUint(uint64(c.State()), 16))
		sb.WriteByte('.')
	}
	return sb.String()
}

// Grid converts the (fully solved) board into a matrix of color ids.
func (b *Board[C]) Grid() (domain.Grid, error) {
	return CellsGrid(b.cells, b.height, b.width)
}

// CellsGrid converts a row-major solved cell slice into a color-id matrix.
func CellsGrid[C domain.Color[C]](cells []C, height, width int) (domain.Grid, error) {
	g := make(domain.Grid, height)
	for i := 0; i < height; i++ {
		g[i] = make([]domain.ColorID, width)
		for j := 0; j < width; j++ {
			id, ok := cells[i*width+j].AsID()
			if !ok {
				return nil, fmt.Errorf("cell (%d,%d) is not solved", i, j)
			}
			g[i][j] = id
		}
	}
	return g, nil
}
