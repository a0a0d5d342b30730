// Package sat is the complete finisher: it translates the remaining block
// placement freedom into CNF and enumerates models with gophersat, adding a
// blocking clause per found solution.
package sat

import (
	"sort"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
)

// amoPairwiseMax bounds the pairwise at-most-one encoding; longer variable
// lists switch to the sequential (Sinz) encoding to keep clause counts
// quadratic-free.
const amoPairwiseMax = 8

// position is one feasible placement of one block: variable v is true iff
// the block occupies [start, start+size).
type position struct {
	v           int
	start, size int
}

func (p position) end() int { return p.start + p.size }

func (p position) covers(k int) bool { return k >= p.start && k < p.end() }

// blockVars holds all placement variables of one block.
type blockVars struct {
	colorID   domain.ColorID
	positions []position
}

// lineVars is one line's blocks; nil for lines that were already fully
// solved and need no placement variables.
type lineVars []blockVars

type encoder[C domain.Color[C]] struct {
	board *board.Board[C]

	nextVar  int
	rowVars  []lineVars
	colVars  []lineVars
	colorIDs []domain.ColorID
	// cellVars[i][j][k] is the variable for "cell (i,j) has colorIDs[k]";
	// a cell is blank iff none of its color variables is true.
	cellVars [][][]int

	clauses [][]int
}

func newEncoder[C domain.Color[C]](b *board.Board[C]) *encoder[C] {
	e := &encoder[C]{board: b}
	e.colorIDs = blockColorIDs(b)

	e.rowVars = make([]lineVars, b.Height())
	for i := range e.rowVars {
		e.rowVars[i] = e.lineVars(domain.LineJob{Index: i}, b.Width())
	}
	e.colVars = make([]lineVars, b.Width())
	for j := range e.colVars {
		e.colVars[j] = e.lineVars(domain.LineJob{Column: true, Index: j}, b.Height())
	}

	e.cellVars = make([][][]int, b.Height())
	for i := range e.cellVars {
		e.cellVars[i] = make([][]int, b.Width())
		for j := range e.cellVars[i] {
			vars := make([]int, len(e.colorIDs))
			for k := range vars {
				vars[k] = e.newVar()
			}
			e.cellVars[i][j] = vars
		}
	}

	e.buildClauses()
	return e
}

func (e *encoder[C]) newVar() int {
	e.nextVar++
	return e.nextVar
}

// blockColorIDs collects the distinct clue colors across the whole puzzle,
// sorted by id for determinism.
func blockColorIDs[C domain.Color[C]](b *board.Board[C]) []domain.ColorID {
	seen := make(map[domain.ColorID]struct{})
	for i := 0; i < b.Height(); i++ {
		for _, block := range b.RowDesc(i).Blocks {
			if id, ok := block.Color.AsID(); ok {
				seen[id] = struct{}{}
			}
		}
	}
	for j := 0; j < b.Width(); j++ {
		for _, block := range b.ColDesc(j).Blocks {
			if id, ok := block.Color.AsID(); ok {
				seen[id] = struct{}{}
			}
		}
	}
	ids := make([]domain.ColorID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// lineVars allocates placement variables for one line. Fully solved lines
// are skipped: their cells are pinned by seed clauses alone.
func (e *encoder[C]) lineVars(job domain.LineJob, length int) lineVars {
	if e.board.IsLineSolved(job) {
		return nil
	}
	desc := e.board.LineDesc(job)
	starts := desc.BlockStarts()
	slack := length - desc.MinLength()

	out := make(lineVars, len(desc.Blocks))
	for bi, block := range desc.Blocks {
		id, _ := block.Color.AsID()
		bv := blockVars{colorID: id, positions: make([]position, 0, slack+1)}
		for off := 0; off <= slack; off++ {
			bv.positions = append(bv.positions, position{
				v:     e.newVar(),
				start: starts[bi] + off,
				size:  block.Size,
			})
		}
		out[bi] = bv
	}
	return out
}

func (e *encoder[C]) add(clause ...int) {
	e.clauses = append(e.clauses, clause)
}

func (e *encoder[C]) buildClauses() {
	for _, side := range [][]lineVars{e.rowVars, e.colVars} {
		for _, line := range side {
			e.lineClauses(line)
		}
	}
	for i := 0; i < e.board.Height(); i++ {
		for j := 0; j < e.board.Width(); j++ {
			e.cellClauses(domain.Point{Row: i, Col: j})
		}
	}
	e.seedClauses()
}

// lineClauses pins down each block of a line: placed at least and at most
// once, and block pairs neither overlap nor break their clue order.
func (e *encoder[C]) lineClauses(line lineVars) {
	for _, bv := range line {
		alo := make([]int, len(bv.positions))
		for k, pos := range bv.positions {
			alo[k] = pos.v
		}
		e.add(alo...)
		e.amo(alo)
	}
	for b1 := 0; b1 < len(line); b1++ {
		for b2 := b1 + 1; b2 < len(line); b2++ {
			sameColor := line[b1].colorID == line[b2].colorID
			for _, p1 := range line[b1].positions {
				for _, p2 := range line[b2].positions {
					conflict := p1.end() > p2.start
					if sameColor {
						// same-color neighbours need a separating blank
						conflict = p1.end() >= p2.start
					}
					if conflict {
						e.add(-p1.v, -p2.v)
					}
				}
			}
		}
	}
}

// amo emits at-most-one over vars: pairwise when short, sequential
// counter encoding when long.
func (e *encoder[C]) amo(vars []int) {
	if len(vars) <= amoPairwiseMax {
		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				e.add(-vars[i], -vars[j])
			}
		}
		return
	}
	// s_i means "one of vars[0..i] is already true"
	aux := make([]int, len(vars)-1)
	for i := range aux {
		aux[i] = e.newVar()
	}
	e.add(-vars[0], aux[0])
	for i := 1; i < len(vars)-1; i++ {
		e.add(-vars[i], aux[i])
		e.add(-aux[i-1], aux[i])
		e.add(-vars[i], -aux[i-1])
	}
	e.add(-vars[len(vars)-1], -aux[len(aux)-1])
}

// cellClauses ties cell color variables to the placements that can cover
// the cell, and makes the cell's colors mutually exclusive.
func (e *encoder[C]) cellClauses(p domain.Point) {
	vars := e.cellVars[p.Row][p.Col]
	for k, id := range e.colorIDs {
		y := vars[k]
		rowCover := coveringVars(e.rowVars[p.Row], id, p.Col)
		colCover := coveringVars(e.colVars[p.Col], id, p.Row)

		// support: a colored cell lies inside some covering placement
		if e.rowVars[p.Row] != nil {
			e.add(append(rowCover, -y)...)
		}
		if e.colVars[p.Col] != nil {
			e.add(append(colCover, -y)...)
		}
		// conflict: a placement covering the cell colors it
		for _, x := range rowCover {
			e.add(-x, y)
		}
		for _, x := range colCover {
			e.add(-x, y)
		}
	}
	e.amo(vars)
}

func coveringVars(line lineVars, id domain.ColorID, k int) []int {
	var out []int
	for _, bv := range line {
		if bv.colorID != id {
			continue
		}
		for _, pos := range bv.positions {
			if pos.covers(k) {
				out = append(out, pos.v)
			}
		}
	}
	return out
}

// seedClauses pins everything prior propagation already decided.
func (e *encoder[C]) seedClauses() {
	for i := 0; i < e.board.Height(); i++ {
		for j := 0; j < e.board.Width(); j++ {
			cell := e.board.Cell(domain.Point{Row: i, Col: j})
			vars := e.cellVars[i][j]
			if cell.IsSolved() {
				id, _ := cell.AsID()
				for k, cid := range e.colorIDs {
					if cid == id {
						e.add(vars[k])
					} else {
						e.add(-vars[k])
					}
				}
				continue
			}
			// exclude the colors probing has already ruled out
			state := cell.State()
			for k, cid := range e.colorIDs {
				if state&(1<<cid) == 0 {
					e.add(-vars[k])
				}
			}
			if !cell.CanBeBlank() {
				alo := make([]int, len(vars))
				copy(alo, vars)
				e.add(alo...)
			}
		}
	}
}
