// Package line deduces everything a single row or column's clues force.
//
// The solver runs a dynamic program over (position in line, blocks placed so
// far). A memoized backward pass decides reachability of the terminal state;
// along every feasible transition the touched cells accumulate the colors
// they can take, so the output cell is the union of that cell's value over
// all valid placements.
package line

import (
	"fmt"

	"svw.info/nonogram/internal/domain"
)

// Solve narrows line against desc. It returns a refined copy of the same
// length, or domain.ErrInfeasible when no placement exists. The input slice
// is never mutated.
func Solve[C domain.Color[C]](desc domain.Description[C], line []C) ([]C, error) {
	s := newSolver(desc, line)
	if !s.run() {
		return nil, fmt.Errorf("%w: no placement for %d blocks in line of %d", domain.ErrInfeasible, len(desc.Blocks), len(line))
	}
	for i := range s.solved {
		s.solved[i] = s.solved[i].Normalize()
	}
	return s.solved, nil
}

type solver[C domain.Color[C]] struct {
	desc domain.Description[C]
	line []C

	// blockSums[k] is the minimal 0-based index at which the k-th block
	// can end; blockSums[0] = 0 guards the "no blocks yet" state.
	blockSums []int
	jobSize   int
	memo      []int8 // -1 unknown, 0 infeasible, 1 feasible
	solved    []C
}

func newSolver[C domain.Color[C]](desc domain.Description[C], line []C) *solver[C] {
	sums := desc.PartialSums()
	blockSums := make([]int, len(sums)+1)
	for i, s := range sums {
		blockSums[i+1] = s - 1
	}

	jobSize := len(desc.Blocks) + 1
	memo := make([]int8, jobSize*len(line))
	for i := range memo {
		memo[i] = -1
	}

	return &solver[C]{
		desc:      desc,
		line:      line,
		blockSums: blockSums,
		jobSize:   jobSize,
		memo:      memo,
		solved:    make([]C, len(line)),
	}
}

func (s *solver[C]) run() bool {
	if len(s.line) == 0 {
		return true
	}
	return s.feasible(len(s.line)-1, len(s.desc.Blocks))
}

// feasible reports whether the first `block` blocks fit into line[0..pos].
func (s *solver[C]) feasible(pos, block int) bool {
	if pos < 0 {
		// ran off the left edge; fine only when nothing is left to place
		return block == 0
	}
	if v := s.memo[pos*s.jobSize+block]; v >= 0 {
		return v == 1
	}
	ok := s.fill(pos, block)
	if ok {
		s.memo[pos*s.jobSize+block] = 1
	} else {
		s.memo[pos*s.jobSize+block] = 0
	}
	return ok
}

func (s *solver[C]) fill(pos, block int) bool {
	if pos < s.blockSums[block] {
		// not enough room on the left for the remaining blocks
		return false
	}
	// both branches must run: each feasible one contributes cell colors
	blank := s.fillBlank(pos, block)
	color := s.fillColor(pos, block)
	return blank || color
}

// fillBlank tries to leave cell pos blank.
func (s *solver[C]) fillBlank(pos, block int) bool {
	if !s.line[pos].CanBeBlank() {
		return false
	}
	if !s.feasible(pos-1, block) {
		return false
	}
	var zero C
	s.solved[pos] = s.solved[pos].Union(zero.Blank())
	return true
}

// fillColor tries to end the current block exactly at cell pos.
func (s *solver[C]) fillColor(pos, block int) bool {
	if block == 0 {
		return false
	}
	b := s.desc.Blocks[block-1]
	size := b.Size
	trailing := s.trailWithSpace(block)
	if trailing {
		size++
	}
	start := pos - size + 1
	if !s.canPlace(start, pos, b.Color, trailing) {
		return false
	}
	if !s.feasible(start-1, block-1) {
		return false
	}
	s.placeBlock(start, pos, b.Color, trailing)
	return true
}

// trailWithSpace reports whether block must be followed by a blank because
// the next block has the same color.
func (s *solver[C]) trailWithSpace(block int) bool {
	if block < len(s.desc.Blocks) {
		return s.desc.Blocks[block-1].Color == s.desc.Blocks[block].Color
	}
	return false
}

func (s *solver[C]) canPlace(start, end int, color C, trailing bool) bool {
	if start < 0 {
		return false
	}
	if trailing {
		if !s.line[end].CanBeBlank() {
			return false
		}
	} else {
		end++
	}
	for i := start; i < end; i++ {
		if !s.line[i].CanBe(color) {
			return false
		}
	}
	return true
}

func (s *solver[C]) placeBlock(start, end int, color C, trailing bool) {
	if trailing {
		var zero C
		s.solved[end] = s.solved[end].Union(zero.Blank())
	} else {
		end++
	}
	for i := start; i < end; i++ {
		s.solved[i] = s.solved[i].Union(color)
	}
}
