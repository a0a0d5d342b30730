package domain

import (
	"strconv"
	"strings"
)

// Block is one clue item: a run of Size identically-colored cells. Color is
// always a solved value (Black for binary puzzles, a single-id set for
// colored ones).
type Block[C Color[C]] struct {
	Size  int
	Color C
}

// Description is the ordered clue sequence of one row or column. An empty
// description means the whole line is blank.
type Description[C Color[C]] struct {
	Blocks []Block[C]
}

// NewDescription builds a description, dropping zero-sized blocks.
func NewDescription[C Color[C]](blocks ...Block[C]) Description[C] {
	kept := make([]Block[C], 0, len(blocks))
	for _, b := range blocks {
		if b.Size > 0 {
			kept = append(kept, b)
		}
	}
	return Description[C]{Blocks: kept}
}

// PartialSums returns, for each block, the minimal 1-based end position of
// that block when everything is packed to the left. Two adjacent blocks of
// the same color need a separating blank; different colors may abut.
func (d Description[C]) PartialSums() []int {
	sums := make([]int, len(d.Blocks))
	for i, b := range d.Blocks {
		if i == 0 {
			sums[i] = b.Size
			continue
		}
		sums[i] = sums[i-1] + b.Size
		if d.Blocks[i-1].Color == b.Color {
			sums[i]++
		}
	}
	return sums
}

// MinLength is the shortest line this description fits into.
func (d Description[C]) MinLength() int {
	sums := d.PartialSums()
	if len(sums) == 0 {
		return 0
	}
	return sums[len(sums)-1]
}

// BlockStarts returns the 0-based earliest start of each block.
func (d Description[C]) BlockStarts() []int {
	sums := d.PartialSums()
	starts := make([]int, len(sums))
	for i, s := range sums {
		starts[i] = s - d.Blocks[i].Size
	}
	return starts
}

// Colors returns the distinct block colors in first-appearance order.
func (d Description[C]) Colors() []C {
	seen := make(map[C]struct{}, 2)
	var out []C
	for _, b := range d.Blocks {
		if _, ok := seen[b.Color]; !ok {
			seen[b.Color] = struct{}{}
			out = append(out, b.Color)
		}
	}
	return out
}

// Key is a compact content encoding used for line-cache keys.
func (d Description[C]) Key() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(b.Size))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(uint64(b.Color.State()), 16))
	}
	return sb.String()
}
