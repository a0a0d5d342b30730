package domain

import "fmt"

// Status classifies the outcome of one solver invocation.
type Status int

const (
	// Unsolvable means no full assignment satisfies the puzzle.
	Unsolvable Status = iota
	// Unique means exactly one solution exists and was found.
	Unique
	// Multiple means at least the reported number of solutions exist.
	Multiple
	// TimedOut means the deadline expired; the solutions found so far
	// are still valid.
	TimedOut
)

// Grid is one complete solution: an H by W matrix of concrete color ids
// (0 is blank; for binary puzzles 1 is black).
type Grid [][]ColorID

// Equal reports cell-wise equality.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Result is the ordered list of solutions found plus the final status.
type Result struct {
	Status    Status
	Solutions []Grid
}

func (r *Result) String() string {
	switch r.Status {
	case Unique:
		return "Unique"
	case Multiple:
		return fmt.Sprintf("Multiple(%d)", len(r.Solutions))
	case TimedOut:
		return fmt.Sprintf("TimedOut(%d)", len(r.Solutions))
	default:
		return "Unsolvable"
	}
}
