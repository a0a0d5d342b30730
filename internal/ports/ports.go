package ports

import (
	"context"
	"time"

	"svw.info/nonogram/internal/domain"
)

// Stats captures performance characteristics of one solve.
type Stats struct {
	LinesSolved   int
	Probes        int
	SearchNodes   int
	SATIterations int
	CacheHits     int
	CacheMisses   int
	Duration      time.Duration
}

// Solver solves a normalized puzzle.
type Solver interface {
	Solve(ctx context.Context, p *domain.Puzzle) (*domain.Result, Stats, error)
}

// Generator derives puzzles from solution grids.
type Generator interface {
	FromGrid(grid domain.Grid, palette *domain.Palette) (*domain.Puzzle, error)
	Random(seed int64, width, height int) (*domain.Puzzle, domain.Grid)
}

// Validator checks a complete grid against a puzzle's clues.
type Validator interface {
	Check(p *domain.Puzzle, g domain.Grid) (bool, []domain.LineJob, error)
}

// SolutionSink receives complete board assignments found by the finishers
// and by probing. Add reports whether the grid was new; Full reports the
// configured solution cap has been reached.
type SolutionSink[C domain.Color[C]] interface {
	Add(cells []C) bool
	Full() bool
}
