// Package solver is the engine tying the layers together: propagation
// first, then probing, then the configured finisher, collecting solutions
// and emitting cell-change events along the way.
package solver

import (
	"fmt"
	"log/slog"
	"time"

	"svw.info/nonogram/internal/board"
)

// Finisher selects the full-search strategy used when logic stalls.
type Finisher int

const (
	// Backtracking is the depth-first search guided by probing impact.
	Backtracking Finisher = iota
	// SAT translates the remaining freedom into CNF and enumerates
	// models with gophersat.
	SAT
)

// ParseFinisher maps a flag value onto a Finisher.
func ParseFinisher(s string) (Finisher, error) {
	switch s {
	case "", "backtracking", "backtrack":
		return Backtracking, nil
	case "sat":
		return SAT, nil
	default:
		return 0, fmt.Errorf("unknown finisher %q", s)
	}
}

func (f Finisher) String() string {
	if f == SAT {
		return "sat"
	}
	return "backtracking"
}

// Options configures one solver invocation.
type Options struct {
	// MaxSolutions stops the search after this many distinct solutions.
	MaxSolutions int
	// Timeout bounds the whole solve; zero means unlimited.
	Timeout time.Duration
	// LowPriorityThreshold skips probes on cells ranked below it.
	LowPriorityThreshold float64
	// Finisher picks the full-search strategy.
	Finisher Finisher
	// LineCacheCapacity bounds the LRU line-result cache.
	LineCacheCapacity int
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Observer, when set, receives every cell narrowing synchronously.
	// It must not re-enter the solver.
	Observer board.Observer
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxSolutions:      2,
		LineCacheCapacity: 100_000,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxSolutions <= 0 {
		o.MaxSolutions = 2
	}
	if o.LineCacheCapacity <= 0 {
		o.LineCacheCapacity = 100_000
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
