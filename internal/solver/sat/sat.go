package sat

import (
	"context"
	"log/slog"

	gsat "github.com/crillab/gophersat/solver"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/ports"
)

// Finisher enumerates the remaining solutions of a propagated board with a
// CDCL SAT solver.
type Finisher[C domain.Color[C]] struct {
	board     *board.Board[C]
	collector ports.SolutionSink[C]
	logger    *slog.Logger

	// Iterations counts solver invocations (one per model or final UNSAT).
	Iterations int
	// TimedOut is set when the deadline expired between iterations.
	TimedOut bool
	// Exhausted is set when the final call returned UNSAT, proving no
	// further solutions exist.
	Exhausted bool
}

// New creates a SAT finisher feeding the given collector.
func New[C domain.Color[C]](b *board.Board[C], collector ports.SolutionSink[C], logger *slog.Logger) *Finisher[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finisher[C]{board: b, collector: collector, logger: logger}
}

// Run encodes the board once and iterates the solver, blocking each found
// assignment of cell variables, until the collector fills, the formula goes
// UNSAT, or the deadline expires.
func (f *Finisher[C]) Run(ctx context.Context) error {
	enc := newEncoder(f.board)
	clauses := enc.clauses
	f.logger.Debug("sat model built", "vars", enc.nextVar, "clauses", len(clauses))

	for !f.collector.Full() {
		if ctx.Err() != nil {
			f.TimedOut = true
			return nil
		}
		f.Iterations++

		pb := gsat.ParseSlice(clauses)
		s := gsat.New(pb)
		switch s.Solve() {
		case gsat.Unsat:
			f.Exhausted = true
			return nil
		case gsat.Indet:
			f.TimedOut = true
			return nil
		}

		model := s.Model()

		cells, positive := f.decode(enc, model)
		f.collector.Add(cells)

		if len(positive) == 0 {
			// an all-blank solution admits no blocking clause and can
			// have no sibling anyway
			f.Exhausted = true
			return nil
		}
		blocking := make([]int, len(positive))
		for i, v := range positive {
			blocking[i] = -v
		}
		clauses = append(clauses, blocking)
	}
	return nil
}

// decode maps a model back onto a full cell grid and returns the positive
// cell-color variables for the blocking clause.
func (f *Finisher[C]) decode(enc *encoder[C], model []bool) ([]C, []int) {
	var zero C
	cells := make([]C, 0, f.board.Height()*f.board.Width())
	var positive []int
	for i := 0; i < f.board.Height(); i++ {
		for j := 0; j < f.board.Width(); j++ {
			cell := zero.Blank()
			for k, id := range enc.colorIDs {
				v := enc.cellVars[i][j][k]
				if model[v-1] {
					cell = zero.FromID(id)
					positive = append(positive, v)
					break
				}
			}
			cells = append(cells, cell)
		}
	}
	return cells, positive
}
