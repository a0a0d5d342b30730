package solver

import (
	"context"
	"errors"
	"time"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/ports"
	"svw.info/nonogram/internal/solver/backtrack"
	"svw.info/nonogram/internal/solver/probing"
	"svw.info/nonogram/internal/solver/propagation"
	"svw.info/nonogram/internal/solver/sat"
)

// Engine implements ports.Solver over the solving layers.
type Engine struct {
	opts Options
}

// New creates an engine; zero-valued options fall back to the defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Solve validates the normalized puzzle and runs the full pipeline:
// propagation, probing, then the configured finisher.
func (e *Engine) Solve(ctx context.Context, p *domain.Puzzle) (*domain.Result, ports.Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, ports.Stats{}, err
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	if p.Colored() {
		b := board.New(
			domain.ColoredDescriptions(p.Rows),
			domain.ColoredDescriptions(p.Cols),
			p.Palette.FullSet(),
		)
		return run(ctx, b, e.opts)
	}
	b := board.New(
		domain.BinaryDescriptions(p.Rows),
		domain.BinaryDescriptions(p.Cols),
		domain.Undefined,
	)
	return run(ctx, b, e.opts)
}

func run[C domain.Color[C]](ctx context.Context, b *board.Board[C], opts Options) (res *domain.Result, stats ports.Stats, err error) {
	start := time.Now()
	logger := opts.Logger

	if opts.Observer != nil {
		b.Subscribe(opts.Observer)
	}

	coll := newCollector[C](opts.MaxSolutions)
	prop := propagation.New(b, opts.LineCacheCapacity, logger)
	prober := probing.New(b, prop, opts.LowPriorityThreshold, func(cells []C) { coll.Add(cells) }, logger)

	defer func() {
		stats.LinesSolved = prop.LinesSolved
		stats.Probes = prober.Probes
		stats.CacheHits, stats.CacheMisses = prop.CacheStats()
		stats.Duration = time.Since(start)
	}()

	finish := func(status domain.Status) (*domain.Result, ports.Stats, error) {
		grids, gerr := coll.Grids(b.Height(), b.Width())
		if gerr != nil {
			return nil, stats, gerr
		}
		return &domain.Result{Status: status, Solutions: grids}, stats, nil
	}

	// 1. pure line propagation
	logger.Debug("solving with line propagation")
	if _, err := prop.Run(); err != nil {
		if errors.Is(err, domain.ErrInfeasible) {
			return finish(domain.Unsolvable)
		}
		return nil, stats, err
	}
	if b.IsSolvedFull() {
		coll.Add(b.Cells())
		return finish(domain.Unique)
	}

	// 2. probing
	logger.Debug("solving with probing", "rate", b.SolutionRate())
	impact, perr := prober.Run(ctx)
	if perr != nil {
		switch {
		case errors.Is(perr, domain.ErrInfeasible):
			return finish(domain.Unsolvable)
		case errors.Is(perr, context.DeadlineExceeded) || errors.Is(perr, context.Canceled):
			return finish(domain.TimedOut)
		default:
			return nil, stats, perr
		}
	}
	if b.IsSolvedFull() {
		coll.Add(b.Cells())
		return finish(domain.Unique)
	}
	if coll.Full() {
		return finish(domain.Multiple)
	}

	// 3. the configured finisher
	logger.Debug("solving with finisher", "finisher", opts.Finisher.String(), "rate", b.SolutionRate())
	timedOut := false
	exhausted := false
	switch opts.Finisher {
	case SAT:
		f := sat.New[C](b, coll, logger)
		if err := f.Run(ctx); err != nil {
			return nil, stats, err
		}
		stats.SATIterations = f.Iterations
		timedOut, exhausted = f.TimedOut, f.Exhausted
	default:
		bt := backtrack.New[C](b, prober, coll, logger)
		if err := bt.Run(ctx, impact); err != nil {
			return nil, stats, err
		}
		stats.SearchNodes = bt.Nodes
		timedOut, exhausted = bt.TimedOut, !bt.TimedOut && !coll.Full()
	}

	switch n := coll.Count(); {
	case timedOut:
		return finish(domain.TimedOut)
	case n == 0:
		return finish(domain.Unsolvable)
	case n == 1 && exhausted:
		return finish(domain.Unique)
	default:
		// the cap was reached or uniqueness was not proven
		return finish(domain.Multiple)
	}
}

var _ ports.Solver = (*Engine)(nil)
