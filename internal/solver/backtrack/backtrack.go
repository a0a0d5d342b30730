// Package backtrack enumerates solutions by depth-first search over cell
// guesses, using probing impact to order branches and propagation to prune.
package backtrack

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/ports"
	"svw.info/nonogram/internal/solver/probing"
)

// Direction is one candidate guess: assign Color to Point.
type Direction[C domain.Color[C]] struct {
	Point domain.Point
	Color C
}

// Solver runs the search on a board that probing has already worked over.
type Solver[C domain.Color[C]] struct {
	board     *board.Board[C]
	prober    *probing.Prober[C]
	collector ports.SolutionSink[C]
	logger    *slog.Logger

	// Nodes counts guesses tried; DepthReached is the deepest level.
	Nodes        int
	DepthReached int
	// TimedOut is set when the deadline expired mid-search; whatever the
	// collector holds is still valid, just possibly incomplete.
	TimedOut bool
}

// New wires the search to an existing prober (and through it, the shared
// propagation driver and line cache).
func New[C domain.Color[C]](b *board.Board[C], prober *probing.Prober[C], collector ports.SolutionSink[C], logger *slog.Logger) *Solver[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver[C]{board: b, prober: prober, collector: collector, logger: logger}
}

// Run searches from the current board state, branching on the given probing
// impact. It returns once the collector is full, the deadline expires, or
// the tree is exhausted.
func (s *Solver[C]) Run(ctx context.Context, impact probing.Impact[C]) error {
	directions := s.chooseDirections(impact)
	if len(directions) == 0 {
		return nil
	}
	s.logger.Debug("starting depth-first search", "candidates", len(directions), "rate", s.board.SolutionRate())
	_, err := s.search(ctx, directions, 0)
	return err
}

// search guards one node with a snapshot. The root keeps its deductions:
// anything solved there is solved for real.
func (s *Solver[C]) search(ctx context.Context, directions []Direction[C], depth int) (bool, error) {
	if s.limitsReached(ctx, depth) {
		return true, nil
	}
	snap := s.board.MakeSnapshot()
	ok, err := s.searchMutable(ctx, directions, depth)
	if depth > 0 {
		s.board.Restore(snap)
	} else {
		s.board.Drop(snap)
	}
	return ok, err
}

func (s *Solver[C]) searchMutable(ctx context.Context, directions []Direction[C], depth int) (bool, error) {
	if depth+1 > s.DepthReached {
		s.DepthReached = depth + 1
	}

	// set to false right after any full probing pass so an unchanged board
	// is never probed twice in a row
	boardChanged := true

	stack := make([]Direction[C], len(directions))
	for i, d := range directions {
		stack[len(directions)-1-i] = d
	}

	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.limitsReached(ctx, depth) {
			return true, nil
		}
		s.Nodes++

		variants := s.board.Cell(d.Point).Variants()
		if !containsColor(variants, d.Color) {
			continue
		}

		if len(variants) == 1 {
			// forced cell: no search level consumed
			if !boardChanged {
				continue
			}
			dead, stop, err := s.reprobe(ctx)
			boardChanged = false
			if err != nil {
				return false, err
			}
			if dead {
				return false, nil
			}
			if stop || s.solvedAndCollected() {
				return true, nil
			}
			continue
		}

		guessSave := s.board.MakeSnapshot()
		ok, err := s.tryDirection(ctx, d, depth)
		s.board.Restore(guessSave)
		if err != nil {
			return false, err
		}

		if !ok {
			// every consequence of this color is contradictory:
			// eliminate it for good
			if err := s.board.UnsetColor(d.Point, d.Color); err != nil {
				return false, nil
			}
			dead, stop, err := s.reprobe(ctx)
			boardChanged = false
			if err != nil {
				return false, err
			}
			if dead {
				return false, nil
			}
			if stop || s.solvedAndCollected() {
				return true, nil
			}
		}

		if !ok || s.board.IsSolvedFull() {
			// queue the cell's remaining colors: if all of them die,
			// the parent path is a dead end
			for _, other := range s.board.Cell(d.Point).Variants() {
				if other == d.Color {
					continue
				}
				alt := Direction[C]{Point: d.Point, Color: other}
				if !containsDirection(stack, alt) {
					stack = append(stack, alt)
				}
			}
		}
	}
	return true, nil
}

// tryDirection commits one guess, propagates, probes, and recurses on the
// resulting impact. false means the guess is contradictory.
func (s *Solver[C]) tryDirection(ctx context.Context, d Direction[C], depth int) (bool, error) {
	if !containsColor(s.board.Cell(d.Point).Variants(), d.Color) {
		return true, nil
	}
	if err := s.board.SetColor(d.Point, d.Color); err != nil {
		return false, nil
	}
	narrowed, err := s.prober.PropagatePoint(d.Point)
	if err != nil {
		if errors.Is(err, domain.ErrInfeasible) {
			return false, nil
		}
		return false, err
	}
	if s.solvedAndCollected() {
		return true, nil
	}

	if s.limitsReached(ctx, depth) {
		return true, nil
	}

	impact, err := s.prober.RunQueue(ctx, s.prober.ExtendQueue(narrowed))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInfeasible):
			return false, nil
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			s.TimedOut = true
			return true, nil
		default:
			return false, err
		}
	}

	if s.limitsReached(ctx, depth) || s.solvedAndCollected() {
		return true, nil
	}

	directions := s.chooseDirections(impact)
	if len(directions) == 0 {
		return true, nil
	}
	return s.search(ctx, directions, depth+1)
}

// reprobe runs a full probing pass after an in-place deduction.
// dead reports a contradiction (the current branch cannot be completed);
// stop reports a deadline expiry.
func (s *Solver[C]) reprobe(ctx context.Context) (dead, stop bool, err error) {
	_, err = s.prober.Run(ctx)
	switch {
	case err == nil:
		return false, false, nil
	case errors.Is(err, domain.ErrInfeasible):
		return true, false, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.TimedOut = true
		return false, true, nil
	default:
		return false, false, err
	}
}

func (s *Solver[C]) solvedAndCollected() bool {
	if !s.board.IsSolvedFull() {
		return false
	}
	s.collector.Add(s.board.Cells())
	return true
}

func (s *Solver[C]) limitsReached(ctx context.Context, depth int) bool {
	if s.collector.Full() {
		return true
	}
	if ctx.Err() != nil {
		s.TimedOut = true
		return true
	}
	return false
}

// chooseDirections ranks unsolved cells by their probing impact and expands
// each into per-color guesses, most impactful first.
func (s *Solver[C]) chooseDirections(impact probing.Impact[C]) []Direction[C] {
	type colorImpact struct {
		color C
		cells int
	}
	pointWise := make(map[domain.Point][]colorImpact)
	for probe, res := range impact {
		if s.board.Cell(probe.Point).IsSolved() {
			continue
		}
		pointWise[probe.Point] = append(pointWise[probe.Point], colorImpact{probe.Color, res.Cells})
	}

	type pointRate struct {
		point domain.Point
		rate  float64
	}
	rates := make([]pointRate, 0, len(pointWise))
	for point, colors := range pointWise {
		cells := make([]int, len(colors))
		for i, c := range colors {
			cells[i] = c.cells
		}
		rates = append(rates, pointRate{point, rateByImpact(cells)})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].rate != rates[j].rate {
			return rates[i].rate > rates[j].rate
		}
		return lessPoint(rates[i].point, rates[j].point)
	})

	var out []Direction[C]
	for _, pr := range rates {
		colors := pointWise[pr.point]
		sort.Slice(colors, func(i, j int) bool {
			if colors[i].cells != colors[j].cells {
				return colors[i].cells > colors[j].cells
			}
			return colors[i].color.State() < colors[j].color.State()
		})
		for _, ci := range colors {
			out = append(out, Direction[C]{Point: pr.point, Color: ci.color})
		}
	}
	return out
}

// rateByImpact scores a cell as sqrt(max/(min+1)) + min over its per-color
// impacts: a large spread means one color almost decides the cell.
func rateByImpact(cells []int) float64 {
	min, max := 0, 0
	for i, n := range cells {
		if i == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return math.Sqrt(float64(max)/float64(min+1)) + float64(min)
}

func lessPoint(a, b domain.Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func containsColor[C comparable](colors []C, c C) bool {
	for _, x := range colors {
		if x == c {
			return true
		}
	}
	return false
}

func containsDirection[C domain.Color[C]](stack []Direction[C], d Direction[C]) bool {
	for _, x := range stack {
		if x == d {
			return true
		}
	}
	return false
}
