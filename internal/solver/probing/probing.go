// Package probing performs one-ply hypothetical reasoning: tentatively
// assign each still-possible color to promising cells, propagate, and turn
// contradictions into permanent deductions. Probes that merely make progress
// are recorded as "impact" and seed the search's branch ordering.
package probing

import (
	"context"
	"log/slog"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/solver/propagation"
)

// Priorities for re-enqueueing cells around fresh information.
const (
	priorityNeighboursOfSolved        = 10.0
	priorityNeighboursOfContradiction = 20.0
)

// Probe is one (cell, color) hypothesis.
type Probe[C domain.Color[C]] struct {
	Point domain.Point
	Color C
}

// ImpactResult is what a non-contradictory probe achieved.
type ImpactResult struct {
	// Cells newly solved by propagating the hypothesis.
	Cells int
	// Priority of the probed cell when the probe ran.
	Priority float64
}

// Impact maps every informative probe to its result.
type Impact[C domain.Color[C]] map[Probe[C]]ImpactResult

// Prober runs the probing loop over one board.
type Prober[C domain.Color[C]] struct {
	board     *board.Board[C]
	prop      *propagation.Solver[C]
	threshold float64
	onSolved  func(cells []C)
	logger    *slog.Logger

	// Probes counts individual (cell, color) hypotheses tried.
	Probes int
	// Contradictions counts contradiction rounds: each one eliminated one or
	// more colors of a single cell for good.
	Contradictions int
}

// New creates a prober sharing the propagation driver's line cache.
// onSolved fires whenever a hypothesis propagates to a full solution; the
// board is rolled back right after, so the callback receives a fresh copy of
// the cells rather than a view of the board.
func New[C domain.Color[C]](b *board.Board[C], prop *propagation.Solver[C], threshold float64, onSolved func([]C), logger *slog.Logger) *Prober[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober[C]{board: b, prop: prop, threshold: threshold, onSolved: onSolved, logger: logger}
}

// unsolvedQueue ranks every unsolved cell by P = N + R + C, where N counts
// solved orthogonal sides (board edges included), and R and C are the solved
// fractions of the cell's row and column. Cells below the configured
// threshold are skipped.
func (p *Prober[C]) unsolvedQueue() *pointQueue {
	q := newPointQueue()
	for _, pt := range p.board.UnsolvedCells() {
		n := float64(4 - len(p.board.UnsolvedNeighbours(pt)))
		priority := n + p.board.RowSolutionRate(pt.Row) + p.board.ColSolutionRate(pt.Col)
		if priority < p.threshold {
			continue
		}
		q.push(pt, priority)
	}
	return q
}

// Run probes until a full pass yields no new information. The returned
// impact map seeds search branching. A contradiction on every remaining
// color of some cell surfaces as domain.ErrInfeasible.
func (p *Prober[C]) Run(ctx context.Context) (Impact[C], error) {
	return p.run(ctx, p.unsolvedQueue())
}

func (p *Prober[C]) run(ctx context.Context, queue *pointQueue) (Impact[C], error) {
	for {
		impact := make(Impact[C])
		if p.board.IsSolvedFull() {
			return impact, nil
		}

		var badPoint domain.Point
		var badColors []C

		for {
			point, priority, ok := queue.pop()
			if !ok {
				break
			}
			if err := ctx.Err(); err != nil {
				return impact, err
			}
			if p.board.Cell(point).IsSolved() {
				continue
			}

			progress, contradictions := p.probe(point)
			if len(contradictions) > 0 {
				badPoint, badColors = point, contradictions
				break
			}
			for _, pr := range progress {
				impact[Probe[C]{Point: point, Color: pr.color}] = ImpactResult{Cells: pr.cells, Priority: priority}
			}
		}

		if badColors == nil {
			return impact, nil
		}

		p.Contradictions++
		p.logger.Debug("contradiction", "point", badPoint.String(), "colors", len(badColors))
		for _, c := range badColors {
			if err := p.board.UnsetColor(badPoint, c); err != nil {
				return nil, err
			}
		}
		narrowed, err := p.prop.RunFromPoint(badPoint)
		if err != nil {
			return nil, err
		}
		for _, pt := range narrowed {
			for _, n := range p.board.UnsolvedNeighbours(pt) {
				queue.push(n, priorityNeighboursOfSolved)
			}
		}
		for _, n := range p.board.UnsolvedNeighbours(badPoint) {
			queue.push(n, priorityNeighboursOfContradiction)
		}
	}
}

type progressResult[C domain.Color[C]] struct {
	color C
	cells int
}

// probe tries every remaining color of point under a snapshot and reports,
// per color, either the number of newly solved cells or a contradiction.
func (p *Prober[C]) probe(point domain.Point) ([]progressResult[C], []C) {
	var progress []progressResult[C]
	var contradictions []C

	for _, color := range p.board.Cell(point).Variants() {
		p.Probes++
		snap := p.board.MakeSnapshot()

		err := p.board.SetColor(point, color)
		var narrowed []domain.Point
		if err == nil {
			narrowed, err = p.prop.RunFromPoint(point)
		}
		if err == nil && p.board.IsSolvedFull() && p.onSolved != nil {
			p.onSolved(p.board.Cells())
		}

		p.board.Restore(snap)

		if err != nil {
			contradictions = append(contradictions, color)
			continue
		}
		progress = append(progress, progressResult[C]{color: color, cells: len(narrowed)})
	}
	return progress, contradictions
}

// PropagatePoint propagates from a just-assigned cell and returns the points
// that narrowed; ExtendQueue turns them into followup probe candidates. Used
// by the search when committing a guess.
func (p *Prober[C]) PropagatePoint(point domain.Point) ([]domain.Point, error) {
	narrowed, err := p.prop.RunFromPoint(point)
	if err != nil {
		return nil, err
	}
	return narrowed, nil
}

// ExtendQueue builds the probe queue for a search node: all unsolved cells,
// boosted around recently narrowed points.
func (p *Prober[C]) ExtendQueue(narrowed []domain.Point) *pointQueue {
	q := p.unsolvedQueue()
	for _, pt := range narrowed {
		for _, n := range p.board.UnsolvedNeighbours(pt) {
			q.push(n, priorityNeighboursOfSolved)
		}
	}
	return q
}

// RunQueue runs the probing loop over a prepared queue.
func (p *Prober[C]) RunQueue(ctx context.Context, q *pointQueue) (Impact[C], error) {
	return p.run(ctx, q)
}
