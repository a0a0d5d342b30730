// Package propagation drives line solving to a fixed point: every line that
// might have learned something is queued, solved, and any cell it narrows
// re-queues the crossing line at a more urgent priority.
package propagation

import (
	"fmt"
	"log/slog"

	"svw.info/nonogram/internal/board"
	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/solver/line"
)

// Solver owns the job queue and the line cache for one solve. The cache is
// shared with probing and search through this value.
type Solver[C domain.Color[C]] struct {
	board  *board.Board[C]
	cache  *line.Cache[C]
	logger *slog.Logger

	// LinesSolved counts line-solver invocations, cached or not.
	LinesSolved int
}

// New creates a driver for b with a line cache of the given capacity.
func New[C domain.Color[C]](b *board.Board[C], cacheCapacity int, logger *slog.Logger) *Solver[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver[C]{
		board:  b,
		cache:  line.NewCache[C](cacheCapacity),
		logger: logger,
	}
}

// CacheStats reports the line cache's hit/miss counters.
func (s *Solver[C]) CacheStats() (hits, misses int) { return s.cache.Stats() }

// Run drives every row and column to a fixed point. It returns the points
// that were narrowed, or domain.ErrInfeasible when some line cannot be
// satisfied.
func (s *Solver[C]) Run() ([]domain.Point, error) {
	q := newJobQueue()
	for i := 0; i < s.board.Height(); i++ {
		q.push(domain.LineJob{Index: i}, 0)
	}
	for j := 0; j < s.board.Width(); j++ {
		q.push(domain.LineJob{Column: true, Index: j}, 0)
	}
	return s.drain(q)
}

// RunFromPoint re-solves only the lines reachable from a single changed
// cell: its row and column seed the queue.
func (s *Solver[C]) RunFromPoint(p domain.Point) ([]domain.Point, error) {
	q := newJobQueue()
	q.push(domain.LineJob{Index: p.Row}, 0)
	q.push(domain.LineJob{Column: true, Index: p.Col}, 0)
	return s.drain(q)
}

func (s *Solver[C]) drain(q *jobQueue) ([]domain.Point, error) {
	var narrowed []domain.Point
	for {
		job, priority, ok := q.pop()
		if !ok {
			return narrowed, nil
		}
		changed, err := s.updateLine(job)
		if err != nil {
			return nil, err
		}
		for _, k := range changed {
			narrowed = append(narrowed, job2point(job, k))
			q.push(domain.LineJob{Column: !job.Column, Index: k}, priority-1)
		}
	}
}

func job2point(job domain.LineJob, k int) domain.Point {
	if job.Column {
		return domain.Point{Row: k, Col: job.Index}
	}
	return domain.Point{Row: job.Index, Col: k}
}

// updateLine solves one line (through the cache) and writes the refinement
// back, returning the indices that changed.
func (s *Solver[C]) updateLine(job domain.LineJob) ([]int, error) {
	desc := s.board.LineDesc(job)
	cells := s.board.GetLine(job)
	s.LinesSolved++

	key := line.Key(desc, cells)
	solved, err, cached := s.cache.Get(key)
	if !cached {
		solved, err = line.Solve(desc, cells)
		s.cache.Put(key, solved, err)
	}
	if err != nil {
		s.logger.Debug("line infeasible", "line", job.String())
		return nil, err
	}

	changed, err := s.board.SetLine(job, solved)
	if err != nil {
		// the line solver produced a broadening update: internal
		// inconsistency, not a puzzle property
		return nil, fmt.Errorf("solver state corrupted on %s: %w", job, err)
	}
	if len(changed) > 0 {
		s.logger.Debug("line narrowed", "line", job.String(), "cells", len(changed))
	}
	return changed, nil
}
