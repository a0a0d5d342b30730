package usecase

import (
	"context"
	"errors"

	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/ports"
)

// Service bundles the solving providers behind one front door for cmd.
type Service struct {
	Solver    ports.Solver
	Generator ports.Generator
	Validator ports.Validator
}

func NewService(s ports.Solver, g ports.Generator, v ports.Validator) *Service {
	return &Service{Solver: s, Generator: g, Validator: v}
}

var errNotConfigured = errors.New("usecase dependency not configured")

func (u *Service) Solve(ctx context.Context, p *domain.Puzzle) (*domain.Result, ports.Stats, error) {
	if u.Solver == nil {
		return nil, ports.Stats{}, errNotConfigured
	}
	return u.Solver.Solve(ctx, p)
}

func (u *Service) FromGrid(grid domain.Grid, palette *domain.Palette) (*domain.Puzzle, error) {
	if u.Generator == nil {
		return nil, errNotConfigured
	}
	return u.Generator.FromGrid(grid, palette)
}

func (u *Service) Check(p *domain.Puzzle, g domain.Grid) (bool, []domain.LineJob, error) {
	if u.Validator == nil {
		return false, nil, errNotConfigured
	}
	return u.Validator.Check(p, g)
}
