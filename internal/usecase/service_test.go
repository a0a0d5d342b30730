package usecase

import (
	"context"
	"testing"

	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/generator"
	"svw.info/nonogram/internal/solver"
	"svw.info/nonogram/internal/validator"
)

func TestServiceWiring(t *testing.T) {
	uc := NewService(solver.New(solver.DefaultOptions()), generator.New(), validator.New())

	_, grid := generator.New().Random(7, 4, 4)
	p, err := uc.FromGrid(grid, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, stats, err := uc.Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status == domain.Unsolvable {
		t.Fatalf("derived puzzle reported unsolvable: %s", res)
	}
	if stats.LinesSolved == 0 {
		t.Fatal("stats should count line solves")
	}
	for _, sol := range res.Solutions {
		if ok, bad, err := uc.Check(p, sol); err != nil || !ok {
			t.Fatalf("solution fails its own clues: bad=%v err=%v", bad, err)
		}
	}
}

func TestServiceGuards(t *testing.T) {
	uc := NewService(nil, nil, nil)
	if _, _, err := uc.Solve(context.Background(), &domain.Puzzle{}); err == nil {
		t.Fatal("nil solver must be reported")
	}
	if _, err := uc.FromGrid(domain.Grid{{0}}, nil); err == nil {
		t.Fatal("nil generator must be reported")
	}
	if _, _, err := uc.Check(&domain.Puzzle{}, domain.Grid{}); err == nil {
		t.Fatal("nil validator must be reported")
	}
}
