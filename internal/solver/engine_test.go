package solver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/generator"
	"svw.info/nonogram/internal/validator"
)

func binPuzzle(rows, cols [][]int) *domain.Puzzle {
	toClues := func(lines [][]int) [][]domain.Clue {
		out := make([][]domain.Clue, len(lines))
		for i, sizes := range lines {
			for _, s := range sizes {
				out[i] = append(out[i], domain.Clue{Size: s})
			}
		}
		return out
	}
	return &domain.Puzzle{
		Width:  len(cols),
		Height: len(rows),
		Rows:   toClues(rows),
		Cols:   toClues(cols),
	}
}

func digitFive() *domain.Puzzle {
	return binPuzzle(
		[][]int{{4}, {1}, {4}, {1}, {4}},
		[][]int{{3, 1}, {1, 1, 1}, {1, 1, 1}, {1, 3}},
	)
}

func permutations(n int) *domain.Puzzle {
	lines := make([][]int, n)
	for i := range lines {
		lines[i] = []int{1}
	}
	return binPuzzle(lines, lines)
}

func finishers() []Finisher { return []Finisher{Backtracking, SAT} }

func solveWith(t *testing.T, p *domain.Puzzle, opts Options) *domain.Result {
	t.Helper()
	res, _, err := New(opts).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}

func TestDigitFiveUnique(t *testing.T) {
	want := [][]domain.ColorID{
		{1, 1, 1, 1},
		{1, 0, 0, 0},
		{1, 1, 1, 1},
		{0, 0, 0, 1},
		{1, 1, 1, 1},
	}
	for _, f := range finishers() {
		t.Run(f.String(), func(t *testing.T) {
			res := solveWith(t, digitFive(), Options{Finisher: f})
			if res.Status != domain.Unique || len(res.Solutions) != 1 {
				t.Fatalf("result = %s", res)
			}
			if !res.Solutions[0].Equal(want) {
				t.Fatalf("grid = %v", res.Solutions[0])
			}
		})
	}
}

func TestTrivialOneByOne(t *testing.T) {
	res := solveWith(t, binPuzzle([][]int{{1}}, [][]int{{1}}), Options{})
	if res.Status != domain.Unique {
		t.Fatalf("result = %s", res)
	}
	if res.Solutions[0][0][0] != 1 {
		t.Fatal("the cell must be black")
	}
}

func TestTrivialInfeasible(t *testing.T) {
	for _, f := range finishers() {
		t.Run(f.String(), func(t *testing.T) {
			res := solveWith(t, binPuzzle([][]int{{1}}, [][]int{nil}), Options{Finisher: f})
			if res.Status != domain.Unsolvable || len(res.Solutions) != 0 {
				t.Fatalf("result = %s", res)
			}
		})
	}
}

func TestAmbiguousTwoByTwo(t *testing.T) {
	diag1 := [][]domain.ColorID{{1, 0}, {0, 1}}
	diag2 := [][]domain.ColorID{{0, 1}, {1, 0}}
	for _, f := range finishers() {
		t.Run(f.String(), func(t *testing.T) {
			res := solveWith(t, permutations(2), Options{Finisher: f})
			if res.Status != domain.Multiple || len(res.Solutions) != 2 {
				t.Fatalf("result = %s", res)
			}
			foundDiag1, foundDiag2 := false, false
			for _, g := range res.Solutions {
				if g.Equal(diag1) {
					foundDiag1 = true
				}
				if g.Equal(diag2) {
					foundDiag2 = true
				}
			}
			if !foundDiag1 || !foundDiag2 {
				t.Fatalf("solutions = %v", res.Solutions)
			}
		})
	}
}

func TestColoredThreeByOne(t *testing.T) {
	pal, err := domain.NewPalette(
		domain.ColorDef{ID: 1, Name: "red"},
		domain.ColorDef{ID: 2, Name: "green"},
	)
	if err != nil {
		t.Fatal(err)
	}
	p := &domain.Puzzle{
		Width: 3, Height: 1, Palette: pal,
		Rows: [][]domain.Clue{{{Size: 1, Color: 1}, {Size: 1, Color: 2}}},
		Cols: [][]domain.Clue{{{Size: 1, Color: 1}}, {{Size: 1, Color: 2}}, {}},
	}
	for _, f := range finishers() {
		t.Run(f.String(), func(t *testing.T) {
			res := solveWith(t, p, Options{Finisher: f})
			if res.Status != domain.Unique || len(res.Solutions) != 1 {
				t.Fatalf("result = %s", res)
			}
			if !res.Solutions[0].Equal([][]domain.ColorID{{1, 2, 0}}) {
				t.Fatalf("grid = %v", res.Solutions[0])
			}
		})
	}
}

// A puzzle that defeats propagation and probing outright: 120 permutation
// matrices, search required.
func TestHardSearchPuzzle(t *testing.T) {
	for _, f := range finishers() {
		t.Run(f.String(), func(t *testing.T) {
			res := solveWith(t, permutations(5), Options{
				Finisher:     f,
				MaxSolutions: 2,
				Timeout:      30 * time.Second,
			})
			if res.Status != domain.Multiple || len(res.Solutions) != 2 {
				t.Fatalf("result = %s", res)
			}
			v := validator.New()
			for _, g := range res.Solutions {
				if ok, bad, err := v.Check(permutations(5), g); err != nil || !ok {
					t.Fatalf("invalid solution (bad lines %v, err %v): %v", bad, err, g)
				}
			}
		})
	}
}

func TestTimedOut(t *testing.T) {
	res := solveWith(t, permutations(5), Options{Timeout: time.Nanosecond})
	if res.Status != domain.TimedOut {
		t.Fatalf("result = %s", res)
	}
}

func TestMalformedPuzzleRejected(t *testing.T) {
	p := binPuzzle([][]int{{9}}, [][]int{{1}})
	if _, _, err := New(Options{}).Solve(context.Background(), p); err == nil {
		t.Fatal("oversized block must be rejected")
	}
}

// Every observer event narrows: the after-state is a strict subset of the
// before-state, monotonically.
func TestObserverEventsAreMonotonic(t *testing.T) {
	violations := 0
	opts := Options{Observer: func(p domain.Point, before, after domain.CellState) {
		if after == before || after&^before != 0 || after == 0 {
			violations++
		}
	}}
	res := solveWith(t, digitFive(), opts)
	if res.Status != domain.Unique {
		t.Fatalf("result = %s", res)
	}
	if violations != 0 {
		t.Fatalf("%d non-narrowing observer events", violations)
	}
}

// Same input, same configuration: byte-identical event streams and
// solution lists.
func TestDeterminism(t *testing.T) {
	run := func() (string, []domain.Grid) {
		events := ""
		opts := Options{
			MaxSolutions: 2,
			Observer: func(p domain.Point, before, after domain.CellState) {
				events += fmt.Sprintf("%v:%x>%x;", p, before, after)
			},
		}
		res := solveWith(t, permutations(4), opts)
		return events, res.Solutions
	}
	events1, sols1 := run()
	events2, sols2 := run()
	if events1 != events2 {
		t.Fatal("observer event streams differ between runs")
	}
	if len(sols1) != len(sols2) {
		t.Fatalf("solution counts differ: %d vs %d", len(sols1), len(sols2))
	}
	for i := range sols1 {
		if !sols1[i].Equal(sols2[i]) {
			t.Fatalf("solution %d differs", i)
		}
	}
}

// Round trip: derive clues from a random grid; the solver must return that
// grid among its solutions. SAT enumeration makes the check exhaustive.
func TestRandomGridRoundTrip(t *testing.T) {
	g := generator.New()
	v := validator.New()
	for seed := int64(1); seed <= 8; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			p, grid := g.Random(seed, 4, 4)
			res := solveWith(t, p, Options{
				Finisher:     SAT,
				MaxSolutions: 100_000,
				Timeout:      30 * time.Second,
			})
			if res.Status == domain.Unsolvable || res.Status == domain.TimedOut {
				t.Fatalf("result = %s", res)
			}
			found := false
			for _, sol := range res.Solutions {
				if ok, bad, err := v.Check(p, sol); err != nil || !ok {
					t.Fatalf("invalid solution (bad lines %v, err %v)", bad, err)
				}
				if sol.Equal(grid) {
					found = true
				}
			}
			if !found {
				t.Fatalf("generating grid missing from %d solutions", len(res.Solutions))
			}
		})
	}
}

// Both finishers must enumerate the same six solutions of the 3x3
// permutation puzzle, which logic alone cannot solve.
func TestFinisherAgreement(t *testing.T) {
	p := permutations(3)
	bt := solveWith(t, p, Options{Finisher: Backtracking, MaxSolutions: 10})
	st := solveWith(t, p, Options{Finisher: SAT, MaxSolutions: 10})
	if bt.Status != domain.Multiple || st.Status != domain.Multiple {
		t.Fatalf("statuses: %s vs %s", bt, st)
	}
	if len(bt.Solutions) != 6 || len(st.Solutions) != 6 {
		t.Fatalf("solution counts: %d vs %d", len(bt.Solutions), len(st.Solutions))
	}
}
