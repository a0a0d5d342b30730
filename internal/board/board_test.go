package board

import (
	"math/rand"
	"strings"
	"testing"

	"svw.info/nonogram/internal/domain"
)

func binDescs(lines ...[]int) []domain.Description[domain.BinaryColor] {
	out := make([]domain.Description[domain.BinaryColor], len(lines))
	for i, sizes := range lines {
		blocks := make([]domain.Block[domain.BinaryColor], len(sizes))
		for k, s := range sizes {
			blocks[k] = domain.Block[domain.BinaryColor]{Size: s, Color: domain.Black}
		}
		out[i] = domain.NewDescription(blocks...)
	}
	return out
}

func testBoard() *Board[domain.BinaryColor] {
	// 3x3, descriptions irrelevant for grid mechanics
	rows := binDescs([]int{1}, []int{1}, []int{1})
	cols := binDescs([]int{1}, []int{1}, []int{1})
	return New(rows, cols, domain.Undefined)
}

func TestSetRowRefinesAndReportsChanges(t *testing.T) {
	b := testBoard()
	changed, err := b.SetRow(0, []domain.BinaryColor{domain.Black, domain.Undefined, domain.White})
	if err != nil {
		t.Fatalf("SetRow: %v", err)
	}
	if len(changed) != 2 || changed[0] != 0 || changed[1] != 2 {
		t.Fatalf("changed = %v", changed)
	}
	if b.Cell(domain.Point{Row: 0, Col: 0}) != domain.Black {
		t.Fatal("cell (0,0) not black")
	}
}

func TestSetRowRejectsBroadening(t *testing.T) {
	b := testBoard()
	if err := b.SetColor(domain.Point{Row: 0, Col: 0}, domain.Black); err != nil {
		t.Fatal(err)
	}
	_, err := b.SetRow(0, []domain.BinaryColor{domain.White, domain.Undefined, domain.Undefined})
	if err == nil {
		t.Fatal("broadening write must fail")
	}
	// the failed write must not have touched anything
	if b.Cell(domain.Point{Row: 0, Col: 0}) != domain.Black {
		t.Fatal("failed write mutated the board")
	}
}

func TestUnsetColor(t *testing.T) {
	b := testBoard()
	p := domain.Point{Row: 1, Col: 1}
	if err := b.UnsetColor(p, domain.Black); err != nil {
		t.Fatal(err)
	}
	if b.Cell(p) != domain.White {
		t.Fatalf("cell = %v, want White", b.Cell(p))
	}
	if err := b.UnsetColor(p, domain.White); err == nil {
		t.Fatal("removing the last candidate must fail")
	}
}

func TestObserverSeesNarrowings(t *testing.T) {
	b := testBoard()
	var events []string
	b.Subscribe(func(p domain.Point, before, after domain.CellState) {
		events = append(events, p.String())
	})
	if err := b.SetColor(domain.Point{Row: 2, Col: 0}, domain.White); err != nil {
		t.Fatal(err)
	}
	// a no-op write emits nothing
	if err := b.SetColor(domain.Point{Row: 2, Col: 0}, domain.White); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0] != "(2,0)" {
		t.Fatalf("events = %v", events)
	}
}

func TestNeighbours(t *testing.T) {
	b := testBoard()
	if n := b.Neighbours(domain.Point{Row: 0, Col: 0}); len(n) != 2 {
		t.Fatalf("corner neighbours = %v", n)
	}
	if n := b.Neighbours(domain.Point{Row: 1, Col: 1}); len(n) != 4 {
		t.Fatalf("center neighbours = %v", n)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := testBoard()
	snap := b.MakeSnapshot()
	before := CellsKey(b.Cells())

	if err := b.SetColor(domain.Point{Row: 0, Col: 0}, domain.Black); err != nil {
		t.Fatal(err)
	}
	if err := b.SetColor(domain.Point{Row: 1, Col: 2}, domain.White); err != nil {
		t.Fatal(err)
	}
	b.Restore(snap)

	if got := CellsKey(b.Cells()); got != before {
		t.Fatalf("restore mismatch:\n got %s\nwant %s", got, before)
	}
}

func TestSnapshotLIFOViolationPanics(t *testing.T) {
	b := testBoard()
	outer := b.MakeSnapshot()
	_ = b.MakeSnapshot()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("out-of-order restore must panic")
		}
		if !strings.Contains(r.(string), "snapshot") {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	b.Restore(outer)
}

// Randomized narrow/snapshot/restore sequences must always round-trip.
func TestSnapshotFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		b := testBoard()
		type frame struct {
			snap Snapshot[domain.BinaryColor]
			key  string
		}
		var stack []frame

		for step := 0; step < 60; step++ {
			switch op := rng.Intn(4); {
			case op == 0:
				stack = append(stack, frame{b.MakeSnapshot(), b.Key()})
			case op == 1 && len(stack) > 0:
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.Restore(f.snap)
				if b.Key() != f.key {
					t.Fatalf("iter %d step %d: restore mismatch", iter, step)
				}
			default:
				p := domain.Point{Row: rng.Intn(3), Col: rng.Intn(3)}
				cell := b.Cell(p)
				if cell.IsSolved() {
					continue
				}
				variants := cell.Variants()
				if err := b.SetColor(p, variants[rng.Intn(len(variants))]); err != nil {
					t.Fatalf("iter %d step %d: %v", iter, step, err)
				}
			}
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			b.Restore(f.snap)
			if b.Key() != f.key {
				t.Fatalf("iter %d: final restore mismatch", iter)
			}
		}
	}
}

func TestSolutionRates(t *testing.T) {
	b := testBoard()
	if r := b.SolutionRate(); r != 0 {
		t.Fatalf("initial rate = %v", r)
	}
	for j := 0; j < 3; j++ {
		if err := b.SetColor(domain.Point{Row: 0, Col: j}, domain.White); err != nil {
			t.Fatal(err)
		}
	}
	if r := b.RowSolutionRate(0); r != 1 {
		t.Fatalf("row rate = %v", r)
	}
	if r := b.ColSolutionRate(0); r != 1.0/3.0 {
		t.Fatalf("col rate = %v", r)
	}
	if b.IsSolvedFull() {
		t.Fatal("board is not fully solved")
	}
	if got := len(b.UnsolvedCells()); got != 6 {
		t.Fatalf("unsolved cells = %d", got)
	}
}

func TestGridConversion(t *testing.T) {
	b := testBoard()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := domain.White
			if i == j {
				c = domain.Black
			}
			if err := b.SetColor(domain.Point{Row: i, Col: j}, c); err != nil {
				t.Fatal(err)
			}
		}
	}
	g, err := b.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if g[0][0] != 1 || g[0][1] != 0 || g[2][2] != 1 {
		t.Fatalf("grid = %v", g)
	}
}
