package validator

import (
	"testing"

	"svw.info/nonogram/internal/domain"
)

func TestCheckAcceptsSolution(t *testing.T) {
	p := &domain.Puzzle{
		Width: 2, Height: 2,
		Rows: [][]domain.Clue{{{Size: 1}}, {{Size: 1}}},
		Cols: [][]domain.Clue{{{Size: 1}}, {{Size: 1}}},
	}
	ok, bad, err := New().Check(p, domain.Grid{{1, 0}, {0, 1}})
	if err != nil || !ok || len(bad) != 0 {
		t.Fatalf("ok=%v bad=%v err=%v", ok, bad, err)
	}
}

func TestCheckReportsBadLines(t *testing.T) {
	p := &domain.Puzzle{
		Width: 2, Height: 2,
		Rows: [][]domain.Clue{{{Size: 2}}, {}},
		Cols: [][]domain.Clue{{{Size: 1}}, {{Size: 1}}},
	}
	ok, bad, err := New().Check(p, domain.Grid{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if ok || len(bad) == 0 {
		t.Fatalf("ok=%v bad=%v", ok, bad)
	}
}

func TestCheckColoredComparesColors(t *testing.T) {
	pal, err := domain.NewPalette(
		domain.ColorDef{ID: 1, Name: "red"},
		domain.ColorDef{ID: 2, Name: "green"},
	)
	if err != nil {
		t.Fatal(err)
	}
	p := &domain.Puzzle{
		Width: 2, Height: 1, Palette: pal,
		Rows: [][]domain.Clue{{{Size: 1, Color: 1}, {Size: 1, Color: 2}}},
		Cols: [][]domain.Clue{{{Size: 1, Color: 1}}, {{Size: 1, Color: 2}}},
	}
	if ok, _, _ := New().Check(p, domain.Grid{{1, 2}}); !ok {
		t.Fatal("matching colors must pass")
	}
	if ok, _, _ := New().Check(p, domain.Grid{{2, 1}}); ok {
		t.Fatal("swapped colors must fail")
	}
}

func TestCheckRejectsWrongShape(t *testing.T) {
	p := &domain.Puzzle{Width: 2, Height: 2,
		Rows: [][]domain.Clue{{}, {}}, Cols: [][]domain.Clue{{}, {}}}
	if _, _, err := New().Check(p, domain.Grid{{0, 0}}); err == nil {
		t.Fatal("height mismatch must error")
	}
}
