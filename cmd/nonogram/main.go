package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"svw.info/nonogram/internal/domain"
	"svw.info/nonogram/internal/generator"
	"svw.info/nonogram/internal/solver"
	"svw.info/nonogram/internal/usecase"
	"svw.info/nonogram/internal/validator"
)

// puzzleFile is the normalized puzzle value on disk. This is not a puzzle
// format parser: upstream tools produce this shape.
type puzzleFile struct {
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Palette []domain.ColorDef `json:"palette,omitempty"`
	Rows    [][]domain.Clue   `json:"rows"`
	Cols    [][]domain.Clue   `json:"cols"`
}

func (f *puzzleFile) toPuzzle() (*domain.Puzzle, error) {
	p := &domain.Puzzle{Width: f.Width, Height: f.Height, Rows: f.Rows, Cols: f.Cols}
	if len(f.Palette) > 0 {
		pal, err := domain.NewPalette(f.Palette...)
		if err != nil {
			return nil, err
		}
		p.Palette = pal
	}
	return p, nil
}

func main() {
	input := flag.String("input", "", "normalized puzzle JSON file (default: stdin)")
	maxSolutions := flag.Int("max-solutions", 2, "stop searching after this many solutions")
	timeout := flag.Duration("timeout", 0, "abort search after this duration (0 = unlimited)")
	lowPriority := flag.Float64("low-priority", 0, "skip probes ranked below this priority")
	finisherStr := flag.String("finisher", "backtracking", "full search strategy: backtracking|sat")
	cacheCap := flag.Int("line-cache", 100_000, "line solver cache capacity")
	levelStr := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	lvl := slog.LevelInfo
	switch strings.ToLower(*levelStr) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	finisher, err := solver.ParseFinisher(*finisherStr)
	if err != nil {
		logger.Error("bad flag", "err", err)
		os.Exit(2)
	}

	puz, err := readPuzzle(*input)
	if err != nil {
		logger.Error("reading puzzle", "err", err)
		os.Exit(1)
	}

	updates := 0
	opts := solver.Options{
		MaxSolutions:         *maxSolutions,
		Timeout:              *timeout,
		LowPriorityThreshold: *lowPriority,
		Finisher:             finisher,
		LineCacheCapacity:    *cacheCap,
		Logger:               logger,
		Observer: func(p domain.Point, before, after domain.CellState) {
			updates++
		},
	}

	// wire providers -> use cases
	uc := usecase.NewService(solver.New(opts), generator.New(), validator.New())

	result, stats, err := uc.Solve(context.Background(), puz)
	if err != nil {
		logger.Error("solving failed", "err", err)
		os.Exit(1)
	}

	logger.Info("solved",
		"status", result.String(),
		"lines", stats.LinesSolved,
		"probes", stats.Probes,
		"nodes", stats.SearchNodes,
		"sat-iterations", stats.SATIterations,
		"cache-hits", stats.CacheHits,
		"cache-misses", stats.CacheMisses,
		"cell-updates", updates,
		"dur", stats.Duration.Round(time.Millisecond),
	)

	fmt.Println(result.String())
	for n, grid := range result.Solutions {
		if len(result.Solutions) > 1 {
			fmt.Printf("solution %d:\n", n+1)
		}
		printGrid(grid, puz.Palette)
		if ok, bad, cerr := uc.Check(puz, grid); cerr != nil || !ok {
			logger.Error("solution failed clue check", "err", cerr, "lines", fmt.Sprint(bad))
			os.Exit(1)
		}
	}
}

func readPuzzle(path string) (*domain.Puzzle, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var f puzzleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.toPuzzle()
}

func printGrid(g domain.Grid, palette *domain.Palette) {
	var sb strings.Builder
	for _, row := range g {
		for _, id := range row {
			switch {
			case palette != nil:
				sb.WriteString(palette.Symbol(id))
			case id == 0:
				sb.WriteByte('.')
			default:
				sb.WriteByte('X')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}
