package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vovakirdan/merge-arcade/internal/storage"
)

// runArcade executes the root command with fresh per-command flags.
func runArcade(t *testing.T, args ...string) string {
	t.Helper()
	flagExport = ""
	flagClearScores = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("arcade %v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func seedScores(t *testing.T, dbPath string, scores ...int) {
	t.Helper()
	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for _, s := range scores {
		if _, err := store.SaveScore("2048", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveHighScore("2048", 5000); err != nil {
		t.Fatalf("SaveHighScore() failed: %v", err)
	}
}

func TestScoresExportWritesFullHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "scores.db")
	xlsxPath := filepath.Join(dir, "history.xlsx")

	var scores []int
	for i := 1; i <= 12; i++ {
		scores = append(scores, i*100)
	}
	seedScores(t, dbPath, scores...)

	out := runArcade(t, "scores", "2048", "--db", dbPath, "--export", xlsxPath)

	if !strings.Contains(out, "Best: 5000") {
		t.Errorf("output missing kv high score:\n%s", out)
	}
	if !strings.Contains(out, "Best finished game: 1200") {
		t.Errorf("output missing best finished game:\n%s", out)
	}
	if strings.Contains(out, "  11  ") {
		t.Errorf("table should stop at rank 10:\n%s", out)
	}
	if !strings.Contains(out, "Exported 12 entries") {
		t.Errorf("export should cover every score:\n%s", out)
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 13 {
		t.Errorf("rows = %d, want header + 12", len(rows))
	}
}

func TestScoresClearWipesHistoryAndHighScore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "scores.db")
	seedScores(t, dbPath, 64, 128)

	out := runArcade(t, "scores", "2048", "--db", dbPath, "--clear")
	if !strings.Contains(out, "Cleared scores") {
		t.Errorf("unexpected output:\n%s", out)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	history, err := store.AllScores("2048")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %v, want empty", history)
	}
	hs, err := store.LoadHighScore("2048")
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if hs != 0 {
		t.Errorf("high score = %d, want 0", hs)
	}
}
