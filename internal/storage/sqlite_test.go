package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreOpenMemory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveScore("2048", 10); err != nil {
		t.Fatalf("SaveScore() on memory store failed: %v", err)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 50, 200} {
		if _, err := store.SaveScore("2048", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("memory", 5); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("2048", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
		t.Errorf("Scores not in expected order: %v", scores)
	}

	memScores, err := store.TopScores("memory", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(memScores) != 1 {
		t.Errorf("Expected 1 memory score, got %d", len(memScores))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 5 {
		store.SaveScore("test", (i+1)*100)
	}

	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreBestScore(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestScore("2048")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected 0 for empty game, got %d", best)
	}

	store.SaveScore("2048", 100)
	store.SaveScore("2048", 300)
	store.SaveScore("2048", 200)

	best, err = store.BestScore("2048")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 300 {
		t.Errorf("Expected 300, got %d", best)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("2048", 100)
	store.SaveScore("2048", 200)
	store.SaveScore("memory", 3)

	if err := store.ClearScores("2048"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores("2048", 10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}

	memScores, _ := store.TopScores("memory", 10)
	if len(memScores) != 1 {
		t.Errorf("memory scores should not be affected by clearing 2048")
	}
}

func TestStoreAllScores(t *testing.T) {
	store := openTestStore(t)

	for i := range 20 {
		store.SaveScore("test", i*10)
	}

	scores, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("2048", 100)
	store.SaveScore("2048", 300)
	store.SaveScore("memory", 4)

	stats, err := store.GetGameStats("2048")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.TotalScore != 400 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, want 200", stats.AvgScore)
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(all) != 2 || all["memory"].HighScore != 4 {
		t.Errorf("unexpected all-games stats: %v", all)
	}
}

func TestKVRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetValue("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetValue(missing) err = %v, want ErrNotFound", err)
	}

	if err := store.SetValue("theme", "dark"); err != nil {
		t.Fatalf("SetValue() failed: %v", err)
	}
	if err := store.SetValue("theme", "light"); err != nil {
		t.Fatalf("SetValue() overwrite failed: %v", err)
	}

	v, err := store.GetValue("theme")
	if err != nil {
		t.Fatalf("GetValue() failed: %v", err)
	}
	if v != "light" {
		t.Errorf("GetValue() = %q, want light", v)
	}
}

func TestHighScoreOnlyRises(t *testing.T) {
	store := openTestStore(t)

	hs, err := store.LoadHighScore("2048")
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if hs != 0 {
		t.Errorf("initial high score = %d, want 0", hs)
	}

	steps := []struct {
		score   int
		changed bool
		want    int
	}{
		{120, true, 120},
		{80, false, 120},
		{120, false, 120},
		{1000, true, 1000},
	}

	for _, s := range steps {
		changed, err := store.SaveHighScore("2048", s.score)
		if err != nil {
			t.Fatalf("SaveHighScore(%d) failed: %v", s.score, err)
		}
		if changed != s.changed {
			t.Errorf("SaveHighScore(%d) changed = %v, want %v", s.score, changed, s.changed)
		}
		got, _ := store.LoadHighScore("2048")
		if got != s.want {
			t.Errorf("after SaveHighScore(%d) high score = %d, want %d", s.score, got, s.want)
		}
	}

	raw, err := store.GetValue("highscore:2048")
	if err != nil || raw != "1000" {
		t.Errorf("raw kv value = %q, %v; want 1000", raw, err)
	}

	other, _ := store.LoadHighScore("memory")
	if other != 0 {
		t.Errorf("memory high score = %d, want 0", other)
	}
}

func TestHighScoreCorrupt(t *testing.T) {
	store := openTestStore(t)

	store.SetValue(HighScoreKey("2048"), "not-a-number")
	if _, err := store.LoadHighScore("2048"); err == nil {
		t.Error("expected error for corrupt high score")
	}
}

func TestResetHighScore(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveHighScore("2048", 512); err != nil {
		t.Fatalf("SaveHighScore() failed: %v", err)
	}
	if err := store.ResetHighScore("2048"); err != nil {
		t.Fatalf("ResetHighScore() failed: %v", err)
	}

	hs, err := store.LoadHighScore("2048")
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if hs != 0 {
		t.Errorf("high score after reset = %d, want 0", hs)
	}

	// Only-raise semantics resume from zero.
	changed, err := store.SaveHighScore("2048", 16)
	if err != nil {
		t.Fatalf("SaveHighScore() failed: %v", err)
	}
	if !changed {
		t.Error("SaveHighScore(16) after reset should report a change")
	}
}

func TestExportXLSX(t *testing.T) {
	store := openTestStore(t)
	store.SaveScore("2048", 512)
	store.SaveScore("2048", 2048)

	entries, err := store.AllScores("2048")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scores.xlsx")
	if err := ExportXLSX(path, entries); err != nil {
		t.Fatalf("ExportXLSX() failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Sheet1", "A1")
	if header != "rank" {
		t.Errorf("A1 = %q, want rank", header)
	}
	top, _ := f.GetCellValue("Sheet1", "C2")
	if top != "2048" {
		t.Errorf("C2 = %q, want 2048", top)
	}
	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
}
