package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes score entries to an .xlsx workbook at path.
func ExportXLSX(path string, entries []ScoreEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("storage: cannot create sheet writer: %w", err)
	}

	header := []any{"rank", "game", "score", "played_at"}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("storage: cannot write header: %w", err)
	}

	for i, e := range entries {
		row := []any{i + 1, e.GameID, e.Score, e.CreatedAt.Format(sqliteTimeLayout)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("storage: cannot address row %d: %w", i+1, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("storage: cannot write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("storage: cannot flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("storage: cannot save %s: %w", path, err)
	}
	return nil
}
