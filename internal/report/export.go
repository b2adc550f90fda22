package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"stockbridge/internal"
)

// ExportRunToXLSX writes one recorded sync run to a workbook: a summary
// sheet with the counters, plus mismatch and error sheets when the run
// has any. The error sheet is the manual-retry worklist.
func ExportRunToXLSX(run internal.RunRow, outputPath string) error {
	f := excelize.NewFile()
	summary := f.GetSheetName(0)

	var stats map[string]int
	_ = json.Unmarshal([]byte(run.StatsJSON), &stats)
	var itemErrors []internal.ItemError
	_ = json.Unmarshal([]byte(run.ErrorsJSON), &itemErrors)
	var mismatches internal.SyncMismatches
	_ = json.Unmarshal([]byte(run.MismJSON), &mismatches)

	row := 1
	setCell := func(sheet string, col, r int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		_ = f.SetCellValue(sheet, cell, value)
	}

	writePair := func(key string, value any) {
		setCell(summary, 1, row, key)
		setCell(summary, 2, row, value)
		row++
	}

	writePair("run_id", run.ID)
	writePair("kind", run.Kind)
	writePair("store", run.Store)
	writePair("dry_run", run.DryRun)
	writePair("duration_ms", run.DurationMs)
	writePair("created_at", run.CreatedAt)
	for _, key := range []string{"totalWarehouse", "totalStorefront", "matched", "updated", "skipped", "errors", "orders", "succeeded", "failed", "bundlesExpanded"} {
		if value, ok := stats[key]; ok {
			writePair(key, value)
		}
	}

	if len(mismatches.NotInStorefront) > 0 || len(mismatches.NotInWarehouse) > 0 {
		sheet := "mismatches"
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		setCell(sheet, 1, 1, "sku")
		setCell(sheet, 2, 1, "side")
		r := 2
		for _, sku := range mismatches.NotInStorefront {
			setCell(sheet, 1, r, sku)
			setCell(sheet, 2, r, "not_in_storefront")
			r++
		}
		for _, sku := range mismatches.NotInWarehouse {
			setCell(sheet, 1, r, sku)
			setCell(sheet, 2, r, "not_in_warehouse")
			r++
		}
	}

	if len(itemErrors) > 0 {
		sheet := "errors"
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		setCell(sheet, 1, 1, "sku")
		setCell(sheet, 2, 1, "error")
		for i, itemErr := range itemErrors {
			setCell(sheet, 1, i+2, itemErr.SKU)
			setCell(sheet, 2, i+2, itemErr.Error)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
