// Package export writes the result table consumed by the external
// dashboard.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/avoronov/smb-tagger/internal/model"
)

var headers = []string{"CLI_ID", "CLN_NAME", "TAGS"}

// FormatTags serializes a tag set as a python-list-style literal, the form
// the downstream dashboard parses. Tags are sorted for deterministic rows.
func FormatTags(tags model.TagSet) string {
	sorted := tags.Sorted()
	if len(sorted) == 0 {
		return "[]"
	}
	return "['" + strings.Join(sorted, "', '") + "']"
}

// WriteCSV writes one row per client to path.
func WriteCSV(path string, results []model.ClientTagResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		if err := w.Write([]string{r.ClientID, r.Name, FormatTags(r.Tags)}); err != nil {
			return fmt.Errorf("write row for %s: %w", r.ClientID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes one row per client to an XLSX workbook at path.
func WriteXLSX(path string, results []model.ClientTagResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "ClientTags"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, r := range results {
		values := []string{r.ClientID, r.Name, FormatTags(r.Tags)}
		for col, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				return fmt.Errorf("write row for %s: %w", r.ClientID, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Write persists results in the configured format. basePath carries no
// extension; format is csv, xlsx or both.
func Write(basePath, format string, results []model.ClientTagResult) error {
	switch format {
	case "csv":
		return WriteCSV(basePath+".csv", results)
	case "xlsx":
		return WriteXLSX(basePath+".xlsx", results)
	case "both":
		if err := WriteCSV(basePath+".csv", results); err != nil {
			return err
		}
		return WriteXLSX(basePath+".xlsx", results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
