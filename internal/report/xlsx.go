package report

import (
	"fmt"
	"math"

	"churnstats/domain/stats"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX saves every table of r to its own worksheet, named after the test
func WriteXLSX(path string, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range r.Tables {
		sheet := string(t.Test)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		headers := Headers(t)
		header := make([]interface{}, len(headers))
		for j, h := range headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}

		for j, row := range t.Rows {
			var values []interface{}
			if t.Test == stats.TestChiSquare {
				values = []interface{}{row.Feature, string(row.Decision), cellFloat(row.PValue), row.DegreesOfFreedom}
			} else {
				values = []interface{}{row.Feature, cellFloat(row.Statistic), cellFloat(row.PValue), string(row.Decision)}
			}
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", j+1, sheet, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// cellFloat keeps finite numbers numeric and spells out the rest, since
// spreadsheets have no NaN or infinity
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatNumber(v)
	}
	return v
}
