package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"costos/internal/domain/jobs"
)

// CompanyWorkbook lists every costed job of a company, one row each, plus a
// totals row. Jobs that could not be costed go to a second sheet.
func CompanyWorkbook(companyName string, rows []*jobs.Costs, skipped []*jobs.IncompleteError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Jobs"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	lastCol := columns[len(columns)-1]
	widths := []float64{12, 14, 32, 8, 16, 16, 16, 16, 18, 18, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0.00"
	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeCell(companyName))
	f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	for i, h := range csvHeader {
		f.SetCellValue(sheet, fmt.Sprintf("%s3", columns[i]), h)
	}
	f.SetCellStyle(sheet, "A3", lastCol+"3", headerStyle)

	row := 4
	for _, c := range rows {
		t := c.Totals
		values := []any{
			c.Job.Date,
			sanitizeCell(c.Job.FileNumber),
			sanitizeCell(c.Job.Client),
			t.TotalHours,
			t.Overhead.InexactFloat64(),
			t.Labor.InexactFloat64(),
			t.Mobility.InexactFloat64(),
			t.Instrumental.InexactFloat64(),
			t.Contributions.InexactFloat64(),
			t.SpecificExpenses.InexactFloat64(),
			t.GrandTotal.InexactFloat64(),
		}
		for i, v := range values {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", columns[i], row), v)
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), rowStyle)
		row++
	}

	if len(rows) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Total")
		for _, col := range columns[3:] {
			formula := fmt.Sprintf("SUM(%s4:%s%d)", col, col, row-1)
			if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, row), formula); err != nil {
				return nil, fmt.Errorf("set total %s: %w", col, err)
			}
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), totalStyle)
	}

	if len(skipped) > 0 {
		if _, err := f.NewSheet("Incomplete"); err != nil {
			return nil, fmt.Errorf("create incomplete sheet: %w", err)
		}
		f.SetCellValue("Incomplete", "A1", "Job")
		f.SetCellValue("Incomplete", "B1", "Reason")
		f.SetCellStyle("Incomplete", "A1", "B1", headerStyle)
		f.SetColWidth("Incomplete", "A", "A", 40)
		f.SetColWidth("Incomplete", "B", "B", 80)
		for i, s := range skipped {
			f.SetCellValue("Incomplete", fmt.Sprintf("A%d", i+2), s.ID)
			f.SetCellValue("Incomplete", fmt.Sprintf("B%d", i+2), sanitizeCell(s.Err.Error()))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
