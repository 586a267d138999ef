package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"

	"costos/internal/domain/jobs"
)

var csvHeader = []string{
	"Date",
	"File Number",
	"Client",
	"Hours",
	"Company overhead",
	"Professional cost",
	"Mobility cost",
	"Instrumental cost",
	"Statutory contributions",
	"Other specific expenses",
	"Total cost",
}

// JobCSV is a header plus one row with the job's live figures.
func JobCSV(c *jobs.Costs) ([]byte, error) {
	t := c.Totals
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	row := []string{
		c.Job.Date,
		sanitizeCell(c.Job.FileNumber),
		sanitizeCell(c.Job.Client),
		strconv.Itoa(t.TotalHours),
		money(t.Overhead),
		money(t.Labor),
		money(t.Mobility),
		money(t.Instrumental),
		money(t.Contributions),
		money(t.SpecificExpenses),
		money(t.GrandTotal),
	}
	if err := writer.Write(row); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}

// sanitizeCell keeps spreadsheet applications from reading user text as a
// formula.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
