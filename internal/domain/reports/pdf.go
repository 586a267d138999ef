package reports

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"costos/internal/domain/jobs"
)

type pdfTable struct {
	title   string
	headers []string
	widths  []float64
	rows    [][]string
}

// JobPDF renders the cost sheet of one job on A4 pages.
func JobPDF(c *jobs.Costs, companyName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Job cost report"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Job cost report"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Company", companyName},
		{"Date", c.Job.Date},
		{"File number", c.Job.FileNumber},
		{"Client", c.Job.Client},
		{"Partidas", strconv.Itoa(c.Job.Partidas)},
		{"Final lots", strconv.Itoa(c.Job.LotesFinales)},
	}
	for _, kv := range header {
		if kv[1] == "" {
			continue
		}
		pdf.Cell(0, 7, tr(fmt.Sprintf("%s: %s", kv[0], kv[1])))
		pdf.Ln(7)
	}
	if c.Job.Description != "" {
		pdf.MultiCell(0, 6, tr(c.Job.Description), "", "L", false)
	}
	pdf.Ln(4)

	for _, table := range pdfTables(c) {
		if len(table.rows) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(table.title))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "B", 10)
		for i, h := range table.headers {
			pdf.CellFormat(table.widths[i], 7, tr(h), "1", 0, alignFor(i), false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range table.rows {
			for i, cell := range row {
				pdf.CellFormat(table.widths[i], 6, tr(cell), "1", 0, alignFor(i), false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Grand total: "+money(c.Totals.GrandTotal)))

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func alignFor(column int) string {
	if column == 0 {
		return "L"
	}
	return "R"
}

func pdfTables(c *jobs.Costs) []pdfTable {
	t := c.Totals
	actuantes := pdfTable{
		title:   "Professionals",
		headers: []string{"Name", "Hours", "Hourly rate", "Amount"},
		widths:  []float64{85, 25, 35, 35},
	}
	for _, a := range c.Actuantes {
		actuantes.rows = append(actuantes.rows, []string{a.Name, strconv.Itoa(a.Hours), money(a.HourlyRate), money(a.Amount)})
	}
	movilidad := pdfTable{
		title:   "Vehicles",
		headers: []string{"Vehicle", "Km", "Cost per km", "Amount"},
		widths:  []float64{85, 25, 35, 35},
	}
	for _, m := range c.Movilidad {
		movilidad.rows = append(movilidad.rows, []string{m.Name, strconv.Itoa(m.Km), money(m.CostPerKm), money(m.Amount)})
	}
	instrumental := pdfTable{
		title:   "Instruments",
		headers: []string{"Instrument", "Workdays", "Cost per workday", "Amount"},
		widths:  []float64{85, 25, 35, 35},
	}
	for _, i := range c.Instrumental {
		instrumental.rows = append(instrumental.rows, []string{i.Name, strconv.Itoa(i.Workdays), money(i.CostPerWorkday), money(i.Amount)})
	}

	fees := pdfTable{
		title:   "Specific expenses",
		headers: []string{"Item", "Amount"},
		widths:  []float64{145, 35},
	}
	for _, line := range jobs.FeeLines(c.Job.Fees) {
		if line.Amount.IsZero() {
			continue
		}
		fees.rows = append(fees.rows, []string{line.Label, money(line.Amount)})
	}
	if !t.StampFee.IsZero() {
		fees.rows = append(fees.rows, []string{"Stamp duty", money(t.StampFee)})
	}
	if !t.CadastralReportFee.IsZero() {
		fees.rows = append(fees.rows, []string{"Cadastral report", money(t.CadastralReportFee)})
	}

	summary := pdfTable{
		title:   "Summary",
		headers: []string{"Category", "Amount", "Share %"},
		widths:  []float64{110, 35, 35},
		rows: [][]string{
			{"Statutory contributions", money(t.Contributions), percent(t.Percentages.Contributions)},
			{"Specific expenses", money(t.SpecificExpenses), percent(t.Percentages.SpecificExpenses)},
			{"Company overhead", money(t.Overhead), percent(t.Percentages.Overhead)},
			{"Professional cost", money(t.Labor), percent(t.Percentages.Labor)},
			{"Mobility cost", money(t.Mobility), percent(t.Percentages.Mobility)},
			{"Instrumental cost", money(t.Instrumental), percent(t.Percentages.Instrumental)},
		},
	}
	return []pdfTable{actuantes, movilidad, instrumental, fees, summary}
}

func percent(d decimal.Decimal) string {
	return d.StringFixedBank(1)
}
