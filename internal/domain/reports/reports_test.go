package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"costos/internal/domain/costing"
	"costos/internal/domain/jobs"
)

func sampleCosts() *jobs.Costs {
	d := decimal.RequireFromString
	return &jobs.Costs{
		Job: &jobs.Job{
			ID:           "7f0c",
			Date:         "2024-03-05",
			FileNumber:   "EXP 12/24",
			Client:       "Muñoz, José",
			Partidas:     1,
			LotesFinales: 1,
			Fees:         costing.Fees{Travel: d("150")},
		},
		Actuantes: []jobs.ActuanteLine{{
			Actuante:   jobs.Actuante{UserID: "u1", Name: "Pérez, Ana", Hours: 10},
			HourlyRate: d("50"),
			Amount:     d("500"),
		}},
		Totals: costing.JobTotals{
			TotalHours:       10,
			Overhead:         d("1000"),
			Labor:            d("500"),
			Mobility:         d("1250"),
			Instrumental:     d("852.5"),
			Contributions:    d("5090"),
			SpecificExpenses: d("1216.5"),
			StampFee:         d("1059"),
			GrandTotal:       d("9909"),
		},
	}
}

func TestJobCSV(t *testing.T) {
	body, err := JobCSV(sampleCosts())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	if records[0][0] != "Date" || records[0][10] != "Total cost" || len(records[0]) != 11 {
		t.Fatalf("unexpected header %v", records[0])
	}
	want := []string{"2024-03-05", "EXP 12/24", "Muñoz, José", "10", "1000.00", "500.00", "1250.00", "852.50", "5090.00", "1216.50", "9909.00"}
	for i, v := range want {
		if records[1][i] != v {
			t.Fatalf("column %d: expected %q, got %q", i, v, records[1][i])
		}
	}
}

func TestSanitizeCell(t *testing.T) {
	cases := map[string]string{
		"=cmd()": "'=cmd()",
		"+1":     "'+1",
		"@x":     "'@x",
		"plain":  "plain",
		"":       "",
	}
	for in, want := range cases {
		if got := sanitizeCell(in); got != want {
			t.Fatalf("sanitizeCell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJobPDF(t *testing.T) {
	body, err := JobPDF(sampleCosts(), "Agrimensura Sur")
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("expected a pdf document")
	}
}

func TestCompanyWorkbook(t *testing.T) {
	skipped := []*jobs.IncompleteError{{Entity: "company", ID: "c9", Err: costing.ErrZeroWorkingHours}}
	body, err := CompanyWorkbook("Agrimensura Sur", []*jobs.Costs{sampleCosts()}, skipped)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	client, err := f.GetCellValue("Jobs", "C4")
	if err != nil || client != "Muñoz, José" {
		t.Fatalf("unexpected client cell %q (%v)", client, err)
	}
	formula, err := f.GetCellFormula("Jobs", "K5")
	if err != nil || formula != "SUM(K4:K4)" {
		t.Fatalf("unexpected total formula %q (%v)", formula, err)
	}
	id, err := f.GetCellValue("Incomplete", "A2")
	if err != nil || id != "j9" {
		t.Fatalf("expected the skipped job listed, got %q (%v)", id, err)
	}
}

type stubCosts struct {
	costs *jobs.Costs
	err   error
}

func (s stubCosts) Costs(context.Context, string, string) (*jobs.Costs, error) {
	return s.costs, s.err
}

func (s stubCosts) CompanyCosts(context.Context, string) ([]*jobs.Costs, []*jobs.IncompleteError, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return []*jobs.Costs{s.costs}, nil, nil
}

type stubNames struct{}

func (stubNames) CompanyName(context.Context, string) (string, error) {
	return "Agrimensura Sur", nil
}

type countingRecorder struct {
	n int
}

func (c *countingRecorder) RecordReport() {
	c.n++
}

func TestServiceRecordsRenderedReports(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewService(stubCosts{costs: sampleCosts()}, stubNames{}, rec)

	file, err := svc.JobCSV(context.Background(), "c1", "7f0c")
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if file.Name != "job-EXP-12-24.csv" || file.ContentType != ContentTypeCSV {
		t.Fatalf("unexpected file %s %s", file.Name, file.ContentType)
	}
	if _, err := svc.JobPDF(context.Background(), "c1", "7f0c"); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if _, err := svc.CompanyXLSX(context.Background(), "c1"); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if rec.n != 3 {
		t.Fatalf("expected 3 recorded reports, got %d", rec.n)
	}
}

func TestServiceKeepsIncompleteError(t *testing.T) {
	rec := &countingRecorder{}
	inc := &jobs.IncompleteError{Entity: "company", ID: "c1", Err: costing.ErrZeroWorkingHours}
	svc := NewService(stubCosts{err: inc}, stubNames{}, rec)

	_, err := svc.JobCSV(context.Background(), "c1", "j1")
	var got *jobs.IncompleteError
	if !errors.As(err, &got) {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if rec.n != 0 {
		t.Fatalf("failed exports must not be counted")
	}
}

func TestFileNameFallsBackToID(t *testing.T) {
	if got := fileName(&jobs.Job{ID: "abc"}, "pdf"); got != "job-abc.pdf" {
		t.Fatalf("unexpected name %q", got)
	}
}
