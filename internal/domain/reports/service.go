package reports

import (
	"context"
	"strings"

	"costos/internal/domain/jobs"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File is a rendered export. It is only built after rendering succeeded,
// so a failure never reaches the client as a truncated download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type CostSource interface {
	Costs(ctx context.Context, companyID, id string) (*jobs.Costs, error)
	CompanyCosts(ctx context.Context, companyID string) ([]*jobs.Costs, []*jobs.IncompleteError, error)
}

type CompanyNamer interface {
	CompanyName(ctx context.Context, id string) (string, error)
}

type Recorder interface {
	RecordReport()
}

type Service struct {
	jobs      CostSource
	companies CompanyNamer
	metrics   Recorder
}

func NewService(source CostSource, companies CompanyNamer, metrics Recorder) *Service {
	return &Service{jobs: source, companies: companies, metrics: metrics}
}

func (s *Service) JobCSV(ctx context.Context, companyID, id string) (File, error) {
	c, err := s.jobs.Costs(ctx, companyID, id)
	if err != nil {
		return File{}, err
	}
	body, err := JobCSV(c)
	if err != nil {
		return File{}, err
	}
	return s.done(File{Name: fileName(c.Job, "csv"), ContentType: ContentTypeCSV, Body: body}), nil
}

func (s *Service) JobPDF(ctx context.Context, companyID, id string) (File, error) {
	c, err := s.jobs.Costs(ctx, companyID, id)
	if err != nil {
		return File{}, err
	}
	name, err := s.companies.CompanyName(ctx, companyID)
	if err != nil {
		return File{}, err
	}
	body, err := JobPDF(c, name)
	if err != nil {
		return File{}, err
	}
	return s.done(File{Name: fileName(c.Job, "pdf"), ContentType: ContentTypePDF, Body: body}), nil
}

func (s *Service) CompanyXLSX(ctx context.Context, companyID string) (File, error) {
	rows, skipped, err := s.jobs.CompanyCosts(ctx, companyID)
	if err != nil {
		return File{}, err
	}
	name, err := s.companies.CompanyName(ctx, companyID)
	if err != nil {
		return File{}, err
	}
	body, err := CompanyWorkbook(name, rows, skipped)
	if err != nil {
		return File{}, err
	}
	return s.done(File{Name: "jobs.xlsx", ContentType: ContentTypeXLSX, Body: body}), nil
}

func (s *Service) done(f File) File {
	if s.metrics != nil {
		s.metrics.RecordReport()
	}
	return f
}

// fileName prefers the file number and falls back to the job id. Only
// characters safe in a Content-Disposition header are kept.
func fileName(j *jobs.Job, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == '/' || r == ' ' || r == '.':
			return '-'
		}
		return -1
	}, j.FileNumber)
	if base == "" {
		base = j.ID
	}
	return "job-" + base + "." + ext
}
