package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

var ErrNotFound = errors.New("job not found")

// Job stores its owning company explicitly; it never depends on which
// professional happens to be assigned first.
type Job struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"companyId"`
	CreatedBy        string          `json:"createdBy,omitempty"`
	Date             string          `json:"date"`
	FileNumber       string          `json:"fileNumber"`
	Client           string          `json:"client"`
	Description      string          `json:"description"`
	Partidas         int             `json:"partidas"`
	LotesFinales     int             `json:"lotesFinales"`
	ContributionCopa decimal.Decimal `json:"contributionCopa"`
	ContributionCaja decimal.Decimal `json:"contributionCaja"`
	Fees             costing.Fees    `json:"fees"`
	Actuantes        []Actuante      `json:"actuantes"`
	Movilidad        []Movilidad     `json:"movilidad"`
	Instrumental     []Instrumental  `json:"instrumental"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type Actuante struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Hours  int    `json:"hours"`
}

type Movilidad struct {
	VehicleID string `json:"vehicleId"`
	Name      string `json:"name"`
	Km        int    `json:"km"`
}

type Instrumental struct {
	InstrumentID string `json:"instrumentId"`
	Name         string `json:"name"`
	Workdays     int    `json:"workdays"`
}

type Summary struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	FileNumber string    `json:"fileNumber"`
	Client     string    `json:"client"`
	TotalHours int       `json:"totalHours"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows a company's job list. Zero values match everything.
type ListFilter struct {
	From   time.Time
	To     time.Time
	Client string
	Limit  int
	Offset int
}

type ActuanteInput struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Hours  int    `json:"hours" validate:"gte=1"`
}

type MovilidadInput struct {
	VehicleID string `json:"vehicleId" validate:"required,uuid"`
	Km        int    `json:"km" validate:"gte=1"`
}

type InstrumentalInput struct {
	InstrumentID string `json:"instrumentId" validate:"required,uuid"`
	Workdays     int    `json:"workdays" validate:"gte=1"`
}

// Input is a job with all three assignment collections. It is saved as a
// whole or not at all.
type Input struct {
	Date             string              `json:"date" validate:"required,datetime=2006-01-02"`
	FileNumber       string              `json:"fileNumber" validate:"max=40"`
	Client           string              `json:"client" validate:"required,max=200"`
	Description      string              `json:"description" validate:"max=2000"`
	Partidas         *int                `json:"partidas" validate:"omitempty,gte=0"`
	LotesFinales     *int                `json:"lotesFinales" validate:"omitempty,gte=0"`
	ContributionCopa *decimal.Decimal    `json:"contributionCopa" validate:"omitempty,gte=0,money"`
	ContributionCaja *decimal.Decimal    `json:"contributionCaja" validate:"omitempty,gte=0,money"`
	Fees             costing.Fees        `json:"fees"`
	Actuantes        []ActuanteInput     `json:"actuantes" validate:"min=1,dive"`
	Movilidad        []MovilidadInput    `json:"movilidad" validate:"dive"`
	Instrumental     []InstrumentalInput `json:"instrumental" validate:"dive"`
}

func (in Input) partidas() int {
	if in.Partidas == nil {
		return 1
	}
	return *in.Partidas
}

func (in Input) lotesFinales() int {
	if in.LotesFinales == nil {
		return 1
	}
	return *in.LotesFinales
}

func (in Input) contributionCopa() decimal.Decimal {
	if in.ContributionCopa == nil {
		return costing.DefaultContributionCopa
	}
	return *in.ContributionCopa
}

func (in Input) contributionCaja() decimal.Decimal {
	if in.ContributionCaja == nil {
		return costing.DefaultContributionCaja
	}
	return *in.ContributionCaja
}

// FieldError is a rule the struct tags cannot express.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// Check reports duplicated assignments and negative fees.
func (in Input) Check() []FieldError {
	var out []FieldError
	seen := map[string]bool{}
	for i, a := range in.Actuantes {
		if seen[a.UserID] {
			out = append(out, FieldError{Field: fmt.Sprintf("actuantes[%d].userId", i), Reason: "is assigned twice"})
		}
		seen[a.UserID] = true
	}
	seen = map[string]bool{}
	for i, m := range in.Movilidad {
		if seen[m.VehicleID] {
			out = append(out, FieldError{Field: fmt.Sprintf("movilidad[%d].vehicleId", i), Reason: "is assigned twice"})
		}
		seen[m.VehicleID] = true
	}
	seen = map[string]bool{}
	for i, ins := range in.Instrumental {
		if seen[ins.InstrumentID] {
			out = append(out, FieldError{Field: fmt.Sprintf("instrumental[%d].instrumentId", i), Reason: "is assigned twice"})
		}
		seen[ins.InstrumentID] = true
	}
	for _, fee := range FeeLines(in.Fees) {
		switch {
		case fee.Amount.IsNegative():
			out = append(out, FieldError{Field: "fees." + fee.Key, Reason: "must be zero or greater"})
		case !costing.ValidMoney(fee.Amount):
			out = append(out, FieldError{Field: "fees." + fee.Key, Reason: "must have at most 2 decimals and 12 integer digits"})
		}
	}
	return out
}

// ReferenceError means an assignment points at a professional, vehicle or
// instrument outside the job's company.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return e.Field + " references an entity outside the company"
}

// FeeLine is one fixed fee with a stable key and a printable label.
type FeeLine struct {
	Key    string
	Label  string
	Amount decimal.Decimal
}

func FeeLines(f costing.Fees) []FeeLine {
	return []FeeLine{
		{"deeds", "Deeds", f.Deeds},
		{"filings", "Filings", f.Filings},
		{"urgentCertificate", "Urgent certificate", f.UrgentCertificate},
		{"titleStudy", "Title study", f.TitleStudy},
		{"georeferencing", "Georeferencing", f.Georeferencing},
		{"summons", "Summons", f.Summons},
		{"travel", "Travel", f.Travel},
		{"assistant", "Assistant", f.Assistant},
		{"draftsman", "Draftsman", f.Draftsman},
		{"printing", "Printing", f.Printing},
		{"markers", "Markers", f.Markers},
		{"agent", "Agent", f.Agent},
		{"specialInsurance", "Special insurance", f.SpecialInsurance},
		{"instrumentRental", "Instrument rental", f.InstrumentRental},
		{"other", "Other", f.Other},
	}
}
