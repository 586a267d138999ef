package expenses

import (
	"errors"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

var (
	ErrUnknownType = errors.New("unknown expense type")
	ErrTypeExists  = errors.New("expense type already exists")
)

// OwnerKind tags who pays an expense. Company and personal expenses share
// one table and one set of formulas.
type OwnerKind string

const (
	OwnerCompany      OwnerKind = "company"
	OwnerProfessional OwnerKind = "professional"
)

type Owner struct {
	Kind OwnerKind
	ID   string
}

func CompanyOwner(companyID string) Owner {
	return Owner{Kind: OwnerCompany, ID: companyID}
}

func ProfessionalOwner(userID string) Owner {
	return Owner{Kind: OwnerProfessional, ID: userID}
}

type Type struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Expense struct {
	ID          string             `json:"id"`
	TypeID      string             `json:"typeId"`
	TypeName    string             `json:"typeName"`
	Description string             `json:"description"`
	Amount      decimal.Decimal    `json:"amount"`
	Period      costing.Period     `json:"period"`
	PeriodLabel string             `json:"periodLabel"`
	Normalized  costing.Normalized `json:"normalized"`
}

type Input struct {
	TypeID      string          `json:"typeId" validate:"required,uuid"`
	Description string          `json:"description" validate:"max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Period      int             `json:"period" validate:"oneof=1 7 15 30 60 90 120 180 360"`
}

type TypeInput struct {
	Name string `json:"name" validate:"required,max=80"`
}

// Annotate fills the derived figures of each expense.
func Annotate(list []Expense) error {
	for i := range list {
		n, err := costing.Normalize(list[i].Amount, list[i].Period)
		if err != nil {
			return err
		}
		list[i].Normalized = n
		list[i].PeriodLabel = list[i].Period.String()
	}
	return nil
}

func ToCosting(list []Expense) []costing.Expense {
	out := make([]costing.Expense, 0, len(list))
	for _, e := range list {
		out = append(out, costing.Expense{Amount: e.Amount, Period: e.Period})
	}
	return out
}

// PeriodOption describes one allowed period for form builders.
type PeriodOption struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

func PeriodOptions() []PeriodOption {
	out := make([]PeriodOption, 0, len(costing.Periods))
	for _, p := range costing.Periods {
		out = append(out, PeriodOption{Days: int(p), Label: p.String()})
	}
	return out
}
