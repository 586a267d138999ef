package expenses

import (
	"testing"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

func TestAnnotateNormalizesEachExpense(t *testing.T) {
	list := []Expense{
		{Amount: decimal.NewFromInt(3000), Period: costing.PeriodMonthly},
		{Amount: decimal.NewFromInt(36000), Period: costing.PeriodYearly},
	}
	if err := Annotate(list); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if !list[0].Normalized.Weekly.Equal(decimal.NewFromInt(700)) || list[0].PeriodLabel != "monthly" {
		t.Fatalf("unexpected first expense %+v", list[0])
	}
	if !list[1].Normalized.Monthly.Equal(decimal.NewFromInt(3000)) || !list[1].Normalized.Yearly.Equal(decimal.NewFromInt(36000)) {
		t.Fatalf("unexpected second expense %+v", list[1])
	}
}

func TestAnnotateRejectsUnknownPeriod(t *testing.T) {
	list := []Expense{{Amount: decimal.NewFromInt(1), Period: costing.Period(45)}}
	if err := Annotate(list); err == nil {
		t.Fatal("expected invalid period error")
	}
}

func TestToCosting(t *testing.T) {
	out := ToCosting([]Expense{{Amount: decimal.NewFromInt(10), Period: costing.PeriodDaily}})
	if len(out) != 1 || out[0].Period != costing.PeriodDaily || !out[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected conversion %+v", out)
	}
}

func TestOwnerColumn(t *testing.T) {
	if col, err := ownerColumn(OwnerCompany); err != nil || col != "company_id" {
		t.Fatalf("company: %q %v", col, err)
	}
	if col, err := ownerColumn(OwnerProfessional); err != nil || col != "user_id" {
		t.Fatalf("professional: %q %v", col, err)
	}
	if _, err := ownerColumn("vendor"); err == nil {
		t.Fatal("expected error for unknown owner")
	}
}

func TestPeriodOptions(t *testing.T) {
	opts := PeriodOptions()
	if len(opts) != 9 || opts[0].Days != 1 || opts[8].Label != "yearly" {
		t.Fatalf("unexpected options %+v", opts)
	}
}
