package company

import (
	"errors"
	"time"

	"costos/internal/domain/costing"
	"costos/internal/domain/expenses"
)

var (
	ErrNotFound      = errors.New("company not found")
	ErrAlreadyMember = errors.New("user already belongs to a company")
)

type Company struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	WeeklyHours int                   `json:"weeklyHours"`
	Expenses    []expenses.Expense    `json:"expenses"`
	Rates       *costing.CompanyRates `json:"rates,omitempty"`
	Incomplete  string                `json:"incomplete,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// Summary is the admin listing row.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	WeeklyHours   int       `json:"weeklyHours"`
	Professionals int       `json:"professionals"`
	Vehicles      int       `json:"vehicles"`
	Instruments   int       `json:"instruments"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Input struct {
	Name        string           `json:"name" validate:"required,max=120"`
	WeeklyHours int              `json:"weeklyHours" validate:"gte=1,lte=168"`
	Expenses    []expenses.Input `json:"expenses" validate:"dive"`
}
