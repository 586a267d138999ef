package professional

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
	"costos/internal/domain/expenses"
)

var (
	ErrNotFound      = errors.New("professional not found")
	ErrForbidden     = errors.New("only the professional can edit their profile")
	ErrUsernameTaken = errors.New("username already taken")
	ErrLicenseTaken  = errors.New("license number already registered")
	ErrNoCompany     = errors.New("caller has no company")
)

type Professional struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	Email         string             `json:"email"`
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	LicenseNumber string             `json:"licenseNumber,omitempty"`
	CUIT          string             `json:"cuit,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	RoleName      string             `json:"role"`
	CompanyID     string             `json:"companyId,omitempty"`
	CompanyName   string             `json:"companyName,omitempty"`
	Expenses      []expenses.Expense `json:"expenses,omitempty"`
	Normalized    costing.Normalized `json:"normalized"`
	HourlyRate    decimal.Decimal    `json:"hourlyRate"`
	Incomplete    string             `json:"incomplete,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`

	companyWeeklyHours *int
	cuitEnc            []byte
}

func (p *Professional) FullName() string {
	switch {
	case p.FirstName == "" && p.LastName == "":
		return p.Username
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.LastName + ", " + p.FirstName
}

type ProfileInput struct {
	Email         string           `json:"email" validate:"omitempty,email,max=120"`
	FirstName     string           `json:"firstName" validate:"required,max=80"`
	LastName      string           `json:"lastName" validate:"required,max=80"`
	LicenseNumber string           `json:"licenseNumber" validate:"max=30"`
	CUIT          string           `json:"cuit" validate:"max=13"`
	Phone         string           `json:"phone" validate:"max=40"`
	Expenses      []expenses.Input `json:"expenses" validate:"dive"`
}

// AccountInput creates a login. It backs self sign-up and colleague
// invitations.
type AccountInput struct {
	Username  string `json:"username" validate:"required,min=3,max=40,alphanum"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName" validate:"max=80"`
	LastName  string `json:"lastName" validate:"max=80"`
}
