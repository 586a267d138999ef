package professional

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"costos/internal/domain/auth"
	"costos/internal/domain/costing"
	"costos/internal/domain/expenses"
	"costos/internal/platform/crypto"
)

var ErrInvalidCUIT = errors.New("invalid cuit")

// RoleResolver maps a role name to its id.
type RoleResolver interface {
	RoleIDByName(ctx context.Context, name string) (string, error)
}

type Service struct {
	store  *Store
	roles  RoleResolver
	crypto *crypto.Service
}

func NewService(store *Store, roles RoleResolver, cryptoSvc *crypto.Service) *Service {
	return &Service{store: store, roles: roles, crypto: cryptoSvc}
}

// List returns the caller's colleagues. A caller without a company sees
// only themself.
func (s *Service) List(ctx context.Context, viewer auth.UserContext) ([]*Professional, error) {
	if !viewer.HasCompany() {
		p, err := s.store.Get(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		s.finish(p)
		return []*Professional{p}, nil
	}
	list, err := s.store.ListByCompany(ctx, viewer.CompanyID)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		s.finish(p)
	}
	return list, nil
}

// Get hides professionals of other companies behind ErrNotFound.
func (s *Service) Get(ctx context.Context, viewer auth.UserContext, id string) (*Professional, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(viewer, p) {
		return nil, ErrNotFound
	}
	s.finish(p)
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, viewer auth.UserContext, id string, in ProfileInput) (*Professional, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(viewer, p) {
		return nil, ErrNotFound
	}
	if p.ID != viewer.UserID {
		return nil, ErrForbidden
	}

	cuit := ""
	if in.CUIT != "" {
		normalized, ok := NormalizeCUIT(in.CUIT)
		if !ok {
			return nil, ErrInvalidCUIT
		}
		cuit = normalized
	}
	plain, sealed, err := s.sealCUIT(cuit)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfile(ctx, id, in, plain, sealed); err != nil {
		return nil, err
	}
	return s.Get(ctx, viewer, id)
}

// Register creates a professional account, attached to companyID when it
// is not empty.
func (s *Service) Register(ctx context.Context, in AccountInput, companyID string) (string, error) {
	roleID, err := s.roles.RoleIDByName(ctx, auth.RoleProfessional)
	if err != nil {
		return "", fmt.Errorf("resolve professional role: %w", err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	return s.store.CreateAccount(ctx, in, hash, roleID, companyID)
}

// HourlyRate is the personal cost per hour charged on a job.
func (s *Service) HourlyRate(ctx context.Context, id string) (decimal.Decimal, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return costing.ProfessionalHourlyRate(expenses.ToCosting(p.Expenses), p.companyWeeklyHours)
}

func (s *Service) finish(p *Professional) {
	if len(p.cuitEnc) > 0 {
		plain, err := s.crypto.DecryptString(p.cuitEnc)
		if err != nil {
			slog.Warn("cuit decrypt failed", "userId", p.ID, "err", err)
		} else {
			p.CUIT = plain
		}
	}
	if err := expenses.Annotate(p.Expenses); err != nil {
		p.Incomplete = err.Error()
		return
	}
	sum, err := costing.SumNormalized(expenses.ToCosting(p.Expenses))
	if err != nil {
		p.Incomplete = err.Error()
		return
	}
	p.Normalized = sum
	rate, err := costing.ProfessionalHourlyRate(expenses.ToCosting(p.Expenses), p.companyWeeklyHours)
	if err != nil {
		p.Incomplete = err.Error()
		return
	}
	p.HourlyRate = rate
}

// sealCUIT keeps the plain column empty whenever encryption is configured.
func (s *Service) sealCUIT(cuit string) (string, []byte, error) {
	if cuit == "" || !s.crypto.Configured() {
		return cuit, nil, nil
	}
	sealed, err := s.crypto.EncryptString(cuit)
	if err != nil {
		return "", nil, err
	}
	return "", sealed, nil
}

func visible(viewer auth.UserContext, p *Professional) bool {
	if viewer.IsAdmin() || p.ID == viewer.UserID {
		return true
	}
	return viewer.HasCompany() && p.CompanyID == viewer.CompanyID
}
