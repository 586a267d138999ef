package companyhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/company"
	"costos/internal/domain/expenses"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

// ExpenseTypes is the global expense category list.
type ExpenseTypes interface {
	ListTypes(ctx context.Context) ([]expenses.Type, error)
	CreateType(ctx context.Context, name string) (expenses.Type, error)
}

type Handler struct {
	Service *company.Service
	Types   ExpenseTypes
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service *company.Service, types ExpenseTypes, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	h := &Handler{Service: service, Types: types, Perms: perms}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCompaniesList, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCompanyWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermCompanyRead, h.Perms), middleware.RequireCompany).Get("/mine", h.handleGetMine)
		r.With(middleware.RequirePermission(auth.PermCompanyWrite, h.Perms), middleware.RequireCompany).Put("/mine", h.handleUpdateMine)
	})
	r.Route("/expense-types", func(r chi.Router) {
		r.Get("/", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermExpenseTypesWrite, h.Perms)).Post("/", h.handleCreateType)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if list == nil {
		list = []company.Summary{}
	}
	api.Success(w, list, requestID)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (company.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload company.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return payload, false
	}
	payload.Name = strings.TrimSpace(payload.Name)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return payload, false
	}
	return payload, true
}

// handleCreate makes the caller the first member of a new company.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if user.HasCompany() {
		api.Fail(w, http.StatusConflict, "conflict", company.ErrAlreadyMember.Error(), requestID)
		return
	}
	payload, ok := decodeInput(w, r)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), user.UserID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  created.ID,
		ActorID:    user.UserID,
		Action:     "company.create",
		EntityType: "company",
		EntityID:   created.ID,
		After:      created,
	})
	api.Created(w, created, requestID)
}

func (h *Handler) handleGetMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	c, err := h.Service.Get(r.Context(), user.CompanyID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, c, requestID)
}

func (h *Handler) handleUpdateMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payload, ok := decodeInput(w, r)
	if !ok {
		return
	}

	before, err := h.Service.Get(r.Context(), user.CompanyID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), user.CompanyID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     "company.update",
		EntityType: "company",
		EntityID:   user.CompanyID,
		Before:     before,
		After:      updated,
	})
	api.Success(w, updated, requestID)
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	types, err := h.Types.ListTypes(r.Context())
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if types == nil {
		types = []expenses.Type{}
	}
	api.Success(w, map[string]any{
		"types":   types,
		"periods": expenses.PeriodOptions(),
	}, requestID)
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload expenses.TypeInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Types.CreateType(r.Context(), payload.Name)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    user.UserID,
		Action:     "expense_type.create",
		EntityType: "expense_type",
		EntityID:   created.ID,
		After:      created,
	})
	api.Created(w, created, requestID)
}
