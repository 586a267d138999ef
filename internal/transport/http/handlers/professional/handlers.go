package professionalhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/params"
	"costos/internal/domain/professional"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

// PreferenceStore holds each professional's job default overrides.
type PreferenceStore interface {
	Preferences(ctx context.Context, userID string) ([]params.Preference, error)
	SetPreferences(ctx context.Context, userID string, values map[string]decimal.Decimal) error
}

type Handler struct {
	Service     *professional.Service
	Preferences PreferenceStore
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
}

func NewHandler(service *professional.Service, prefs PreferenceStore, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	h := &Handler{Service: service, Preferences: prefs, Perms: perms}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/professionals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProfessionalsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProfessionalsWrite, h.Perms), middleware.RequireCompany).Post("/", h.handleInvite)
		r.Get("/me/preferences", h.handleGetPreferences)
		r.Put("/me/preferences", h.handleSetPreferences)
		r.With(middleware.RequirePermission(auth.PermProfessionalsRead, h.Perms)).Get("/{professionalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermProfessionalsWrite, h.Perms)).Put("/{professionalID}", h.handleUpdate)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	p, err := h.Service.Get(r.Context(), user, user.UserID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, p, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Service.List(r.Context(), user)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if list == nil {
		list = []*professional.Professional{}
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, p, requestID)
}

// handleUpdate replaces the caller's own profile and personal expenses.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload professional.ProfileInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.FirstName = strings.TrimSpace(payload.FirstName)
	payload.LastName = strings.TrimSpace(payload.LastName)
	payload.LicenseNumber = strings.TrimSpace(payload.LicenseNumber)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user, id, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     "professional.update",
		EntityType: "professional",
		EntityID:   id,
		After:      updated,
	})
	api.Success(w, updated, requestID)
}

// handleInvite creates a colleague account inside the caller's company.
func (h *Handler) handleInvite(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload professional.AccountInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.Register(r.Context(), payload, user.CompanyID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     "professional.invite",
		EntityType: "professional",
		EntityID:   id,
		After:      map[string]string{"username": payload.Username, "email": payload.Email},
	})
	created, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	prefs, err := h.Preferences.Preferences(r.Context(), user.UserID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, prefs, requestID)
}

// handleSetPreferences replaces every override; keys left out return to
// the global default.
func (h *Handler) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload map[string]decimal.Decimal
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	err := h.Preferences.SetPreferences(r.Context(), user.UserID, payload)
	if errors.Is(err, params.ErrUnknownKey) || errors.Is(err, params.ErrInvalidValue) {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "preferences", Reason: err.Error()}})
		return
	}
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     "preferences.update",
		EntityType: "professional",
		EntityID:   user.UserID,
		After:      payload,
	})
	h.handleGetPreferences(w, r)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "professionalID")
	v := shared.NewValidator()
	v.UUID("id", id)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", false
	}
	return id, true
}
