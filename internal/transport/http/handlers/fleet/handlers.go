package fleethandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/fleet"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

type Handler struct {
	Service *fleet.Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service *fleet.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	h := &Handler{Service: service, Perms: perms}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermFleetRead, h.Perms)
	write := middleware.RequirePermission(auth.PermFleetWrite, h.Perms)

	r.Route("/vehicles", func(r chi.Router) {
		r.With(read).Get("/", h.handleListVehicles)
		r.With(write, middleware.RequireCompany).Post("/", h.handleCreateVehicle)
		r.With(read).Get("/{id}", h.handleGetVehicle)
		r.With(write, middleware.RequireCompany).Put("/{id}", h.handleUpdateVehicle)
		r.With(write, middleware.RequireCompany).Delete("/{id}", h.handleDeleteVehicle)
	})
	r.Route("/instruments", func(r chi.Router) {
		r.With(read).Get("/", h.handleListInstruments)
		r.With(write, middleware.RequireCompany).Post("/", h.handleCreateInstrument)
		r.With(read).Get("/{id}", h.handleGetInstrument)
		r.With(write, middleware.RequireCompany).Put("/{id}", h.handleUpdateInstrument)
		r.With(write, middleware.RequireCompany).Delete("/{id}", h.handleDeleteInstrument)
	})
}

func (h *Handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.HasCompany() {
		api.Success(w, []*fleet.Vehicle{}, requestID)
		return
	}
	list, err := h.Service.ListVehicles(r.Context(), user.CompanyID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if list == nil {
		list = []*fleet.Vehicle{}
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	v, err := h.Service.GetVehicle(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, v, requestID)
}

func decodeVehicle(w http.ResponseWriter, r *http.Request) (fleet.VehicleInput, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload fleet.VehicleInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return payload, false
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.FuelType = strings.ToLower(strings.TrimSpace(payload.FuelType))
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return payload, false
	}
	return payload, true
}

func (h *Handler) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payload, ok := decodeVehicle(w, r)
	if !ok {
		return
	}
	created, err := h.Service.CreateVehicle(r.Context(), user.CompanyID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "vehicle.create", "vehicle", created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	payload, ok := decodeVehicle(w, r)
	if !ok {
		return
	}
	before, err := h.Service.GetVehicle(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	updated, err := h.Service.UpdateVehicle(r.Context(), user.CompanyID, id, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "vehicle.update", "vehicle", id, before, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteVehicle(r.Context(), user.CompanyID, id); err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "vehicle.delete", "vehicle", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.HasCompany() {
		api.Success(w, []*fleet.Instrument{}, requestID)
		return
	}
	list, err := h.Service.ListInstruments(r.Context(), user.CompanyID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if list == nil {
		list = []*fleet.Instrument{}
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGetInstrument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	inst, err := h.Service.GetInstrument(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, inst, requestID)
}

func decodeInstrument(w http.ResponseWriter, r *http.Request) (fleet.InstrumentInput, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload fleet.InstrumentInput
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

func (h *Handler) handleCreateInstrument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payload, ok := decodeInstrument(w, r)
	if !ok {
		return
	}
	created, err := h.Service.CreateInstrument(r.Context(), user.CompanyID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "instrument.create", "instrument", created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdateInstrument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	payload, ok := decodeInstrument(w, r)
	if !ok {
		return
	}
	before, err := h.Service.GetInstrument(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	updated, err := h.Service.UpdateInstrument(r.Context(), user.CompanyID, id, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "instrument.update", "instrument", id, before, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDeleteInstrument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteInstrument(r.Context(), user.CompanyID, id); err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "instrument.delete", "instrument", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

// scoped resolves the caller and a valid path id. Items of a caller
// without a company do not exist.
func scoped(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	v := shared.NewValidator()
	v.UUID("id", id)
	if v.Reject(w, requestID) {
		return user, "", false
	}
	if !user.HasCompany() {
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
		return user, "", false
	}
	return user, id, true
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entity, id string, before, after any) {
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		Before:     before,
		After:      after,
	})
}
