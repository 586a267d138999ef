package jobshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/jobs"
	"costos/internal/domain/reports"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

const createEndpoint = "jobs.create"

// IdempotencyStore replays the stored response of a repeated create.
type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     *jobs.Service
	Reports     *reports.Service
	Idempotency IdempotencyStore
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
}

func NewHandler(service *jobs.Service, reportsSvc *reports.Service, idem IdempotencyStore, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	h := &Handler{Service: service, Reports: reportsSvc, Idempotency: idem, Perms: perms}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermJobsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermJobsWrite, h.Perms)
	export := middleware.RequirePermission(auth.PermReportsRead, h.Perms)

	r.Route("/jobs", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write, middleware.RequireCompany).Post("/", h.handleCreate)
		r.With(read).Get("/defaults", h.handleDefaults)
		r.With(export, middleware.RequireCompany).Get("/export.xlsx", h.handleExportXLSX)
		r.Route("/{jobID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write, middleware.RequireCompany).Put("/", h.handleUpdate)
			r.With(write, middleware.RequireCompany).Delete("/", h.handleDelete)
			r.With(read).Get("/costs", h.handleCosts)
			r.With(export).Get("/export.csv", h.handleExportCSV)
			r.With(export).Get("/report.pdf", h.handleReportPDF)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.HasCompany() {
		api.Success(w, []jobs.Summary{}, requestID)
		return
	}
	filter, ok := listFilter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.List(r.Context(), user.CompanyID, filter)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if list == nil {
		list = []jobs.Summary{}
	}
	api.Success(w, list, requestID)
}

// listFilter reads the optional from/to/client/limit/offset query.
func listFilter(w http.ResponseWriter, r *http.Request) (jobs.ListFilter, bool) {
	q := r.URL.Query()
	page := shared.ParsePagination(r, 0, 500)
	filter := jobs.ListFilter{
		Client: strings.TrimSpace(q.Get("client")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	v := shared.NewValidator()
	if raw := q.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := q.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return filter, false
	}
	return filter, true
}

func (h *Handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	defaults, err := h.Service.Defaults(r.Context(), user.UserID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, defaults, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	j, err := h.Service.Get(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, j, requestID)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (jobs.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload jobs.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return payload, false
	}
	payload.Client = strings.TrimSpace(payload.Client)
	payload.FileNumber = strings.TrimSpace(payload.FileNumber)
	v := shared.NewValidator()
	v.Struct(payload)
	for _, fe := range payload.Check() {
		v.Add(fe.Field, fe.Reason)
	}
	if v.Reject(w, requestID) {
		return payload, false
	}
	return payload, true
}

// handleCreate honours an Idempotency-Key header: a retry with the same
// body gets the first response back instead of a second job.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, createEndpoint, key, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Created(w, stored, requestID)
			return
		}
	}

	payload, ok := decodeInput(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), user.CompanyID, user.UserID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "job.create", created.ID, nil, created)

	if key != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(created)
		if err != nil {
			slog.Warn("idempotency response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, createEndpoint, key, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	payload, ok := decodeInput(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), user.CompanyID, id, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "job.update", id, before, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), user.CompanyID, id); err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	h.record(r, user, "job.delete", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleCosts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	costs, err := h.Service.Costs(r.Context(), user.CompanyID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, costs, requestID)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	file, err := h.Reports.JobCSV(r.Context(), user.CompanyID, id)
	h.sendFile(w, r, file, err)
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	user, id, ok := scoped(w, r)
	if !ok {
		return
	}
	file, err := h.Reports.JobPDF(r.Context(), user.CompanyID, id)
	h.sendFile(w, r, file, err)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	file, err := h.Reports.CompanyXLSX(r.Context(), user.CompanyID)
	h.sendFile(w, r, file, err)
}

func (h *Handler) sendFile(w http.ResponseWriter, r *http.Request, file reports.File, err error) {
	if err != nil {
		shared.FailDomain(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Attachment(w, file.ContentType, file.Name, file.Body)
}

// scoped resolves the caller and a valid job id. Jobs of a caller without
// a company do not exist.
func scoped(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "jobID")
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

func (h *Handler) record(r *http.Request, user auth.UserContext, action, id string, before, after any) {
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: "job",
		EntityID:   id,
		Before:     before,
		After:      after,
	})
}
