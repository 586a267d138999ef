package paramshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/exchange"
	"costos/internal/domain/params"
	"costos/internal/platform/jobs"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

type RateRefresher interface {
	Refresh(ctx context.Context, actorID string) (exchange.Result, error)
}

type RunHistory interface {
	Recent(ctx context.Context, jobType string, limit int) ([]jobs.RunRecord, error)
}

type Handler struct {
	Service   *params.Service
	Refresher RateRefresher
	Runs      RunHistory
	Perms     middleware.PermissionStore
	Audit     shared.Auditor
}

func NewHandler(service *params.Service, refresher RateRefresher, runs RunHistory, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	h := &Handler{Service: service, Refresher: refresher, Runs: runs, Perms: perms}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/params", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/exchange-rate", h.handleExchangeRate)
		r.With(middleware.RequirePermission(auth.PermRateRefresh, h.Perms)).Post("/exchange-rate/refresh", h.handleRefresh)
		r.With(middleware.RequirePermission(auth.PermRateRefresh, h.Perms)).Get("/exchange-rate/runs", h.handleRuns)
		r.With(middleware.RequirePermission(auth.PermParamsWrite, h.Perms)).Put("/{key}", h.handleSet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, list, requestID)
}

type setRequest struct {
	Value decimal.Decimal `json:"value"`
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	key := chi.URLParam(r, "key")
	if _, ok := params.Lookup(key); !ok {
		api.Fail(w, http.StatusNotFound, "not_found", params.ErrUnknownKey.Error(), requestID)
		return
	}
	var payload setRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Set(r.Context(), key, payload.Value, user.UserID)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    user.UserID,
		Action:     "param.update",
		EntityType: "parameter",
		EntityID:   key,
		After:      updated,
	})
	api.Success(w, updated, requestID)
}

func (h *Handler) handleExchangeRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	rate, err := h.Service.ExchangeRate(r.Context())
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	api.Success(w, rate, requestID)
}

// handleRefresh reports a failed fetch as 502 together with the rate that
// stays in effect.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	result, err := h.Refresher.Refresh(r.Context(), user.UserID)
	if err != nil {
		details := map[string]any{}
		if current, rateErr := h.Service.ExchangeRate(r.Context()); rateErr == nil {
			details["rate"] = current.Rate
			details["updatedAt"] = current.UpdatedAt
		}
		api.FailWithDetails(w, http.StatusBadGateway, "rate_refresh_failed", err.Error(), details, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    user.UserID,
		Action:     "exchange_rate.refresh",
		EntityType: "parameter",
		EntityID:   params.KeyUSDRate,
		Before:     map[string]decimal.Decimal{"rate": result.PreviousRate},
		After:      map[string]decimal.Decimal{"rate": result.Rate},
	})
	api.Success(w, result, requestID)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	runs, err := h.Runs.Recent(r.Context(), exchange.JobRateRefresh, limit)
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	if runs == nil {
		runs = []jobs.RunRecord{}
	}
	api.Success(w, runs, requestID)
}
