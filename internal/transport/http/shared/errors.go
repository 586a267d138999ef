package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"costos/internal/domain/company"
	"costos/internal/domain/exchange"
	"costos/internal/domain/expenses"
	"costos/internal/domain/fleet"
	"costos/internal/domain/jobs"
	"costos/internal/domain/params"
	"costos/internal/domain/professional"
	"costos/internal/transport/http/api"
)

var notFound = []error{
	pgx.ErrNoRows,
	company.ErrNotFound,
	professional.ErrNotFound,
	fleet.ErrNotFound,
	jobs.ErrNotFound,
}

var conflicts = []error{
	company.ErrAlreadyMember,
	professional.ErrUsernameTaken,
	professional.ErrLicenseTaken,
	expenses.ErrTypeExists,
}

var upstream = []error{
	exchange.ErrRateNotFound,
	exchange.ErrInvalidRate,
	exchange.ErrUnexpectedStatus,
}

// FailDomain writes the response for an error returned by a domain service.
// Unrecognised errors are logged and reported as 500 without detail.
func FailDomain(w http.ResponseWriter, requestID string, err error) {
	var incomplete *jobs.IncompleteError
	if errors.As(err, &incomplete) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "incomplete_entity", incomplete.Error(), map[string]string{
			"entity": incomplete.Entity,
			"id":     incomplete.ID,
		}, requestID)
		return
	}
	var ref *jobs.ReferenceError
	if errors.As(err, &ref) {
		FailValidation(w, requestID, []ValidationIssue{{Field: ref.Field, Reason: "references an unknown record"}})
		return
	}

	switch {
	case matches(err, notFound):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, professional.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, professional.ErrNoCompany):
		api.Fail(w, http.StatusConflict, "company_required", err.Error(), requestID)
	case matches(err, conflicts):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, professional.ErrInvalidCUIT):
		FailValidation(w, requestID, []ValidationIssue{{Field: "cuit", Reason: "must be a valid CUIT"}})
	case errors.Is(err, expenses.ErrUnknownType):
		FailValidation(w, requestID, []ValidationIssue{{Field: "expenses", Reason: "references an unknown expense type"}})
	case errors.Is(err, params.ErrUnknownKey):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, params.ErrInvalidValue):
		FailValidation(w, requestID, []ValidationIssue{{Field: "value", Reason: err.Error()}})
	case matches(err, upstream):
		api.Fail(w, http.StatusBadGateway, "upstream_error", err.Error(), requestID)
	default:
		slog.Error("request failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
