package shared

import (
	"context"
	"log/slog"
	"net/http"

	"costos/internal/domain/audit"
	"costos/internal/platform/requestctx"
)

// Auditor persists audit entries.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit stamps the entry with the request id and client address.
// A failed write is logged and never fails the request.
func RecordAudit(r *http.Request, auditor Auditor, e audit.Entry) {
	if auditor == nil {
		return
	}
	e.RequestID = requestctx.GetRequestID(r.Context())
	e.IP = ClientIP(r)
	if err := auditor.Record(r.Context(), e); err != nil {
		slog.Warn("audit record failed", "action", e.Action, "entity", e.EntityType, "err", err)
	}
}
