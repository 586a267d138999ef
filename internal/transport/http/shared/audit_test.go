package shared

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"costos/internal/domain/audit"
	"costos/internal/platform/requestctx"
)

type memoryAuditor struct {
	entries []audit.Entry
	err     error
}

func (m *memoryAuditor) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return m.err
}

func TestRecordAuditStampsRequest(t *testing.T) {
	req := httptest.NewRequest("PUT", "/api/v1/companies/mine", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req = req.WithContext(requestctx.WithRequestID(req.Context(), "req-42"))

	auditor := &memoryAuditor{}
	RecordAudit(req, auditor, audit.Entry{Action: "company.update", EntityType: "company", EntityID: "c1"})

	if len(auditor.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(auditor.entries))
	}
	got := auditor.entries[0]
	if got.RequestID != "req-42" || got.IP != "203.0.113.9" {
		t.Fatalf("expected request id and ip stamped, got %+v", got)
	}
}

func TestRecordAuditToleratesFailures(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/jobs", nil)
	RecordAudit(req, nil, audit.Entry{Action: "job.create"})
	RecordAudit(req, &memoryAuditor{err: errors.New("db down")}, audit.Entry{Action: "job.create"})
}
