package ports

import (
	"context"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertAudit(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService validates and stores a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
