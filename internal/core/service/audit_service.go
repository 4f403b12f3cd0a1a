package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService. With a nil repo events are only
// written to the log.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process stores one audit event. Every event is also logged so the trail
// survives a storage outage.
func (s *auditService) Process(ctx context.Context, event domain.AuditEvent) error {
	if event.Action == "" {
		return fmt.Errorf("process audit event: %w: missing action", domain.ErrInvalidInput)
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	s.log.Info().
		Str("session", event.SessionID).
		Str("username", event.Username).
		Str("action", string(event.Action)).
		Str("path", event.Path).
		Str("detail", event.Detail).
		Time("at", event.At).
		Msg("audit")

	if s.repo == nil {
		return nil
	}
	if err := s.repo.InsertAudit(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: insert: %w", err)
	}
	return nil
}
