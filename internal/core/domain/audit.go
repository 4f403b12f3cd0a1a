package domain

import "time"

// AuditAction names something worth keeping a trail of.
type AuditAction string

const (
	AuditLoginSucceeded AuditAction = "login_succeeded"
	AuditLoginFailed    AuditAction = "login_failed"
	AuditLogout         AuditAction = "logout"
	AuditSessionExpired AuditAction = "session_expired"
	AuditAccessDenied   AuditAction = "access_denied"
	AuditRoleChanged    AuditAction = "role_changed"
	AuditUserChanged    AuditAction = "user_changed"
)

// AuditEvent is one entry of the dashboard audit trail.
type AuditEvent struct {
	SessionID string
	Username  string
	Action    AuditAction
	Path      string
	Detail    string
	At        time.Time
}
