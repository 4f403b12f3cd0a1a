package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/api/metrics"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/gate"
	"github.com/adminconsole/dashboard/internal/core/ports"
	"github.com/adminconsole/dashboard/internal/core/routes"
	"github.com/adminconsole/dashboard/internal/infrastructure/sessions"
)

type deniedResponse struct {
	Error  string       `json:"error"`
	Denial *gate.Denial `json:"denial,omitempty"`
}

// RBAC gates a handler on the current user's features. It must run after
// RequireAuth. audit may be nil.
type RBAC struct {
	gate  *gate.Gate
	audit ports.AuditRecorder
}

func NewRBAC(g *gate.Gate, audit ports.AuditRecorder) *RBAC {
	return &RBAC{gate: g, audit: audit}
}

// Route requires what the route table declares for path. All listed
// features are needed.
func (r *RBAC) Route(path string) echo.MiddlewareFunc {
	d := routes.MustLookup(path)
	req := gate.ForRoute(d, gate.AllOf)
	req.RedirectTo = routes.Parent(d.Path)
	return r.Require(req)
}

// Features requires every listed feature.
func (r *RBAC) Features(fs ...domain.Feature) echo.MiddlewareFunc {
	return r.Require(gate.Requirement{Features: fs, Mode: gate.AllOf})
}

// Require enforces an arbitrary requirement.
func (r *RBAC) Require(req gate.Requirement) echo.MiddlewareFunc {
	mode := req.Mode.String()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessionFrom(c)
			var user *domain.Identity
			if sess != nil {
				user = sess.Auth.User()
			}

			decision := r.gate.Check(user, req)
			metrics.GateDecisionsTotal.WithLabelValues(mode, decision.Verdict.String()).Inc()

			switch decision.Verdict {
			case gate.Render:
				return next(c)
			case gate.RenderNothing:
				return c.NoContent(http.StatusForbidden)
			}

			r.record(sess, user, c.Request().URL.Path, req)
			return c.JSON(http.StatusForbidden, deniedResponse{
				Error:  decision.Denial.Message,
				Denial: decision.Denial,
			})
		}
	}
}

func (r *RBAC) record(sess *sessions.Session, user *domain.Identity, path string, req gate.Requirement) {
	if r.audit == nil {
		return
	}
	event := domain.AuditEvent{
		Action: domain.AuditAccessDenied,
		Path:   path,
		Detail: req.Mode.String() + " of " + joinFeatures(req.Features),
	}
	if sess != nil {
		event.SessionID = sess.ID
	}
	if user != nil {
		event.Username = user.Username
	}
	r.audit.Record(event)
}

func joinFeatures(fs []domain.Feature) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}
