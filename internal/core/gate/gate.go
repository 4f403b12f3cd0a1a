// Package gate decides whether protected content is shown. Gate handles
// feature requirements for routes, widgets and menu entries; Guard handles
// the stricter "is there an authenticated session at all" question.
package gate

import (
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/permission"
)

// Mode selects how a feature requirement is evaluated.
type Mode int

const (
	// AllOf requires every listed feature.
	AllOf Mode = iota
	// AnyOf requires at least one listed feature.
	AnyOf
)

func (m Mode) String() string {
	if m == AnyOf {
		return "any"
	}
	return "all"
}

// Verdict is what the caller should render.
type Verdict int

const (
	Render Verdict = iota
	RenderFallback
	RenderNothing
)

func (v Verdict) String() string {
	switch v {
	case Render:
		return "render"
	case RenderFallback:
		return "fallback"
	default:
		return "nothing"
	}
}

const (
	DeniedTitle   = "Access Denied"
	DeniedMessage = "You don't have permission to view this content."
)

// Requirement is the declaration made at one call site.
type Requirement struct {
	Features []domain.Feature
	Mode     Mode
	// Bypass skips evaluation and always renders.
	Bypass bool
	// HideFallback renders nothing instead of the denial panel.
	HideFallback bool
	// RedirectTo is where the denial panel's back action goes. Empty means
	// browser history-back.
	RedirectTo     string
	HideBackButton bool
}

// Denial describes the "not authorized" panel.
type Denial struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ShowBack    bool   `json:"showBackButton"`
	BackTarget  string `json:"backTarget,omitempty"`
	HistoryBack bool   `json:"historyBack,omitempty"`
}

// Decision is the outcome of a gate check. Denial is set only for
// RenderFallback.
type Decision struct {
	Verdict Verdict
	Denial  *Denial
}

// Allowed reports whether protected content should be rendered.
func (d Decision) Allowed() bool { return d.Verdict == Render }

// Checker evaluates feature requirements against an identity.
// *permission.Evaluator satisfies it.
type Checker interface {
	HasAllPermissions(u *domain.Identity, required []domain.Feature) bool
	HasAnyPermission(u *domain.Identity, required []domain.Feature) bool
}

type pureChecker struct{}

func (pureChecker) HasAllPermissions(u *domain.Identity, required []domain.Feature) bool {
	return permission.HasAllPermissions(u, required)
}

func (pureChecker) HasAnyPermission(u *domain.Identity, required []domain.Feature) bool {
	return permission.HasAnyPermission(u, required)
}

// Gate evaluates requirements. It holds no per-user state.
type Gate struct {
	checker Checker
}

// New returns a Gate backed by checker. A nil checker uses the
// non-memoizing permission functions.
func New(checker Checker) *Gate {
	if checker == nil {
		checker = pureChecker{}
	}
	return &Gate{checker: checker}
}

// Check decides what to render for u under req.
func (g *Gate) Check(u *domain.Identity, req Requirement) Decision {
	if req.Bypass || g.permitted(u, req) {
		return Decision{Verdict: Render}
	}
	if req.HideFallback {
		return Decision{Verdict: RenderNothing}
	}
	return Decision{Verdict: RenderFallback, Denial: denial(req)}
}

func (g *Gate) permitted(u *domain.Identity, req Requirement) bool {
	if req.Mode == AnyOf {
		return g.checker.HasAnyPermission(u, req.Features)
	}
	return g.checker.HasAllPermissions(u, req.Features)
}

func denial(req Requirement) *Denial {
	d := &Denial{
		Title:    DeniedTitle,
		Message:  DeniedMessage,
		ShowBack: !req.HideBackButton,
	}
	if d.ShowBack {
		if req.RedirectTo != "" {
			d.BackTarget = req.RedirectTo
		} else {
			d.HistoryBack = true
		}
	}
	return d
}
