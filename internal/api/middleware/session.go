package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adminconsole/dashboard/internal/infrastructure/sessions"
)

// SessionResolver finds or creates the session behind a cookie value, and
// moves a session to a new ID when its privileges change.
type SessionResolver interface {
	Resolve(id string) (*sessions.Session, bool, error)
	Rotate(ctx context.Context, old *sessions.Session) (*sessions.Session, error)
}

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session attaches the browser session to the request, issuing a new cookie
// when the presented one is missing, malformed or expired. Handlers may
// replace the session in the context (login rotates it); the cookie follows
// whatever session is attached when the response is written.
func Session(reg SessionResolver, cfg CookieConfig) echo.MiddlewareFunc {
	if cfg.Name == "" {
		cfg.Name = "dashboard_sid"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				id = ck.Value
			}

			sess, created, err := reg.Resolve(id)
			if err != nil {
				return err
			}
			c.Set(sessions.ContextKey, sess)

			issued := false
			issue := func() {
				cur := sessionFrom(c)
				if issued || cur == nil || (!created && cur.ID == id) {
					return
				}
				issued = true
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    cur.ID,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Response().Before(issue)

			err = next(c)
			if !c.Response().Committed {
				issue()
			}
			return err
		}
	}
}

func sessionFrom(c echo.Context) *sessions.Session {
	sess, _ := c.Get(sessions.ContextKey).(*sessions.Session)
	return sess
}
