package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/service"
)

func render(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), jerr)
	}
	return rec.Code, body
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad id"), http.StatusBadRequest, "bad id"},
		{"superseded", service.ErrSuperseded, http.StatusConflict, "request superseded by a newer one"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"session expired", fmt.Errorf("fetch: %w", domain.ErrSessionExpired), http.StatusUnauthorized, service.MsgSessionExpired},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := render(t, tt.err)
			if code != tt.code || body.Error != tt.msg {
				t.Fatalf("expected %d %q, got %d %q", tt.code, tt.msg, code, body.Error)
			}
		})
	}
}

func TestErrorHandler_APIErrorKeepsUpstreamStatus(t *testing.T) {
	err := fmt.Errorf("get user: %w",
		domain.NewAPIError(domain.KindValidation, http.StatusNotFound, "USER_NOT_FOUND", "user 9 not found", domain.ErrNotFound))

	code, body := render(t, err)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body.Error != "user 9 not found" || body.Code != "USER_NOT_FOUND" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
