package domain

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrTransport          = errors.New("transport failure")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

// ErrorKind classifies failures surfaced by the credential pipeline.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
)

const (
	DefaultErrorMessage = "An unexpected error occurred"
	DefaultErrorCode    = "UNKNOWN_ERROR"
)

// APIError is the normalized {message, code, status} shape every pipeline
// failure is converted to before it reaches the session layer.
type APIError struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message"`
	Code    string    `json:"code"`
	Status  int       `json:"status"`
	Err     error     `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultErrorMessage
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError fills in the defaults for missing fields.
func NewAPIError(kind ErrorKind, status int, code, message string, cause error) *APIError {
	if message == "" {
		message = DefaultErrorMessage
	}
	if code == "" {
		code = DefaultErrorCode
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &APIError{Kind: kind, Message: message, Code: code, Status: status, Err: cause}
}

// KindOf returns the classification of err, or "" when err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err means the session's credentials are no
// longer accepted. Forbidden responses are auth errors but not this.
func IsUnauthorized(err error) bool {
	return IsAuth(err) && StatusOf(err) == http.StatusUnauthorized
}
