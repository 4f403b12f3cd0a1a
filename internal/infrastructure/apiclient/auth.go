package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/adminconsole/dashboard/internal/api/metrics"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

const invalidCredentialsMessage = "Invalid username or password"

// Login exchanges credentials for a token pair, persists it and loads the
// identity. On any failure the previously stored tokens are put back.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	previous, err := c.tokens.Load(ctx)
	if err != nil {
		return nil, networkError(err)
	}

	var pair tokenPair
	err = c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      loginRequest{Username: username, Password: password},
		anonymous: true,
	}, &pair)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, loginError(err)
	}

	if err := c.tokens.Save(ctx, pair.toDomain()); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.restore(ctx, previous)
		return nil, networkError(err)
	}

	user, err := c.me(ctx, true)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.restore(ctx, previous)
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// FetchCurrentUser loads the identity behind the stored access token.
func (c *Client) FetchCurrentUser(ctx context.Context) (*domain.Identity, error) {
	return c.me(ctx, false)
}

// Logout asks the API to revoke the session, then clears both tokens
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) {
	tokens, err := c.tokens.Load(ctx)
	if err == nil && !tokens.Empty() {
		err = c.do(ctx, call{
			method:    http.MethodPost,
			path:      "/auth/logout",
			body:      refreshRequest{RefreshToken: tokens.RefreshToken},
			noRefresh: true,
		}, nil)
	}
	if err != nil {
		c.log.Debug().Err(err).Msg("server-side logout failed")
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to clear tokens on logout")
	}
}

func (c *Client) me(ctx context.Context, noRefresh bool) (*domain.Identity, error) {
	var w wireIdentity
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", noRefresh: noRefresh}, &w); err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

func (c *Client) restore(ctx context.Context, previous domain.Tokens) {
	var err error
	if previous.Empty() {
		err = c.tokens.Clear(ctx)
	} else {
		err = c.tokens.Save(ctx, previous)
	}
	if err != nil {
		c.log.Error().Err(err).Msg("failed to restore previous tokens")
	}
}

// loginError maps a 401 from the login endpoint to invalid credentials.
func loginError(err error) error {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	msg := apiErr.Message
	if msg == domain.DefaultErrorMessage {
		msg = invalidCredentialsMessage
	}
	code := apiErr.Code
	if code == domain.DefaultErrorCode {
		code = "INVALID_CREDENTIALS"
	}
	return domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, code, msg, domain.ErrInvalidCredentials)
}
