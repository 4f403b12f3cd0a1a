// Package apiclient is the credential pipeline: every call to the admin API
// goes through Client, which attaches the bearer token, renews it once on a
// 401 and normalizes failures into *domain.APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/adminconsole/dashboard/internal/api/metrics"
	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
	refreshKey      = "refresh"
)

// Config holds the settings shared by every session's client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is shared between sessions. nil uses a client with Timeout.
	HTTPClient *http.Client
}

// Client talks to the admin API on behalf of one browser session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	tokens    ports.TokenStore
	validate  *validator.Validate
	refreshes singleflight.Group
	onExpired atomic.Pointer[func()]
	log       zerolog.Logger
}

// New returns a Client reading and writing tokens through tokens.
func New(cfg Config, tokens ports.TokenStore, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  base,
		http:     httpClient,
		timeout:  timeout,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
	}, nil
}

// OnExpired registers the callback fired when the session's credentials
// cannot be renewed. It replaces any previous callback.
func (c *Client) OnExpired(fn func()) {
	c.onExpired.Store(&fn)
}

// call describes one logical API request. A request is replayed at most once.
type call struct {
	method string
	path   string
	body   any
	// noRefresh surfaces a 401 directly instead of renewing the token.
	noRefresh bool
	// anonymous sends no bearer token.
	anonymous bool
}

// do runs c through the 401 state machine and decodes the success body
// into out (when non-nil).
func (c *Client) do(ctx context.Context, req call, out any) error {
	payload, err := encode(req.body)
	if err != nil {
		return domain.NewAPIError(domain.KindValidation, http.StatusBadRequest, "INVALID_REQUEST", "", err)
	}

	access := ""
	if !req.anonymous {
		tokens, err := c.tokens.Load(ctx)
		if err != nil {
			return networkError(fmt.Errorf("load tokens: %w", err))
		}
		access = tokens.AccessToken
	}

	resp, err := c.send(ctx, req.method, req.path, payload, access)
	if err != nil {
		return networkError(err)
	}
	if resp.StatusCode != http.StatusUnauthorized || req.noRefresh || req.anonymous || access == "" {
		return c.decode(resp, out)
	}
	discard(resp)

	fresh, err := c.refresh(ctx, access)
	if err != nil {
		return err
	}

	resp, err = c.send(ctx, req.method, req.path, payload, fresh)
	if err != nil {
		return networkError(err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := classify(resp)
		c.log.Warn().Str("path", req.path).Msg("request rejected after token refresh, ending session")
		c.expire(ctx, fresh)
		return apiErr
	}
	return c.decode(resp, out)
}

// refresh renews the access token. Concurrent callers share one in-flight
// refresh; a caller whose stale token was already replaced gets the new one
// without another round trip.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	v, err, shared := c.refreshes.Do(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		current, err := c.tokens.Load(rctx)
		if err != nil {
			return "", networkError(fmt.Errorf("load tokens: %w", err))
		}
		if current.AccessToken != "" && current.AccessToken != stale {
			metrics.TokenRefreshTotal.WithLabelValues("reused").Inc()
			return current.AccessToken, nil
		}
		if current.Empty() {
			// Already expired or logged out; the session has been told.
			return "", domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, "SESSION_EXPIRED", domain.ErrSessionExpired.Error(), domain.ErrSessionExpired)
		}
		if current.RefreshToken == "" {
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			c.expire(rctx, current.AccessToken)
			return "", domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, "NO_REFRESH_TOKEN", domain.ErrSessionExpired.Error(), domain.ErrNoRefreshToken)
		}

		pair, err := c.postRefresh(rctx, current.RefreshToken)
		if err == nil {
			err = c.tokens.Save(rctx, pair)
		}
		if err != nil {
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
			c.log.Info().Err(err).Msg("token refresh failed, ending session")
			c.expire(rctx, current.AccessToken)
			return "", domain.NewAPIError(domain.KindAuth, http.StatusUnauthorized, "SESSION_EXPIRED", domain.ErrSessionExpired.Error(),
				fmt.Errorf("%w: %w", domain.ErrSessionExpired, err))
		}
		metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
		c.log.Debug().Msg("access token refreshed")
		return pair.AccessToken, nil
	})
	if shared {
		metrics.TokenRefreshCoalescedTotal.Inc()
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) postRefresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	payload, err := encode(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return domain.Tokens{}, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", payload, "")
	if err != nil {
		return domain.Tokens{}, networkError(err)
	}
	var pair tokenPair
	if err := c.decode(resp, &pair); err != nil {
		return domain.Tokens{}, err
	}
	return pair.toDomain(), nil
}

// expire clears both tokens and signals the session. It does nothing when
// the store no longer holds the failed access token: the session already
// ended, or a newer login replaced the pair.
func (c *Client) expire(ctx context.Context, failed string) {
	current, err := c.tokens.Load(ctx)
	if err == nil && (current.Empty() || current.AccessToken != failed) {
		c.log.Debug().Msg("credentials already replaced, not expiring")
		return
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to clear tokens")
	}
	metrics.SessionsExpiredTotal.Inc()
	if fn := c.onExpired.Load(); fn != nil && *fn != nil {
		(*fn)()
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamRequestDuration.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// decode consumes resp. Non-2xx responses become classified errors.
func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return malformed(err)
	}
	if err := c.check(out); err != nil {
		return malformed(err)
	}
	return nil
}

// check validates decoded wire payloads; slices are validated per element.
func (c *Client) check(out any) error {
	switch v := out.(type) {
	case *[]wireUser:
		for i := range *v {
			if err := c.validate.Struct(&(*v)[i]); err != nil {
				return err
			}
		}
	case *[]wireRole:
		for i := range *v {
			if err := c.validate.Struct(&(*v)[i]); err != nil {
				return err
			}
		}
	case *[]string:
		return c.validate.Var(*v, "dive,required")
	case *wireIdentity, *wireUser, *wireRole, *tokenPair:
		return c.validate.Struct(v)
	}
	return nil
}

func encode(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
}

func malformed(err error) error {
	return domain.NewAPIError(domain.KindNetwork, http.StatusBadGateway, "MALFORMED_RESPONSE", "",
		fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err))
}

func networkError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewAPIError(domain.KindNetwork, http.StatusGatewayTimeout, "TIMEOUT", "", fmt.Errorf("%w: %w", domain.ErrTransport, err))
	}
	return domain.NewAPIError(domain.KindNetwork, http.StatusBadGateway, "NETWORK_ERROR", "", fmt.Errorf("%w: %w", domain.ErrTransport, err))
}
