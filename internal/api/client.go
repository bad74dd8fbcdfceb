package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/showup-events/showup/internal/metrics"
	"github.com/showup-events/showup/internal/util/retry"
)

// RefreshPath is the token refresh endpoint hit after a 401.
const RefreshPath = "/api/auth/refresh"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options configure a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts for transient failures on GET.
	Retries int
	// Jar holds the session cookie. A nil Jar gets an in-memory jar.
	Jar http.CookieJar
	// OnUnauthorized runs when the session could not be refreshed.
	OnUnauthorized func()
	Metrics        *metrics.Recorder
	Logger         logr.Logger
	Clock          clock.Clock
}

// Client talks JSON to the backend.
type Client struct {
	rest    *resty.Client
	jar     http.CookieJar
	retries int
	metrics *metrics.Recorder
	log     logr.Logger
	clock   clock.Clock

	mu             sync.Mutex
	onUnauthorized func()
}

// New creates a Client.
func New(opts Options) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{opts.Logger})
	if opts.Timeout > 0 {
		rest.SetTimeout(opts.Timeout)
	}
	if opts.Jar != nil {
		rest.SetCookieJar(opts.Jar)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	return &Client{
		rest:           rest,
		jar:            rest.GetClient().Jar,
		retries:        opts.Retries,
		metrics:        opts.Metrics,
		log:            opts.Logger,
		clock:          clk,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// SetOnUnauthorized replaces the hook run when the session cannot be refreshed.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		err := c.Do(ctx, http.MethodGet, path, nil, out)
		var se *StatusError
		if errors.As(err, &se) && isTransient(se.StatusCode) {
			return err
		}
		return retry.Fatal(err)
	}, retry.WithMaxRetries(c.retries), retry.WithClock(c.clock))
}

// Post sends body to path and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body to path and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete removes path and decodes the JSON response, if any, into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// PostOnce sends body to path exactly once. A 401 is returned as a
// StatusError without refreshing the session or running OnUnauthorized.
func (c *Client) PostOnce(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, false)
}

// Do executes a single request with the 401 refresh-and-retry-once policy.
// out may be nil; an empty body leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, refresh bool) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if refresh && resp.StatusCode() == http.StatusUnauthorized && path != RefreshPath {
		if !c.refresh(ctx) {
			c.unauthorized()
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			c.unauthorized()
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		}
	}

	if !resp.IsSuccess() {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}

// send performs one HTTP round trip.
func (c *Client) send(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	reqID := uuid.NewString()
	req := c.rest.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, reqID)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		c.log.V(1).Info("request failed", "method", method, "path", path, "requestID", reqID, "error", err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.metrics.ObserveRequest(method, resp.StatusCode())
	c.log.V(2).Info("request done", "method", method, "path", path, "requestID", reqID,
		"status", resp.StatusCode(), "duration", resp.Time().String())
	return resp, nil
}

// refresh asks the backend for a fresh session. Only a 200 counts.
func (c *Client) refresh(ctx context.Context) bool {
	resp, err := c.send(ctx, http.MethodPost, RefreshPath, struct{}{})
	if err != nil {
		c.log.Info("session refresh failed", "error", err.Error())
		return false
	}
	return resp.StatusCode() == http.StatusOK
}

func (c *Client) unauthorized() {
	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close persists the cookie jar when it supports saving.
func (c *Client) Close() error {
	saver, ok := c.jar.(interface{ Save() error })
	if !ok {
		return nil
	}
	if err := saver.Save(); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	return nil
}

// restyLogger routes resty's internal messages into logr.
type restyLogger struct {
	log logr.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(nil, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.V(2).Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
