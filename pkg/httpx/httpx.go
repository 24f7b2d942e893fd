// Package httpx wraps http.Client with default headers, a minimum interval
// between requests and retries for transient failures.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client is a small wrapper around http.Client. It satisfies the HTTPClient
// interfaces of the API clients in this module.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string

	// Retries is the number of extra attempts after a transport error,
	// 429 or 5xx response.
	Retries         uint64
	InitialInterval time.Duration
	// MinInterval is the minimum time between the start of two requests.
	MinInterval time.Duration

	Logger *zap.Logger

	mu   sync.Mutex
	last time.Time
}

// StatusError is returned when a retryable status persists after all attempts.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		HTTP:            &http.Client{Timeout: timeout, Transport: transport},
		UserAgent:       "candlestore/1.0",
		Retries:         3,
		InitialInterval: 500 * time.Millisecond,
		Logger:          zap.NewNop(),
	}
}

// Do sends req, retrying transport errors and 429/5xx responses with
// exponential backoff. Other responses are returned to the caller as is.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.decorate(req)
	ctx := req.Context()

	var (
		res     *http.Response
		attempt int
	)
	op := func() error {
		if attempt > 0 {
			if err := rewind(req); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempt++

		if err := c.wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if retryable(r.StatusCode) {
			_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 4<<10))
			r.Body.Close()
			return &StatusError{StatusCode: r.StatusCode, Status: r.Status, URL: req.URL.Redacted()}
		}
		res = r
		return nil
	}

	notify := func(err error, d time.Duration) {
		c.logger().Warn("Retrying request",
			zap.String("url", req.URL.Redacted()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) decorate(req *http.Request) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.InitialInterval > 0 {
		b.InitialInterval = c.InitialInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.Retries), ctx)
}

// wait blocks until MinInterval has passed since the previous request.
func (c *Client) wait(ctx context.Context) error {
	if c.MinInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if d := time.Until(c.last.Add(c.MinInterval)); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	c.last = time.Now()
	return nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return err
	}
	req.Body = body
	return nil
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
