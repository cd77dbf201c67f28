package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/in-rolls/missing-daughters-of-pols/internal/cache"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/util"
)

// Policy bounds the retry ladder. Sleep is injectable so the backoff is
// unit-testable without waiting on a wall clock.
type Policy struct {
	// MaxRetries is the number of attempts before giving up.
	MaxRetries int
	// RateLimitWait is the base backoff unit on HTTP 429; the wait for
	// attempt k is 2^k * RateLimitWait.
	RateLimitWait time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

func (p Policy) normalized() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.RateLimitWait <= 0 {
		p.RateLimitWait = 5 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = time.Sleep
	}
	return p
}

// Result is one HTTP response with the body already read. Callers must
// inspect StatusCode before using the body: non-200 responses are
// returned as-is, not retried.
type Result struct {
	StatusCode  int
	Status      string
	ContentType string
	Body        []byte
	FinalURL    string
}

// OK reports whether the response carried a 200 status.
func (r *Result) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Text returns the body as a string.
func (r *Result) Text() string {
	return string(r.Body)
}

// Session wraps an HTTP client with a minimum inter-request delay and a
// bounded retry ladder. The delay is enforced by a single shared
// limiter, so concurrent callers are serialized against one clock. The
// only mutable state is that clock and the connection pool; exhausted
// retries surface as an error callers treat as "no data".
type Session struct {
	client    *http.Client
	limiter   *rate.Limiter
	policy    Policy
	userAgent string
	maxBytes  int64
	cache     cache.Cache
}

// NewSession creates a session from HTTP configuration.
func NewSession(cfg model.HTTPConfig) *Session {
	return NewSessionWithPolicy(cfg, Policy{
		MaxRetries:    cfg.MaxRetries,
		RateLimitWait: cfg.RateLimitWait,
	})
}

// NewSessionWithPolicy creates a session with an explicit retry policy.
func NewSessionWithPolicy(cfg model.HTTPConfig, policy Policy) *Session {
	delay := cfg.Delay
	if delay <= 0 {
		delay = time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Session{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		policy:    policy.normalized(),
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// SetCache attaches a response cache consulted before the network on
// GET. Only 200 responses are cached.
func (s *Session) SetCache(c cache.Cache) {
	s.cache = c
}

// Get fetches a URL with rate limiting and the full retry ladder:
// transport errors back off 2^attempt seconds, HTTP 429 backs off
// 2^attempt * RateLimitWait. Other non-200 statuses are returned to the
// caller without retrying.
func (s *Session) Get(ctx context.Context, rawURL string) (*Result, error) {
	return s.GetWith(ctx, rawURL, nil)
}

// cachedResponse is the envelope stored in the response cache, so a
// cache hit restores the content type along with the body.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// GetWith is Get with extra request headers.
func (s *Session) GetWith(ctx context.Context, rawURL string, header http.Header) (*Result, error) {
	if s.cache != nil {
		if data, found := s.cache.Get(cache.Key(rawURL)); found {
			var cached cachedResponse
			// An undecodable entry is treated as a miss and refetched.
			if err := json.Unmarshal(data, &cached); err == nil {
				return &Result{
					StatusCode:  http.StatusOK,
					Status:      "200 OK (cached)",
					ContentType: cached.ContentType,
					Body:        cached.Body,
					FinalURL:    rawURL,
				}, nil
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt < s.policy.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		s.setHeaders(req, header)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < s.policy.MaxRetries-1 {
				s.policy.Sleep(time.Duration(1<<attempt) * time.Second)
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			lastErr = fmt.Errorf("rate limited: %s", resp.Status)
			s.policy.Sleep(time.Duration(1<<attempt) * s.policy.RateLimitWait)
			continue
		}

		result, err := s.read(resp)
		if err != nil {
			return nil, err
		}
		if result.OK() && s.cache != nil {
			if data, err := json.Marshal(cachedResponse{
				ContentType: result.ContentType,
				Body:        result.Body,
			}); err == nil {
				_ = s.cache.Set(cache.Key(rawURL), data, 0)
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("all %d attempts failed for %s: %w", s.policy.MaxRetries, rawURL, lastErr)
}

// Post sends a POST with the same delay and retry policy, minus the
// 429 backoff branch: only transport errors are retried, any HTTP
// status is returned to the caller as-is.
func (s *Session) Post(ctx context.Context, rawURL, contentType string, body []byte) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt < s.policy.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		s.setHeaders(req, nil)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < s.policy.MaxRetries-1 {
				s.policy.Sleep(time.Duration(1<<attempt) * time.Second)
			}
			continue
		}

		return s.read(resp)
	}

	return nil, fmt.Errorf("all %d attempts failed for POST %s: %w", s.policy.MaxRetries, rawURL, lastErr)
}

func (s *Session) setHeaders(req *http.Request, extra http.Header) {
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,hi;q=0.8")
	for k, vals := range extra {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
}

func (s *Session) read(resp *http.Response) (*Result, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
