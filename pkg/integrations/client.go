package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/openupm/openupm-cli/pkg/buildinfo"
	"github.com/openupm/openupm-cli/pkg/cache"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients:
// response caching, retries, per-host circuit breaking and common headers.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	retries  int
	headers  map[string]string
	breakers *breakers
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	Cache   cache.Cache       // nil disables caching
	TTL     time.Duration     // cache entry lifetime
	Timeout time.Duration     // per-request timeout
	Retries int               // retries after the first attempt; negative disables
	Headers map[string]string // sent with every request
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Retries == 0 {
		opts.Retries = cache.DefaultRetries
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &Client{
		http:     NewHTTPClient(opts.Timeout),
		cache:    opts.Cache,
		ttl:      opts.TTL,
		retries:  opts.Retries,
		headers:  headers,
		breakers: newBreakers(),
	}
}

// Cached retrieves a value from cache or executes fetch and caches the
// result. If refresh is true the cache is bypassed. fetch populates v and is
// retried while it returns errors wrapped with cache.Retryable. Cache
// backend failures degrade to a miss.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if decodeCached(data, v) {
				observability.Cache().OnCacheHit(ctx, "packument")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "packument")
	}
	if err := cache.RetryWithBackoff(ctx, c.retries, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "packument", len(data))
		}
	}
	return nil
}

// decodeCached fills the value v points to from data, leaving it untouched
// unless data decodes without error.
func decodeCached(data []byte, v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	scratch := reflect.New(rv.Elem().Type())
	if json.Unmarshal(data, scratch.Interface()) != nil {
		return false
	}
	rv.Elem().Set(scratch.Elem())
	return true
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with
// defaults. Request-specific headers override client defaults.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedPackument, err, "decode response from %s", url)
	}
	return nil
}

// BreakerStates reports the circuit state of every registry host contacted
// so far.
func (c *Client) BreakerStates() map[string]string {
	return c.breakers.states()
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host := req.URL.Host
	br := c.breakers.get(host)
	if !br.Ready() {
		return nil, errs.New(errs.ErrCodeNetwork, "registry %s is unavailable (circuit open)", host)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		br.Fail()
		return nil, cache.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "request %s", url))
	}
	hooks.OnResponse(ctx, req.Method, host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			br.Fail()
		} else {
			br.Success()
		}
		return nil, err
	}
	br.Success()
	return resp.Body, nil
}

// checkStatus maps a response status to an error. Not-found and auth
// failures are answers from a healthy registry and are never retried.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodePackageNotFound, "not found: %s", resp.Request.URL)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errs.New(errs.ErrCodeUnauthorized, "status %d from %s", code, resp.Request.URL.Host)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(&errs.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return cache.Retryable(errs.New(errs.ErrCodeNetwork, "status %d from %s", code, resp.Request.URL.Host))
	default:
		return errs.New(errs.ErrCodeNetwork, "unexpected status %d from %s", code, resp.Request.URL.Host)
	}
}
