package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/httputil"
	"github.com/matzehuels/loomviz/pkg/observability"
)

// DefaultFeedPath is where loom services publish their descriptor feed.
const DefaultFeedPath = "/loom/api/graphs"

// HTTPSource fetches the feed from a running service.
type HTTPSource struct {
	url     string
	client  *http.Client
	policy  httputil.Policy
	headers map[string]string
}

// HTTPOption configures an [HTTPSource].
type HTTPOption func(*HTTPSource)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithPolicy sets the retry policy.
func WithPolicy(p httputil.Policy) HTTPOption {
	return func(s *HTTPSource) { s.policy = p }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSource) { s.headers[key] = value }
}

// NewHTTP returns a source for rawURL. A URL without a path (e.g.
// "http://localhost:8080") gets [DefaultFeedPath].
func NewHTTP(rawURL string, opts ...HTTPOption) (*HTTPSource, error) {
	if err := errs.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse feed URL")
	}
	if strings.Trim(u.Path, "/") == "" {
		u.Path = DefaultFeedPath
	}

	s := &HTTPSource{
		url:     u.String(),
		client:  httputil.NewClient(httputil.DefaultTimeout),
		policy:  httputil.DefaultPolicy,
		headers: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSource) Name() string { return s.url }

// Load GETs the feed, retrying on transport errors, 429 and 5xx.
func (s *HTTPSource) Load(ctx context.Context) ([]descriptor.API, error) {
	var apis []descriptor.API
	err := httputil.Retry(ctx, s.policy, func() error {
		var err error
		apis, err = s.fetch(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return apis, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]descriptor.API, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return descriptor.Decode(resp.Body)
}
