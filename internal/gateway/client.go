// Package gateway is the single chokepoint for calls to the upstream
// storefront API. Every component that talks upstream goes through
// Client.Do, which owns URL resolution, JSON defaults, bearer credential
// attachment and the translation of failures into *APIError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/observability/statsd"
)

// CredentialSource yields the bearer credential attached to authenticated
// calls. Implemented by the credential store.
type CredentialSource interface {
	Get(ctx context.Context) (domainauth.Credential, error)
}

// ParseMode selects how a successful response body is handled.
type ParseMode string

const (
	// ParseJSON decodes the body into Options.Out when the response
	// declares a JSON content type. The default.
	ParseJSON ParseMode = "json"
	// ParseText returns the raw body without decoding.
	ParseText ParseMode = "text"
	// ParseBinary returns the raw body bytes untouched.
	ParseBinary ParseMode = "binary"
	// ParseNone discards the body.
	ParseNone ParseMode = "none"
)

// Options shapes a single upstream call.
type Options struct {
	Method  string      // defaults to GET
	Body    any         // JSON-encoded request body
	RawBody io.Reader   // pre-encoded body; caller owns the content type
	Header  http.Header // extra headers, merged over the defaults
	Auth    bool        // attach the stored credential as a bearer header
	Parse   ParseMode   // defaults to ParseJSON
	Out     any         // decode target for ParseJSON responses
}

// Result is the successful outcome of an upstream call.
type Result struct {
	Status int
	Header http.Header
	Body   []byte
}

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	BaseURL     string // required, e.g. "https://api.storefront.example"
	HTTPClient  *http.Client
	Credentials CredentialSource
	Logger      *slog.Logger
	Metrics     statsd.Sink
	Timeout     time.Duration // applied when HTTPClient is not supplied
}

// Client issues requests against the upstream storefront API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewClient constructs a Client. A base URL is required.
func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway base URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		creds:   opts.Credentials,
		logger:  logger.With("component", "gateway"),
		metrics: opts.Metrics,
	}, nil
}

// Do issues one request. Non-2xx responses and transport failures both
// return a *APIError, so callers never branch on transport vs application
// failure. Transport failures carry the sentinel status 0.
func (c *Client) Do(ctx context.Context, path string, opts Options) (*Result, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	// JSON is always an acceptable response encoding.
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	if opts.Auth {
		c.attachCredential(ctx, req)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0, time.Since(started))
		c.logger.WarnContext(ctx, "upstream request failed", "method", method, "path", path, "error", err)
		return nil, &APIError{Status: 0, Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, resp.StatusCode, time.Since(started))
		return nil, &APIError{Status: 0, Message: "read response body: " + err.Error(), cause: err}
	}

	c.observe(method, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
		c.logger.DebugContext(ctx, "upstream returned error status",
			"method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	result := &Result{Status: resp.StatusCode, Header: resp.Header}
	if opts.Parse == ParseNone || resp.StatusCode == http.StatusNoContent {
		return result, nil
	}

	result.Body = raw

	mode := opts.Parse
	if mode == "" {
		mode = ParseJSON
	}
	if mode == ParseJSON && opts.Out != nil && len(raw) > 0 && isJSONContentType(resp.Header.Get("Content-Type")) {
		if err := json.Unmarshal(raw, opts.Out); err != nil {
			return nil, fmt.Errorf("decode response from %s %s: %w", method, path, err)
		}
	}
	return result, nil
}

// resolveURL joins a path to the base origin. Absolute http(s) URLs pass
// through unchanged.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// attachCredential adds the bearer header when a live credential exists.
// A missing credential is not an error here; the upstream decides.
func (c *Client) attachCredential(ctx context.Context, req *http.Request) {
	if c.creds == nil {
		return
	}
	cred, err := c.creds.Get(ctx)
	if err != nil || cred.IsZero() {
		return
	}
	req.Header.Set("Authorization", "Bearer "+cred.Bearer())
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	tags := map[string]string{
		"method": method,
		"status": strconv.Itoa(status),
	}
	c.metrics.Count("gateway.request", 1, tags)
	c.metrics.Timing("gateway.request.duration", elapsed, map[string]string{"method": method})
}

func encodeBody(opts Options) (io.Reader, string, error) {
	if opts.RawBody != nil {
		// Opaque payload; the caller declares its own content type.
		return opts.RawBody, "", nil
	}
	if opts.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}
