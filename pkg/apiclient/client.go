// Package apiclient is a typed JSON REST client. Request and response bodies are
// Go types, optionally checked with validator struct tags, and GET calls can go
// through a TTL cache with in-flight de-duplication (see Query).
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
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var (
	ErrMissingPathParam   = errors.New("apiclient: missing path parameter")
	ErrRequestValidation  = errors.New("apiclient: request validation failed")
	ErrResponseValidation = errors.New("apiclient: response validation failed")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("apiclient: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	headers   http.Header
	token     func() string
	validate  bool
	validator *validator.Validate
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithBearerToken sets a token source consulted on every request.
func WithBearerToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

// WithValidation turns request/response struct validation on.
func WithValidation(v *validator.Validate) Option {
	return func(c *Client) {
		c.validate = true
		if v != nil {
			c.validator = v
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: 15 * time.Second},
		headers:   http.Header{},
		validator: validator.New(),
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var pathParamPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)|\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// BuildURL expands :name or {name} placeholders in path and appends the query.
// Query keys come out sorted.
func (c *Client) BuildURL(path string, pathParams map[string]string, query url.Values) (string, error) {
	var missing []string
	expanded := pathParamPattern.ReplaceAllStringFunc(path, func(m string) string {
		name := strings.Trim(m, ":{}")
		v, ok := pathParams[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingPathParam, strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(expanded, "/") {
		expanded = "/" + expanded
	}
	full := c.baseURL.String() + expanded
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full, nil
}

// Request describes one call. Body nil means no request body.
type Request[T any] struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values
	Body       *T
	Headers    http.Header
	// ResultPath unwraps an envelope, e.g. "data" for {"data": {...}}.
	ResultPath string
}

// NoBody is the request type for calls without a body.
type NoBody struct{}

// Do executes req and decodes the response into Resp.
func Do[Req, Resp any](ctx context.Context, c *Client, req Request[Req]) (Resp, error) {
	var zero Resp

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.BuildURL(req.Path, req.PathParams, req.Query)
	if err != nil {
		return zero, err
	}

	var body io.Reader
	if req.Body != nil {
		if c.validate {
			if err := c.validateValue(req.Body); err != nil {
				return zero, fmt.Errorf("%w: %v", ErrRequestValidation, err)
			}
		}
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return zero, fmt.Errorf("apiclient: encode body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return zero, err
	}
	for k, vs := range c.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range req.Headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return zero, fmt.Errorf("apiclient: read body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return zero, &HTTPError{
			StatusCode: res.StatusCode,
			Code:       gjson.GetBytes(raw, "error.code").String(),
			Message:    gjson.GetBytes(raw, "error.message").String(),
			Body:       raw,
		}
	}

	if res.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return zero, nil
	}

	payload := raw
	if req.ResultPath != "" {
		result := gjson.GetBytes(raw, req.ResultPath)
		if !result.Exists() {
			return zero, fmt.Errorf("apiclient: result path %q not found in response", req.ResultPath)
		}
		payload = []byte(result.Raw)
	}

	var out Resp
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, fmt.Errorf("apiclient: decode response: %w", err)
	}

	if c.validate {
		if err := c.validateValue(&out); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrResponseValidation, err)
		}
	}
	return out, nil
}

// Get is shorthand for a body-less GET.
func Get[Resp any](ctx context.Context, c *Client, path string, pathParams map[string]string, query url.Values) (Resp, error) {
	return Do[NoBody, Resp](ctx, c, Request[NoBody]{
		Method:     http.MethodGet,
		Path:       path,
		PathParams: pathParams,
		Query:      query,
	})
}

func (c *Client) validateValue(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return c.validator.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := c.validateValue(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	}
	return nil
}
