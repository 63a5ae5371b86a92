// Package requester turns a resource endpoint name into the family of CRUD calls the
// admin API exposes for it. Every call is built the same way and handed to an Executor,
// which owns authentication and the network round trip.
package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAnalyticsPath is the path segment appended for analytics requests.
const DefaultAnalyticsPath = "analytics"

// Endpoint names a collection on the remote API, e.g. "products" or "order-items".
type Endpoint string

// Options carries everything but the URL of an outgoing request.
type Options struct {
	Method string
	Header http.Header
	Body   []byte
}

// Executor performs an authenticated request. Implementations must not return an
// error for HTTP-level failures; a 4xx/5xx comes back as a Response whose OK is false.
// Errors are reserved for transport failures (DNS, refused connection, cancellation).
type Executor interface {
	Execute(ctx context.Context, url string, opts Options) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, url string, opts Options) (*Response, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, url string, opts Options) (*Response, error) {
	return f(ctx, url, opts)
}

// Response is the raw outcome of a request. Interpreting it is up to the caller.
type Response struct {
	StatusCode int
	// Status is the reason phrase sent by the server, e.g. "Not Found".
	Status string
	Header http.Header
	Body   []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Request is a fully built call, ready for an Executor.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Options returns the request without its URL.
func (r Request) Options() Options {
	return Options{Method: r.Method, Header: r.Header, Body: r.Body}
}

// CreateFunc creates a record from data.
type CreateFunc func(ctx context.Context, data any) (*Response, error)

// UpdateFunc partially updates the record identified by id.
type UpdateFunc func(ctx context.Context, id any, data any) (*Response, error)

// ListFunc lists records matching filters. A nil or empty set lists everything.
type ListFunc func(ctx context.Context, filters Filters) (*Response, error)

// GetFunc fetches a single record (or its analytics) by id.
type GetFunc func(ctx context.Context, id any) (*Response, error)

// Resource is the generated client for one endpoint.
type Resource struct {
	Endpoint  Endpoint
	Create    CreateFunc
	Update    UpdateFunc
	List      ListFunc
	Get       GetFunc
	Analytics GetFunc
}

// Factory builds resource clients against one API base URL.
type Factory struct {
	baseURL       string
	exec          Executor
	analyticsPath string
}

// Option configures a Factory.
type Option func(*Factory)

// WithAnalyticsPath overrides the analytics path segment.
func WithAnalyticsPath(path string) Option {
	return func(f *Factory) {
		if path = strings.Trim(path, "/"); path != "" {
			f.analyticsPath = path
		}
	}
}

// New returns a Factory sending every request through exec.
func New(baseURL string, exec Executor, opts ...Option) *Factory {
	f := &Factory{
		baseURL:       strings.TrimRight(baseURL, "/"),
		exec:          exec,
		analyticsPath: DefaultAnalyticsPath,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BaseURL returns the API root the factory builds URLs from.
func (f *Factory) BaseURL() string {
	return f.baseURL
}

// ForEndpoint returns all five operations bound to e.
func (f *Factory) ForEndpoint(e Endpoint) *Resource {
	return &Resource{
		Endpoint:  e,
		Create:    f.Create(e),
		Update:    f.Update(e),
		List:      f.List(e),
		Get:       f.Get(e),
		Analytics: f.Analytics(e),
	}
}

// Create returns the POST {base}/{e} operation.
func (f *Factory) Create(e Endpoint) CreateFunc {
	return func(ctx context.Context, data any) (*Response, error) {
		req, err := f.NewRequest(http.MethodPost, f.collectionURL(e), data)
		if err != nil {
			return nil, err
		}
		return f.Execute(ctx, req)
	}
}

// Update returns the PATCH {base}/{e}/{id} operation.
func (f *Factory) Update(e Endpoint) UpdateFunc {
	return func(ctx context.Context, id any, data any) (*Response, error) {
		req, err := f.NewRequest(http.MethodPatch, f.recordURL(e, id), data)
		if err != nil {
			return nil, err
		}
		return f.Execute(ctx, req)
	}
}

// List returns the GET {base}/{e}?{filters} operation.
func (f *Factory) List(e Endpoint) ListFunc {
	return func(ctx context.Context, filters Filters) (*Response, error) {
		u := f.collectionURL(e)
		if query := EncodeFilters(filters); query != "" {
			u += "?" + query
		}
		req, err := f.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return f.Execute(ctx, req)
	}
}

// Get returns the GET {base}/{e}/{id} operation.
func (f *Factory) Get(e Endpoint) GetFunc {
	return func(ctx context.Context, id any) (*Response, error) {
		req, err := f.NewRequest(http.MethodGet, f.recordURL(e, id), nil)
		if err != nil {
			return nil, err
		}
		return f.Execute(ctx, req)
	}
}

// Analytics returns the GET {base}/{e}/{id}/analytics operation.
func (f *Factory) Analytics(e Endpoint) GetFunc {
	return func(ctx context.Context, id any) (*Response, error) {
		req, err := f.NewRequest(http.MethodGet, f.recordURL(e, id)+"/"+f.analyticsPath, nil)
		if err != nil {
			return nil, err
		}
		return f.Execute(ctx, req)
	}
}

// NewRequest builds a request. A nil body means no body at all; anything else is
// sent as its JSON encoding.
func (f *Factory) NewRequest(method, target string, body any) (Request, error) {
	req := Request{
		Method: method,
		URL:    target,
		Header: http.Header{},
	}
	// The API expects the JSON content type on every call, bodiless GETs included.
	req.Header.Set("Content-Type", "application/json")

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Request{}, fmt.Errorf("failed to marshal body: %w", err)
		}
		req.Body = b
	}
	return req, nil
}

// Execute hands req to the executor. Its result is returned untouched.
func (f *Factory) Execute(ctx context.Context, req Request) (*Response, error) {
	return f.exec.Execute(ctx, req.URL, req.Options())
}

func (f *Factory) collectionURL(e Endpoint) string {
	return f.baseURL + "/" + string(e)
}

func (f *Factory) recordURL(e Endpoint, id any) string {
	return f.collectionURL(e) + "/" + url.PathEscape(fmt.Sprint(id))
}
