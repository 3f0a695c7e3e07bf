package httpflow

import (
	"context"

	"github.com/frankli0324/go-httpflow/internal"
)

// Client pools connections and runs requests through its middlewares. The
// zero value is ready to use.
type Client = internal.Client
type Option = internal.Option
type Manager = internal.Manager
type Conn = internal.Conn
type Response = internal.Response

type Preparer = internal.Preparer
type Middleware = internal.Middleware

const DefaultMaxRedirects = internal.DefaultMaxRedirects

var (
	WithLogger       = internal.WithLogger
	WithMaxRedirects = internal.WithMaxRedirects
	WithoutRedirects = internal.WithoutRedirects
	WithPool         = internal.WithPool
	WithDialer       = internal.WithDialer
	WithProxy        = internal.WithProxy
	WithMiddleware   = internal.WithMiddleware

	RequestID      = internal.RequestID
	UserAgent      = internal.UserAgent
	BasicAuth      = internal.BasicAuth
	DefaultHeaders = internal.DefaultHeaders
	Decompression  = internal.Decompression
)

func NewClient(opts ...Option) *Client { return internal.NewClient(opts...) }

// Do sends req with c and streams the final response to consume.
func Do[T any](ctx context.Context, c *Client, req *Request, consume Consumer[T]) (T, error) {
	return internal.Do(ctx, c, req, consume)
}

// Execute performs a single exchange without following redirects.
func Execute[T any](ctx context.Context, m Manager, req *PreparedRequest, consume Consumer[T]) (T, error) {
	return internal.Execute(ctx, m, req, consume)
}

func ExecuteWithRedirects[T any](ctx context.Context, m Manager, req *Request, maxHops int, consume Consumer[T]) (T, error) {
	return internal.ExecuteWithRedirects(ctx, m, req, maxHops, consume)
}

// Collect reads the final response of req into memory.
func Collect(ctx context.Context, m Manager, req *Request) (*Response, error) {
	return internal.Collect(ctx, m, req)
}

// FetchURL returns the body of a GET to rawURL, non-2xx final responses
// are reported as *[StatusCodeError].
func FetchURL(ctx context.Context, m Manager, rawURL string) ([]byte, error) {
	return internal.FetchURL(ctx, m, rawURL)
}

var _ Manager = (*Client)(nil)
