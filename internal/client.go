package internal

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/frankli0324/go-httpflow/internal/dialer"
	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/netpool"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

// DefaultMaxRedirects is the redirect budget of a request when the client
// was not configured otherwise.
const DefaultMaxRedirects = 10

type Conn = transport.Conn

// Manager leases connections to transactions. A connection is used by one
// transaction at a time and one released with [model.DontReuse] is never
// handed out again.
type Manager interface {
	Acquire(ctx context.Context, key model.ConnKey) (Conn, error)
	Release(conn Conn, disp model.Disposition)
}

// Preparer turns a request into its wire form.
type Preparer func(ctx context.Context, req *model.Request) (*model.PreparedRequest, error)

// Middleware wraps the prepare stage. Middlewares must not modify the
// request they are given, [model.Request.Clone] it first.
type Middleware func(next Preparer) Preparer

type Client struct {
	middlewares []Middleware
	dialer      dialer.Dialer
	pool        *netpool.Group
	poolConfig  *netpool.Config
	logger      *zap.Logger

	maxRedirects int
	redirectsSet bool
	noFollow     bool
	proxy        string

	once sync.Once
}

type Option func(c *Client)

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// WithMaxRedirects sets the redirect budget. With 0 the first redirect
// response fails with a TooManyRedirectsError; use WithoutRedirects to
// receive redirect responses instead.
func WithMaxRedirects(n int) Option {
	return func(c *Client) { c.maxRedirects, c.redirectsSet = n, true }
}

// WithoutRedirects delivers redirect responses to the consumer instead of
// following them.
func WithoutRedirects() Option { return func(c *Client) { c.noFollow = true } }

func WithPool(cfg netpool.Config) Option { return func(c *Client) { c.poolConfig = &cfg } }

func WithDialer(d dialer.Dialer) Option { return func(c *Client) { c.dialer = d } }

// WithProxy routes requests that do not name a proxy themselves through
// proxyURL.
func WithProxy(proxyURL string) Option { return func(c *Client) { c.proxy = proxyURL } }

func WithMiddleware(mws ...Middleware) Option { return func(c *Client) { c.Use(mws...) } }

// NewClient creates a client, the zero value of [Client] is usable too.
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	c.init()
	return c
}

func (c *Client) init() {
	c.once.Do(func() {
		if c.logger == nil {
			c.logger = zap.NewNop()
		}
		if c.dialer == nil {
			c.dialer = &dialer.CoreDialer{}
		}
		cfg := netpool.DefaultConfig
		if c.poolConfig != nil {
			cfg = *c.poolConfig
		}
		c.pool = netpool.NewGroup(c.dialer.Dial, cfg, c.logger)
	})
}

// Use appends mw to the end of the chain. The last "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

func (c *Client) Logger() *zap.Logger {
	c.init()
	return c.logger
}

// MaxRedirects is the budget used by [Do] and [Client.Collect].
func (c *Client) MaxRedirects() int {
	if !c.redirectsSet {
		return DefaultMaxRedirects
	}
	return c.maxRedirects
}

// Prepare runs req through the middleware chain.
func (c *Client) Prepare(ctx context.Context, req *model.Request) (*model.PreparedRequest, error) {
	if req.Proxy == "" && c.proxy != "" {
		req = req.Clone()
		req.Proxy = c.proxy
	}
	next := Preparer(func(_ context.Context, r *model.Request) (*model.PreparedRequest, error) {
		return r.Prepare()
	})
	for _, mw := range c.middlewares {
		next = mw(next)
	}
	return next(ctx, req)
}

func (c *Client) Acquire(ctx context.Context, key model.ConnKey) (Conn, error) {
	c.init()
	conn, err := c.pool.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Client) Release(conn Conn, disp model.Disposition) {
	pc, ok := conn.(*netpool.Conn)
	if !ok {
		if cl, ok := conn.(io.Closer); ok && disp == model.DontReuse {
			cl.Close()
		}
		return
	}
	c.logger.Debug("release connection", zap.Stringer("key", pc.Key()), zap.Stringer("disposition", disp))
	c.pool.Release(pc, disp)
}

// CloseIdle closes the idle connections kept by the client.
func (c *Client) CloseIdle() {
	c.init()
	c.pool.CloseIdle()
}

// Do sends req with c, following redirects up to [Client.MaxRedirects]
// unless the client was created [WithoutRedirects].
func Do[T any](ctx context.Context, c *Client, req *model.Request, consume transport.Consumer[T]) (res T, err error) {
	if !c.noFollow {
		return ExecuteWithRedirects(ctx, c, req, c.MaxRedirects(), consume)
	}
	pr, err := c.Prepare(ctx, req)
	if err != nil {
		return res, err
	}
	return Execute(ctx, c, pr, consume)
}
