// Package netpool keeps idle HTTP/1.1 connections grouped by the
// destination they were dialed for.
package netpool

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// DialFunc opens a connection for key, including TLS and proxy tunnels.
type DialFunc func(ctx context.Context, key model.ConnKey) (net.Conn, error)

type Config struct {
	MaxConnsPerHost uint // leased at the same time, 0 for unlimited
	MaxIdlePerHost  uint
	IdleTimeout     time.Duration // 0 keeps idle connections forever

	// DialRate limits new connections across all keys, 0 disables it.
	DialRate  rate.Limit
	DialBurst int
}

var DefaultConfig = Config{
	MaxConnsPerHost: 100,
	MaxIdlePerHost:  80,
	IdleTimeout:     90 * time.Second,
}

type Group struct {
	sync.RWMutex
	pools map[model.ConnKey]*Pool

	cfg     Config
	dial    DialFunc
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewGroup(dial DialFunc, cfg Config, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Group{
		pools:  map[model.ConnKey]*Pool{},
		cfg:    cfg,
		dial:   dial,
		logger: logger.Named("netpool"),
	}
	if cfg.DialRate > 0 {
		burst := cfg.DialBurst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(cfg.DialRate, burst)
	}
	return g
}

func (g *Group) pool(key model.ConnKey) *Pool {
	g.RLock()
	p, ok := g.pools[key]
	g.RUnlock()
	if ok {
		return p
	}
	g.Lock()
	defer g.Unlock()
	if p, ok = g.pools[key]; !ok {
		p = newPool(g, key)
		g.pools[key] = p
	}
	return p
}

// Acquire leases a connection for key, reusing an idle one when it is
// still usable. It blocks while MaxConnsPerHost connections are leased.
func (g *Group) Acquire(ctx context.Context, key model.ConnKey) (*Conn, error) {
	c, err := g.pool(key).acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release returns a leased connection. It is kept idle only when disp is
// [model.Reuse], otherwise it is closed.
func (g *Group) Release(c *Conn, disp model.Disposition) {
	c.pool.release(c, disp)
}

// Idle reports the number of idle connections kept for key.
func (g *Group) Idle(key model.ConnKey) int {
	g.RLock()
	p, ok := g.pools[key]
	g.RUnlock()
	if !ok {
		return 0
	}
	return len(p.idleTicket)
}

// CloseIdle closes every idle connection, leased ones are closed once
// they are released with [model.DontReuse].
func (g *Group) CloseIdle() {
	g.RLock()
	defer g.RUnlock()
	for _, p := range g.pools {
		p.closeIdle()
	}
}
