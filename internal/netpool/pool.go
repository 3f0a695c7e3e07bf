package netpool

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Pool holds the connections of a single [model.ConnKey].
type Pool struct {
	key   model.ConnKey
	group *Group

	connTicket      chan struct{} // leased connections, nil for unlimited
	idleTicket      chan *Conn
	maxIdleDuration time.Duration
}

func newPool(g *Group, key model.ConnKey) *Pool {
	p := &Pool{
		key:             key,
		group:           g,
		idleTicket:      make(chan *Conn, g.cfg.MaxIdlePerHost),
		maxIdleDuration: g.cfg.IdleTimeout,
	}
	if g.cfg.MaxConnsPerHost > 0 {
		p.connTicket = make(chan struct{}, g.cfg.MaxConnsPerHost)
	}
	return p
}

func (p *Pool) acquire(ctx context.Context) (*Conn, error) {
	if p.connTicket != nil {
		select {
		case p.connTicket <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	for {
		select {
		case c := <-p.idleTicket:
			if c.idleUsable(p.maxIdleDuration) {
				c.uses++
				return c, nil
			}
			p.group.logger.Debug("discarding stale connection", zap.Stringer("key", p.key))
			c.close()
		default:
			c, err := p.dial(ctx)
			if err != nil {
				p.releaseTicket()
				return nil, err
			}
			c.uses++
			return c, nil
		}
	}
}

func (p *Pool) dial(ctx context.Context) (*Conn, error) {
	if l := p.group.limiter; l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, err
		}
	}
	raw, err := p.group.dial(ctx, p.key)
	if err != nil {
		p.group.logger.Debug("dial failed", zap.Stringer("key", p.key), zap.Error(err))
		return nil, err
	}
	p.group.logger.Debug("dialed", zap.Stringer("key", p.key), zap.Stringer("remote", addr{raw}))
	return newConn(p, raw), nil
}

func (p *Pool) release(c *Conn, disp model.Disposition) {
	defer p.releaseTicket()
	if disp == model.DontReuse || c.broken.Load() {
		c.close()
		return
	}
	if err := c.raw.SetDeadline(time.Time{}); err != nil {
		c.close()
		return
	}
	c.lastIdle = time.Now()
	select {
	case p.idleTicket <- c:
	default:
		c.close() // idle list full
	}
}

func (p *Pool) releaseTicket() {
	if p.connTicket != nil {
		<-p.connTicket
	}
}

func (p *Pool) closeIdle() {
	for {
		select {
		case c := <-p.idleTicket:
			c.close()
		default:
			return
		}
	}
}

type addr struct{ c net.Conn }

func (a addr) String() string {
	if ra := a.c.RemoteAddr(); ra != nil {
		return ra.String()
	}
	return ""
}
