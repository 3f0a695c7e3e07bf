package netpool

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Conn is a pooled connection. It keeps a single buffered reader for its
// whole life so bytes read ahead of one response stay available to the
// next exchange.
type Conn struct {
	raw      net.Conn
	br       *bufio.Reader
	key      model.ConnKey
	pool     *Pool
	lastIdle time.Time
	uses     int

	broken atomic.Bool
}

func newConn(p *Pool, raw net.Conn) *Conn {
	return &Conn{raw: raw, br: bufio.NewReader(raw), key: p.key, pool: p}
}

func (c *Conn) Write(p []byte) (n int, err error) {
	n, err = c.raw.Write(p)
	if err != nil {
		c.broken.Store(true)
	}
	return
}

func (c *Conn) Reader() *bufio.Reader { return c.br }

func (c *Conn) SetDeadline(t time.Time) error { return c.raw.SetDeadline(t) }

// Raw returns the underlying connection, a *tls.Conn for secure keys.
func (c *Conn) Raw() net.Conn { return c.raw }

func (c *Conn) Key() model.ConnKey { return c.key }

// Reused reports whether the connection served an exchange before.
func (c *Conn) Reused() bool { return c.uses > 1 }

func (c *Conn) close() error {
	c.broken.Store(true)
	return c.raw.Close()
}

// idleUsable checks a connection taken out of the idle list. Anything
// buffered or readable while idle is either EOF or an unsolicited message,
// both leave the connection unusable.
func (c *Conn) idleUsable(maxIdle time.Duration) bool {
	if c.broken.Load() || c.br.Buffered() > 0 {
		return false
	}
	if maxIdle > 0 && time.Since(c.lastIdle) > maxIdle {
		return false
	}
	return alive(c.raw)
}
