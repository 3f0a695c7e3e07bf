// Package dialer opens the connections pooled by the client: plain TCP,
// TLS, and tunnels through HTTP(S) proxies.
package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Dialer creates the connection a [model.ConnKey] stands for. A Dialer
// holds configuration only, never connection state, so it can be swapped
// out of a client without pain.
type Dialer interface {
	Dial(ctx context.Context, key model.ConnKey) (net.Conn, error)
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig
	TLSConfig     *tls.Config // cloned for every handshake
	ProxyConfig   *ProxyConfig

	// Timeout bounds establishing a connection, TLS handshake and proxy
	// tunnel included. Zero means no limit besides the context.
	Timeout time.Duration
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		ProxyConfig:   d.ProxyConfig.Clone(),
		Timeout:       d.Timeout,
	}
}
