package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strconv"

	"golang.org/x/net/idna"

	"github.com/frankli0324/go-httpflow/internal/model"
)

var zeroDialer net.Dialer
var customDnsDialer = net.Dialer{
	Resolver: &customServerResolver,
}

// Dial connects to key.Host, through key.Proxy when set. Secure keys get
// a TLS session to the origin, tunneled with CONNECT when proxied.
func (d *CoreDialer) Dial(ctx context.Context, key model.ConnKey) (net.Conn, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	host, err := asciiHost(key.Host)
	if err != nil {
		return nil, &model.TransportError{Op: "dial", Err: err}
	}

	var conn net.Conn
	if key.Proxy != "" {
		proxy, err := url.Parse(key.Proxy)
		if err != nil {
			return nil, &model.TransportError{Op: "dial proxy", Err: err}
		}
		conn, err = d.DialContextOverProxy(ctx, host, key.Port, key.Secure, proxy)
		if err != nil {
			return nil, err
		}
	} else {
		conn, err = d.dialDirect(ctx, d.ResolveConfig, host, strconv.Itoa(key.Port))
		if err != nil {
			return nil, &model.TransportError{Op: "dial", Err: err}
		}
	}
	if !key.Secure {
		return conn, nil
	}
	return d.handshake(ctx, conn, d.TLSConfig, host)
}

func (d *CoreDialer) dialDirect(ctx context.Context, cfg *ResolveConfig, host, port string) (net.Conn, error) {
	// as of now net.Dialer could handle every resolver configuration
	network, dialer, dst := "tcp", &zeroDialer, net.JoinHostPort(host, port)
	if cfg != nil {
		switch cfg.Network {
		case "ip4":
			network = "tcp4"
		case "ip6":
			network = "tcp6"
		}
		if static, ok := cfg.StaticHosts[host]; ok {
			dst = net.JoinHostPort(static, port)
		}
		if dns := cfg.CustomDNSServer; dns != "" {
			ctx = dnsServerCtx{ctx, dns}
			dialer = &customDnsDialer
		}
	}
	return dialer.DialContext(ctx, network, dst)
}

func (d *CoreDialer) handshake(ctx context.Context, conn net.Conn, base *tls.Config, serverName string) (net.Conn, error) {
	config := base.Clone()
	if config == nil {
		config = &tls.Config{}
	}
	if config.ServerName == "" {
		config.ServerName = serverName
	}
	config.NextProtos = []string{"http/1.1"}
	c := tls.Client(conn, config)
	if err := c.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, &model.TransportError{Op: "tls handshake", Err: err}
	}
	return c, nil
}

// asciiHost converts internationalized host names to their punycode form,
// IP literals are returned as is.
func asciiHost(host string) (string, error) {
	if net.ParseIP(host) != nil {
		return host, nil
	}
	return idna.Lookup.ToASCII(host)
}
