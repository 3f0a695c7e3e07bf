package dialer

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

type ProxyConfig struct {
	TLSConfig      *tls.Config // used with https proxies, if nil, *[CoreDialer.TLSConfig] will be used
	ResolveLocally bool        // send the resolved IP in CONNECT instead of the host name
	ResolveConfig  *ResolveConfig
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	return &ProxyConfig{
		TLSConfig:      c.TLSConfig.Clone(),
		ResolveLocally: c.ResolveLocally,
		ResolveConfig:  c.ResolveConfig.Clone(),
	}
}

var proxyPorts = map[string]string{"http": "80", "https": "443"}

// DialContextOverProxy connects to proxy. Secure destinations get a
// CONNECT tunnel, plain ones are served by the proxy itself with
// absolute-form requests and need no tunnel.
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, host string, port int, tunnel bool, proxy *url.URL) (net.Conn, error) {
	if proxy.Scheme != "http" && proxy.Scheme != "https" {
		return nil, &model.TransportError{Op: "dial proxy", Err: errors.New("unsupported proxy scheme: " + proxy.Scheme)}
	}
	proxyPort := proxy.Port()
	if proxyPort == "" {
		proxyPort = proxyPorts[proxy.Scheme]
	}
	proxyHost, err := asciiHost(proxy.Hostname())
	if err != nil {
		return nil, &model.TransportError{Op: "dial proxy", Err: err}
	}
	var pcfg ProxyConfig
	if d.ProxyConfig != nil {
		pcfg = *d.ProxyConfig
	}

	conn, err := d.dialDirect(ctx, d.ResolveConfig, proxyHost, proxyPort)
	if err != nil {
		return nil, &model.TransportError{Op: "dial proxy", Err: err}
	}
	if proxy.Scheme == "https" {
		tlsCfg := pcfg.TLSConfig
		if tlsCfg == nil {
			tlsCfg = d.TLSConfig
		}
		if conn, err = d.handshake(ctx, conn, tlsCfg, proxyHost); err != nil {
			return nil, err
		}
	}
	if !tunnel {
		return conn, nil
	}

	target := host
	if pcfg.ResolveLocally {
		ips, err := lookup(ctx, pcfg.ResolveConfig.Merge(d.ResolveConfig), host)
		if err != nil {
			conn.Close()
			return nil, &model.TransportError{Op: "resolve", Err: err}
		}
		if len(ips) == 0 {
			conn.Close()
			return nil, &model.TransportError{Op: "resolve", Err: fmt.Errorf("no address for %s", host)}
		}
		target = ips[rand.Intn(len(ips))].String()
	}
	tunneled, err := connect(ctx, conn, net.JoinHostPort(target, strconv.Itoa(port)), proxy.User)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tunneled, nil
}

// connect asks the proxy on conn to open a tunnel to hostport.
func connect(ctx context.Context, conn net.Conn, hostport string, user *url.Userinfo) (net.Conn, error) {
	if dl, ok := ctx.Deadline(); ok {
		conn.SetDeadline(dl)
		defer conn.SetDeadline(time.Time{})
	}
	req := &model.PreparedRequest{
		Request:       &model.Request{Method: "CONNECT"},
		HeaderHost:    hostport,
		ContentLength: -1,
		Replayable:    true,
		GetBody:       func() (io.ReadCloser, error) { return http.NoBody, nil },
	}
	if user != nil {
		password, _ := user.Password()
		auth := base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + password))
		req.Header = model.Header{{Name: "Proxy-Authorization", Value: "Basic " + auth}}
	}
	if err := transport.WriteRequest(conn, req); err != nil {
		return nil, err
	}
	br := bufio.NewReader(conn)
	head, err := transport.ReadHead(br)
	if err != nil {
		return nil, err
	}
	if !head.Status.IsSuccess() {
		return nil, &model.TransportError{
			Op: "proxy connect", Err: fmt.Errorf("proxy server returned %s", head.Status),
		}
	}
	if br.Buffered() > 0 {
		return &bufferedConn{conn, br}, nil
	}
	return conn, nil
}

// bufferedConn keeps bytes the proxy sent right behind its CONNECT reply.
type bufferedConn struct {
	net.Conn
	br *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.br.Read(p) }
