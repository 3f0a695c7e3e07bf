package dialer

import (
	"context"
	"net"
)

type ResolveConfig struct {
	CustomDNSServer string            // host:port of the server to query
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

// Merge fills the fields unset in c from fallback.
func (c *ResolveConfig) Merge(fallback *ResolveConfig) *ResolveConfig {
	if c == nil {
		return fallback.Clone()
	}
	merged := c.Clone()
	if fallback == nil {
		return merged
	}
	if merged.CustomDNSServer == "" {
		merged.CustomDNSServer = fallback.CustomDNSServer
	}
	if merged.Network == "" {
		merged.Network = fallback.Network
	}
	for k, v := range fallback.StaticHosts {
		if _, ok := merged.StaticHosts[k]; !ok {
			merged.StaticHosts[k] = v
		}
	}
	return merged
}

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"}

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

// LookupIPServer resolves host on a custom dns server, an empty dns uses
// the system configuration through a Go resolver.
func LookupIPServer(ctx context.Context, network, host, dns string) ([]net.IP, error) {
	return customServerResolver.LookupIP(dnsServerCtx{ctx, dns}, network, host)
}

func lookup(ctx context.Context, cfg *ResolveConfig, host string) ([]net.IP, error) {
	if cfg == nil {
		return LookupIPServer(ctx, "ip", host, "")
	}
	if static, ok := cfg.StaticHosts[host]; ok {
		return []net.IP{net.ParseIP(static)}, nil
	}
	network := cfg.Network
	if network == "" {
		network = "ip"
	}
	return LookupIPServer(ctx, network, host, cfg.CustomDNSServer)
}
