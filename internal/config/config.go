// Package config loads client settings from YAML files.
package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/frankli0324/go-httpflow/internal"
	"github.com/frankli0324/go-httpflow/internal/dialer"
	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/netpool"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

// Config represents the httpflow client configuration
type Config struct {
	FollowRedirects *bool `yaml:"followRedirects,omitempty"`
	MaxRedirects    int   `yaml:"maxRedirects,omitempty"`

	DialTimeout     int     `yaml:"dialTimeout,omitempty"` // milliseconds
	IdleTimeout     int     `yaml:"idleTimeout,omitempty"` // milliseconds
	MaxConnsPerHost int     `yaml:"maxConnsPerHost,omitempty"`
	MaxIdlePerHost  int     `yaml:"maxIdlePerHost,omitempty"`
	DialRate        float64 `yaml:"dialRate,omitempty"` // new connections per second, 0 for unlimited
	DialBurst       int     `yaml:"dialBurst,omitempty"`

	Proxy       string `yaml:"proxy,omitempty"`
	ValidateSSL *bool  `yaml:"validateSSL,omitempty"`

	DNSServer   string            `yaml:"dnsServer,omitempty"`
	IPVersion   string            `yaml:"ipVersion,omitempty"` // "ip4" or "ip6"
	StaticHosts map[string]string `yaml:"staticHosts,omitempty"`

	UserAgent       string            `yaml:"userAgent,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty"` // Default headers for all requests
	RequestID       *bool             `yaml:"requestID,omitempty"`
	RequestIDHeader string            `yaml:"requestIDHeader,omitempty"`
	Decompress      string            `yaml:"decompress,omitempty"` // "browser", "always" or "never"
}

// BoolPtr returns a pointer to b, for filling the optional fields.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetRequestID returns whether requests are tagged with an id, defaulting to false
func (c *Config) GetRequestID() bool {
	return getBool(c.RequestID, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".httpflow.yaml",
	".httpflow.yml",
	"httpflow.yaml",
}

// Load loads configuration from path, or searches the working directory
// when path is empty. Defaults are returned if no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, name := range ConfigFilenames {
		if _, err := os.Stat(filepath.Join(".", name)); err == nil {
			return loadFile(name)
		}
	}
	return DefaultConfig(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxRedirects < 0 {
		return fmt.Errorf("maxRedirects must not be negative, got %d", c.MaxRedirects)
	}
	switch c.Decompress {
	case "", "browser", "always", "never":
	default:
		return fmt.Errorf("unknown decompress mode %q", c.Decompress)
	}
	switch c.IPVersion {
	case "", "ip4", "ip6":
	default:
		return fmt.Errorf("unknown ipVersion %q", c.IPVersion)
	}
	return nil
}

func (c *Config) decompressPredicate() model.DecompressPredicate {
	switch c.Decompress {
	case "always":
		return transport.AlwaysDecompress
	case "never":
		return transport.NeverDecompress
	}
	return transport.BrowserDecompress
}

// ClientOptions translates the settings into options for [internal.NewClient].
func (c *Config) ClientOptions(logger *zap.Logger) []internal.Option {
	d := &dialer.CoreDialer{
		Timeout: time.Duration(c.DialTimeout) * time.Millisecond,
	}
	if !c.GetValidateSSL() {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		d.ProxyConfig = &dialer.ProxyConfig{TLSConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	if c.DNSServer != "" || c.IPVersion != "" || len(c.StaticHosts) > 0 {
		d.ResolveConfig = &dialer.ResolveConfig{
			CustomDNSServer: c.DNSServer,
			Network:         c.IPVersion,
			StaticHosts:     c.StaticHosts,
		}
	}

	pool := netpool.DefaultConfig
	if c.MaxConnsPerHost > 0 {
		pool.MaxConnsPerHost = uint(c.MaxConnsPerHost)
	}
	if c.MaxIdlePerHost > 0 {
		pool.MaxIdlePerHost = uint(c.MaxIdlePerHost)
	}
	if c.IdleTimeout > 0 {
		pool.IdleTimeout = time.Duration(c.IdleTimeout) * time.Millisecond
	}
	if c.DialRate > 0 {
		pool.DialRate, pool.DialBurst = rate.Limit(c.DialRate), c.DialBurst
	}

	opts := []internal.Option{
		internal.WithDialer(d),
		internal.WithPool(pool),
		internal.WithMaxRedirects(c.MaxRedirects),
		internal.WithMiddleware(internal.Decompression(c.decompressPredicate())),
	}
	if !c.GetFollowRedirects() {
		opts = append(opts, internal.WithoutRedirects())
	}
	if logger != nil {
		opts = append(opts, internal.WithLogger(logger))
	}
	if c.Proxy != "" {
		opts = append(opts, internal.WithProxy(c.Proxy))
	}
	if c.UserAgent != "" {
		opts = append(opts, internal.WithMiddleware(internal.UserAgent(c.UserAgent)))
	}
	if len(c.Headers) > 0 {
		names := make([]string, 0, len(c.Headers))
		for k := range c.Headers {
			names = append(names, k)
		}
		sort.Strings(names)
		h := make(model.Header, 0, len(names))
		for _, k := range names {
			h = append(h, model.Field{Name: k, Value: c.Headers[k]})
		}
		opts = append(opts, internal.WithMiddleware(internal.DefaultHeaders(h)))
	}
	if c.GetRequestID() {
		opts = append(opts, internal.WithMiddleware(internal.RequestID(c.RequestIDHeader)))
	}
	return opts
}
