package httpflow

import (
	"github.com/frankli0324/go-httpflow/internal/dialer"
	"github.com/frankli0324/go-httpflow/internal/netpool"
)

// Dialers are responsible for creating the connections requests are
// written to. Unlike [net/http.Transport], a Dialer MUST NOT hold
// connection state, pooling is done by the [Client].
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It
// would be used by a zero value [Client].
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig

// ResolveConfig customizes name resolution: a dedicated DNS server, the
// IP version to use and static host entries. The standard library only
// follows the system configuration, so a Go resolver with a
// [net.Resolver.Dial] hook is used behind the scenes.
type ResolveConfig = dialer.ResolveConfig

// PoolConfig bounds the connections kept per destination.
type PoolConfig = netpool.Config

var DefaultPoolConfig = netpool.DefaultConfig
