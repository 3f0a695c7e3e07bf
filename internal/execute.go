package internal

import (
	"context"

	"go.uber.org/zap"

	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

// Execute performs a single exchange: the connection is leased from m for
// the duration of the exchange and released with the disposition the
// exchange ended with. An exchange that never returns, such as one whose
// consumer panics, releases the connection as DontReuse.
func Execute[T any](ctx context.Context, m Manager, req *model.PreparedRequest, consume transport.Consumer[T]) (res T, err error) {
	conn, err := m.Acquire(ctx, req.Key())
	if err != nil {
		return res, err
	}
	disp := model.DontReuse
	defer func() { m.Release(conn, disp) }()
	res, disp, err = transport.RoundTrip(ctx, conn, req, consume)
	return res, err
}

type preparer interface {
	Prepare(ctx context.Context, req *model.Request) (*model.PreparedRequest, error)
}

func prepare(ctx context.Context, m Manager, req *model.Request) (*model.PreparedRequest, error) {
	if p, ok := m.(preparer); ok {
		return p.Prepare(ctx, req)
	}
	return req.Prepare()
}

func loggerOf(m Manager) *zap.Logger {
	if l, ok := m.(interface{ Logger() *zap.Logger }); ok {
		return l.Logger()
	}
	return zap.NewNop()
}
