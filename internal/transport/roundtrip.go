package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/frankli0324/go-httpflow/internal/model"
)

var aLongTimeAgo = time.Unix(1, 0)

// RoundTrip runs one request/response exchange on conn. The consumer is
// invoked with the framed, possibly decoded, body, whatever it leaves
// unread is drained afterwards. The returned disposition says whether conn
// is positioned at a clean message boundary and may be reused.
func RoundTrip[T any](ctx context.Context, conn Conn, req *model.PreparedRequest, consume Consumer[T]) (res T, disp model.Disposition, err error) {
	if err = ctx.Err(); err != nil {
		return res, model.Reuse, err
	}
	disp = model.DontReuse
	if d, ok := conn.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() { d.SetDeadline(aLongTimeAgo) })
		defer func() {
			if !stop() {
				// the deadline may already be set on conn
				disp = model.DontReuse
				if err != nil {
					err = fmt.Errorf("%w: %w", ctx.Err(), err)
				}
			}
		}()
	}

	if err = WriteRequest(conn, req); err != nil {
		return
	}
	head, err := ReadHead(conn.Reader())
	if err != nil {
		return
	}

	framing, n := SelectFraming(req.Method, head.Status.Code, head.Header)
	framed := frameBody(framing, n, conn.Reader(), req.RawBody)
	body := framed
	if framing != FramingNone && !req.RawBody {
		body = Decompress(framed, head.Status, head.Header, req.Decompress)
	}

	res, err = consume(head.Status, head.Header, body)
	if framing == FramingClose {
		return res, model.DontReuse, err
	}
	if disp = Decide(head.Header, framing); disp == model.Reuse && !drain(framed) {
		disp = model.DontReuse
	}
	return res, disp, err
}
