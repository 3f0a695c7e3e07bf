package internal

import (
	"context"

	"github.com/google/uuid"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// headerMiddleware sets name to the value returned by value unless the
// request carries the header already.
func headerMiddleware(name string, value func() string) Middleware {
	return func(next Preparer) Preparer {
		return func(ctx context.Context, req *model.Request) (*model.PreparedRequest, error) {
			if !req.Header.Has(name) {
				req = req.Clone()
				req.Header.Add(name, value())
			}
			return next(ctx, req)
		}
	}
}

// RequestID tags every request, redirect hops included, with a random
// UUID in header, "X-Request-ID" when header is empty.
func RequestID(header string) Middleware {
	if header == "" {
		header = "X-Request-ID"
	}
	return headerMiddleware(header, uuid.NewString)
}

func UserAgent(ua string) Middleware {
	return headerMiddleware("User-Agent", func() string { return ua })
}

func BasicAuth(username, password string) Middleware {
	return func(next Preparer) Preparer {
		return func(ctx context.Context, req *model.Request) (*model.PreparedRequest, error) {
			if !req.Header.Has("Authorization") {
				req = req.Clone()
				req.SetBasicAuth(username, password)
			}
			return next(ctx, req)
		}
	}
}

// DefaultHeaders adds the fields of h the request does not set itself.
func DefaultHeaders(h model.Header) Middleware {
	return func(next Preparer) Preparer {
		return func(ctx context.Context, req *model.Request) (*model.PreparedRequest, error) {
			cloned := false
			for _, f := range h {
				if req.Header.Has(f.Name) {
					continue
				}
				if !cloned {
					req, cloned = req.Clone(), true
				}
				req.Header.Add(f.Name, f.Value)
			}
			return next(ctx, req)
		}
	}
}

// Decompression sets the decompression predicate of requests that have
// none.
func Decompression(pred model.DecompressPredicate) Middleware {
	return func(next Preparer) Preparer {
		return func(ctx context.Context, req *model.Request) (*model.PreparedRequest, error) {
			if req.Decompress == nil {
				req = req.Clone()
				req.Decompress = pred
			}
			return next(ctx, req)
		}
	}
}
