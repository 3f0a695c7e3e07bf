package internal

import (
	"context"
	"io"
	"net/url"

	"go.uber.org/zap"

	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

// hop is the outcome of one exchange in a redirect chain, either the
// location to continue with or the consumer's result.
type hop[T any] struct {
	status   model.Status
	location string
	res      T
}

// ExecuteWithRedirects sends req and follows 3xx responses carrying a
// Location header, at most maxHops times. Only the final response reaches
// consume, intermediate bodies are discarded. req itself is never
// modified, every hop works on a new request.
func ExecuteWithRedirects[T any](ctx context.Context, m Manager, req *model.Request, maxHops int, consume transport.Consumer[T]) (res T, err error) {
	logger := loggerOf(m).Named("redirect")
	intercept := func(status model.Status, header model.Header, body io.Reader) (hop[T], error) {
		if loc := header.Get("Location"); status.IsRedirect() && loc != "" {
			return hop[T]{status: status, location: loc}, nil
		}
		res, err := consume(status, header, body)
		return hop[T]{status: status, res: res}, err
	}

	cur := req
	for budget := maxHops; ; budget-- {
		pr, err := prepare(ctx, m, cur)
		if err != nil {
			return res, err
		}
		h, err := Execute(ctx, m, pr, intercept)
		if err != nil || h.location == "" {
			return h.res, err
		}
		if budget <= 0 {
			return res, &model.TooManyRedirectsError{Request: cur, Max: maxHops}
		}

		next, err := redirectRequest(cur, h.status, h.location)
		if err != nil {
			return res, err
		}
		if next.Body != nil && !pr.Replayable {
			return res, model.ErrBodyNotReplayable
		}
		logger.Debug("following redirect",
			zap.Int("status", h.status.Code),
			zap.String("method", next.Method),
			zap.Stringer("location", next.URL()),
			zap.Int("remaining", budget-1))
		cur = next
	}
}

// redirectRequest derives the request a redirect response asks for. A
// 303 turns the request into a GET without body, other codes keep method,
// body and headers.
func redirectRequest(cur *model.Request, status model.Status, location string) (*model.Request, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, &model.ParseError{What: "location", Line: location, Err: err}
	}
	if !ref.IsAbs() {
		// path-absolute and relative references stay on the current origin
		ref = cur.URL().ResolveReference(ref)
	}
	next := cur.Clone()
	if err := next.SetURL(ref); err != nil {
		return nil, err
	}
	if status.Code == 303 {
		next.Method = "GET"
		next.Body = nil
	}
	return next, nil
}
