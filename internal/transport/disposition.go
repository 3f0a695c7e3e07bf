package transport

import (
	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Decide tells whether the connection that carried a response with header h
// and body framing f may serve another request.
func Decide(h model.Header, f Framing) model.Disposition {
	if f == FramingClose {
		return model.DontReuse
	}
	if httpguts.HeaderValuesContainsToken(h.Values("Connection"), "close") {
		return model.DontReuse
	}
	return model.Reuse
}
