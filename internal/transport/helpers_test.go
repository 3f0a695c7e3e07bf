package transport

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// fakeConn replays a canned response stream and records what is written.
type fakeConn struct {
	br      *bufio.Reader
	written bytes.Buffer
}

func newFakeConn(response string) *fakeConn {
	return &fakeConn{br: bufio.NewReader(strings.NewReader(response))}
}

func (c *fakeConn) Write(p []byte) (int, error) { return c.written.Write(p) }
func (c *fakeConn) Reader() *bufio.Reader       { return c.br }

func (c *fakeConn) rest(t *testing.T) string {
	t.Helper()
	b, err := io.ReadAll(c.br)
	require.NoError(t, err)
	return string(b)
}

func prepare(t *testing.T, method, url string) *model.PreparedRequest {
	t.Helper()
	req, err := model.NewRequest(method, url)
	require.NoError(t, err)
	pr, err := req.Prepare()
	require.NoError(t, err)
	return pr
}

func readAll(_ model.Status, _ model.Header, body io.Reader) ([]byte, error) {
	return io.ReadAll(body)
}

func header(kv ...string) (h model.Header) {
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return
}
