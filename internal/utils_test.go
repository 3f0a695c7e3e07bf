package internal_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/frankli0324/go-httpflow/internal"
	"github.com/frankli0324/go-httpflow/internal/model"
)

// scriptedConn serves one canned response and records the request.
type scriptedConn struct {
	key     model.ConnKey
	br      *bufio.Reader
	written bytes.Buffer
}

func (c *scriptedConn) Write(p []byte) (int, error) { return c.written.Write(p) }
func (c *scriptedConn) Reader() *bufio.Reader       { return c.br }

// scriptedManager hands out a new connection per exchange, each replaying
// the next response of the script.
type scriptedManager struct {
	mu        sync.Mutex
	responses []string
	conns     []*scriptedConn
	released  []model.Disposition
}

var _ internal.Manager = (*scriptedManager)(nil)

func newScripted(responses ...string) *scriptedManager {
	return &scriptedManager{responses: responses}
}

func (m *scriptedManager) Acquire(_ context.Context, key model.ConnKey) (internal.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := "HTTP/1.1 599 Script Exhausted\r\nContent-Length: 0\r\n\r\n"
	if len(m.responses) > 0 {
		resp, m.responses = m.responses[0], m.responses[1:]
	}
	c := &scriptedConn{key: key, br: bufio.NewReader(strings.NewReader(resp))}
	m.conns = append(m.conns, c)
	return c, nil
}

func (m *scriptedManager) Release(_ internal.Conn, disp model.Disposition) {
	m.mu.Lock()
	m.released = append(m.released, disp)
	m.mu.Unlock()
}

func (m *scriptedManager) sent(i int) string { return m.conns[i].written.String() }

func mustRequest(t *testing.T, method, url string) *model.Request {
	t.Helper()
	req, err := model.NewRequest(method, url)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func readString(_ model.Status, _ model.Header, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	return string(b), err
}
