package model

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderLookup(t *testing.T) {
	h := Header{{"Set-Cookie", "a=1"}, {"content-type", "text/plain"}, {"SET-COOKIE", "b=2"}}
	assert.Equal(t, "a=1", h.Get("set-cookie"))
	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("Set-Cookie"))
	assert.True(t, h.Has("Content-Type"))
	assert.False(t, h.Has("Content-Length"))
	assert.Equal(t, "", h.Get("missing"))
}

func TestHeaderMutation(t *testing.T) {
	var h Header
	h.Add("X-A", "1")
	h.Add("X-B", "2")
	h.Add("x-a", "3")
	h.Set("X-A", "4")
	assert.Equal(t, Header{{"X-B", "2"}, {"X-A", "4"}}, h)

	h.Del("x-b")
	assert.Equal(t, Header{{"X-A", "4"}}, h)
}

func TestHeaderCloneIsIndependent(t *testing.T) {
	h := Header{{"A", "1"}}
	c := h.Clone()
	c.Add("B", "2")
	c[0].Value = "changed"
	assert.Equal(t, Header{{"A", "1"}}, h)
}

func TestHeaderStd(t *testing.T) {
	h := Header{{"x-one", "1"}, {"X-One", "2"}, {"Other", "3"}}
	std := h.Std()
	assert.Equal(t, []string{"1", "2"}, std.Values("X-One"))

	back := HeaderFromStd(http.Header{"Accept": {"*/*"}})
	assert.Equal(t, "*/*", back.Get("accept"))
}
