package model

import (
	"bytes"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	r, err := NewRequest("GET", "https://user@Example.com:8443/a%2Fb/c?x=1#frag")
	require.NoError(t, err)
	assert.True(t, r.Secure)
	assert.Equal(t, "Example.com", r.Host)
	assert.Equal(t, 8443, r.Port)
	assert.Equal(t, "/a%2Fb/c", r.Path)
	assert.Equal(t, "x=1", r.Query)
	assert.Equal(t, "/a%2Fb/c?x=1", r.RequestURI())
	assert.Equal(t, "Example.com:8443", r.HostHeader())
	assert.Equal(t, "https://Example.com:8443/a%2Fb/c?x=1", r.URL().String())
	assert.Equal(t, ConnKey{Host: "Example.com", Port: 8443, Secure: true}, r.Key())
}

func TestNewRequestDefaults(t *testing.T) {
	r, err := NewRequest("GET", "http://[::1]")
	require.NoError(t, err)
	assert.Equal(t, 80, r.Port)
	assert.Equal(t, "/", r.RequestURI())
	assert.Equal(t, "[::1]", r.HostHeader())
}

func TestNewRequestInvalid(t *testing.T) {
	for _, raw := range []string{"ftp://h/", "http:///path", "/relative", "http://h:99999/", "http://h:x/"} {
		_, err := NewRequest("GET", raw)
		assert.Error(t, err, raw)
	}
}

func TestCloneKeepsOriginal(t *testing.T) {
	r, _ := NewRequest("POST", "http://h/")
	r.Header.Add("A", "1")
	c := r.Clone()
	c.Header.Set("A", "2")
	c.Method = "GET"
	assert.Equal(t, "1", r.Header.Get("A"))
	assert.Equal(t, "POST", r.Method)
}

func TestPrepareDropsManagedHeaders(t *testing.T) {
	r, _ := NewRequest("GET", "http://h/")
	r.Header = Header{{"Host", "x"}, {"content-length", "5"}, {"Transfer-Encoding", "chunked"}, {"Accept", "*/*"}}
	pr, err := r.Prepare()
	require.NoError(t, err)
	assert.Equal(t, Header{{"Accept", "*/*"}}, pr.Header)
	assert.Equal(t, "h", pr.HeaderHost)
}

func TestPrepareValidates(t *testing.T) {
	r, _ := NewRequest("GET", "http://h/")
	r.Method = "GE T"
	_, err := r.Prepare()
	assert.Error(t, err)

	r, _ = NewRequest("GET", "http://h/")
	r.Header.Add("Bad Name", "x")
	_, err = r.Prepare()
	assert.Error(t, err)

	r, _ = NewRequest("GET", "http://h/")
	r.Header.Add("X-Inject", "a\r\nEvil: 1")
	_, err = r.Prepare()
	assert.Error(t, err)

	r, _ = NewRequest("GET", "http://h/")
	r.Body = 42
	_, err = r.Prepare()
	assert.ErrorContains(t, err, "unsupported body type")
}

func TestPrepareBodies(t *testing.T) {
	cases := []struct {
		name       string
		method     string
		body       interface{}
		length     int64
		replayable bool
		content    string
	}{
		{"NoBodyGet", "GET", nil, -1, true, ""},
		{"NoBodyPost", "POST", nil, 0, true, ""},
		{"String", "POST", "abc", 3, true, "abc"},
		{"Bytes", "POST", []byte("abcd"), 4, true, "abcd"},
		{"Buffer", "POST", bytes.NewBufferString("buf"), 3, true, "buf"},
		{"BytesReader", "POST", bytes.NewReader([]byte("br")), 2, true, "br"},
		{"StringsReader", "POST", strings.NewReader("sr"), 2, true, "sr"},
		{"Stream", "POST", io.MultiReader(strings.NewReader("st")), -1, false, "st"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			r, _ := NewRequest(c.method, "http://h/")
			r.Body = c.body
			pr, err := r.Prepare()
			require.NoError(t, err)
			assert.Equal(t, c.length, pr.ContentLength)
			assert.Equal(t, c.replayable, pr.Replayable)

			body, err := pr.GetBody()
			require.NoError(t, err)
			b, _ := io.ReadAll(body)
			assert.Equal(t, c.content, string(b))

			_, err = pr.GetBody()
			if c.replayable {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBodyNotReplayable)
			}
		})
	}
}

func TestSetFormBody(t *testing.T) {
	r, _ := NewRequest("POST", "http://h/")
	r.SetFormBody(url.Values{"q": {"a&b"}})
	assert.Equal(t, "q=a%26b", r.Body)
	assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("content-type"))
}

func TestSetBasicAuth(t *testing.T) {
	r, _ := NewRequest("GET", "http://h/")
	r.SetBasicAuth("Aladdin", "open sesame")
	assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", r.Header.Get("Authorization"))
}
