package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpflow/internal"
	"github.com/frankli0324/go-httpflow/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "httpflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
maxRedirects: 3
proxy: http://proxy.local:3128
validateSSL: false
headers:
  Accept: application/json
staticHosts:
  api.local: 127.0.0.1
decompress: never
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.Equal(t, "http://proxy.local:3128", cfg.Proxy)
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFollowRedirects(), "default kept")
	assert.Equal(t, "httpflow", cfg.UserAgent, "default kept")
	assert.Equal(t, map[string]string{"Accept": "application/json"}, cfg.Headers)
	assert.Equal(t, "127.0.0.1", cfg.StaticHosts["api.local"])
}

func TestFollowRedirectsDisabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, "followRedirects: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.GetFollowRedirects())
	assert.Equal(t, 10, cfg.MaxRedirects)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for _, content := range []string{
		"maxRedirects: -1\n",
		"decompress: sometimes\n",
		"ipVersion: ip5\n",
		"maxRedirects: [\n",
	} {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, content)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestClientOptions(t *testing.T) {
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		seen = r.Header.Clone()
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Headers = map[string]string{"X-B": "2", "X-A": "1"}
	cfg.RequestID = BoolPtr(true)
	c := internal.NewClient(cfg.ClientOptions(nil)...)
	defer c.CloseIdle()
	assert.Equal(t, 10, c.MaxRedirects())

	req, err := model.NewRequest("GET", srv.URL+"/")
	require.NoError(t, err)
	resp, err := c.Collect(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status.Code)
	assert.Equal(t, "httpflow", seen.Get("User-Agent"))
	assert.Equal(t, "1", seen.Get("X-A"))
	assert.Equal(t, "2", seen.Get("X-B"))
	assert.NotEmpty(t, seen.Get("X-Request-ID"))

	cfg.FollowRedirects = BoolPtr(false)
	c = internal.NewClient(cfg.ClientOptions(nil)...)
	defer c.CloseIdle()
	resp, err = c.Collect(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 302, resp.Status.Code)
}
