package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
)

func reloadFixture(t *testing.T) (*ReloadingRenderer, string) {
	t.Helper()
	pages := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pages, "index.tmpl"), []byte("<p>home</p>"), 0o600))

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	r, err := NewReloadingRenderer(cfg, pages)
	require.NoError(t, err)
	r.debounce = 10 * time.Millisecond
	return r, pages
}

func status(r *ReloadingRenderer, target string) int {
	return r.Render(httptest.NewRequest(http.MethodGet, target, nil)).Status
}

func TestReloadingRenderer_ReloadPicksUpNewRoutes(t *testing.T) {
	r, pages := reloadFixture(t)
	assert.Equal(t, http.StatusNotFound, status(r, "/about"))

	require.NoError(t, os.WriteFile(filepath.Join(pages, "about.md"), []byte("# About\n"), 0o600))
	require.NoError(t, r.Reload())
	assert.Equal(t, http.StatusOK, status(r, "/about"))
}

func TestReloadingRenderer_FailedReloadKeepsPrevious(t *testing.T) {
	r, pages := reloadFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(pages, "broken.tmpl"), []byte("{{ .Route "), 0o600))

	require.Error(t, r.Reload())
	assert.Equal(t, http.StatusOK, status(r, "/"))
}

func TestReloadingRenderer_WatchReloads(t *testing.T) {
	r, pages := reloadFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// The watcher registers asynchronously; keep touching the file until it is seen.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(pages, "late.md"), []byte("# Late\n"), 0o600)
		return status(r, "/late") == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
}

func TestShouldIgnoreEvent(t *testing.T) {
	assert.True(t, shouldIgnoreEvent("/p/.hidden.md"))
	assert.True(t, shouldIgnoreEvent("/p/index.tmpl~"))
	assert.True(t, shouldIgnoreEvent("/p/#index.tmpl#"))
	assert.False(t, shouldIgnoreEvent("/p/index.tmpl"))
}
