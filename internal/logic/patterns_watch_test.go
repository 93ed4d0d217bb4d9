package logic

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

func TestPatternsWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: false\n"), 0o600))

	e := newTestEngine()
	env := page.NewMemory(models.PageSnapshot{URL: "https://a.example/?address=1"})
	require.True(t, e.Evaluate(env).IsAdInfluenced)

	pw, err := NewPatternsWatcher(path, false, e, nil)
	require.NoError(t, err)
	defer pw.watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte("strict: true\n"), 0o600))
	require.NoError(t, pw.Reload())
	assert.False(t, e.Evaluate(env).IsAdInfluenced)

	require.NoError(t, os.WriteFile(path, []byte("param_key: '('\n"), 0o600))
	assert.Error(t, pw.Reload())
	assert.False(t, e.Evaluate(env).IsAdInfluenced, "bad file keeps previous rules")
}

func TestPatternsWatcherRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: false\n"), 0o600))

	e := newTestEngine()
	env := page.NewMemory(models.PageSnapshot{URL: "https://a.example/?address=1"})

	pw, err := NewPatternsWatcher(path, false, e, nil)
	require.NoError(t, err)
	pw.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pw.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("strict: true\n"), 0o600))
	assert.Eventually(t, func() bool {
		return !e.Evaluate(env).IsAdInfluenced
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestNewPatternsWatcherMissingDir(t *testing.T) {
	_, err := NewPatternsWatcher(filepath.Join(t.TempDir(), "nope", "patterns.yaml"), false, newTestEngine(), nil)
	assert.Error(t, err)
}
