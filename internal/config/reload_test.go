package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, path, sitename string) {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", "site.yaml"))
	require.NoError(t, err)
	out := strings.Replace(string(src), "This Is The Title Of This Page", sitename, 1)
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))
}

func TestHolderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeSettings(t, path, "First")

	holder := NewHolder(Default(), nil, path)
	updates := make(chan SiteConfig, 1)
	holder.Subscribe(updates)

	require.NoError(t, holder.Reload(context.Background()))
	assert.Equal(t, "First", holder.Get().SiteName)

	select {
	case cfg := <-updates:
		assert.Equal(t, "First", cfg.SiteName)
	default:
		t.Fatal("expected a reload notification")
	}
}

func TestHolderReloadKeepsPreviousOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeSettings(t, path, "")

	holder := NewHolder(Default(), nil, path)
	err := holder.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
	assert.Equal(t, Default().SiteName, holder.Get().SiteName)

	require.NoError(t, os.WriteFile(path, []byte("sitename: ["), 0o644))
	err = holder.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
	assert.Equal(t, Default().SiteName, holder.Get().SiteName)
}

func TestChanges(t *testing.T) {
	prev := Default()
	next := Default()
	assert.Empty(t, Changes(prev, next))

	next.SiteName = "Other"
	next.DefaultPagination = 5
	next.Social = next.Social[:1]
	assert.Equal(t, []string{KeySiteName, KeySocial, KeyDefaultPagination}, Changes(prev, next))
}

func TestHolderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeSettings(t, path, "Before")

	holder := NewHolder(Default(), nil, path)
	require.NoError(t, holder.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- holder.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	writeSettings(t, path, "After")

	assert.Eventually(t, func() bool {
		return holder.Get().SiteName == "After"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestHolderWatchLoadsLastOfQuickSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeSettings(t, path, "Before")

	holder := NewHolder(Default(), nil, path)
	require.NoError(t, holder.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = holder.Watch(ctx) }()

	time.Sleep(200 * time.Millisecond)
	writeSettings(t, path, "First")
	time.Sleep(300 * time.Millisecond)
	writeSettings(t, path, "Second")

	assert.Eventually(t, func() bool {
		return holder.Get().SiteName == "Second"
	}, 5*time.Second, 50*time.Millisecond)
	time.Sleep(2 * debounceDuration)
	assert.Equal(t, "Second", holder.Get().SiteName)
}
