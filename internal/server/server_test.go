package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecfg/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	holder := config.NewHolder(config.Default(), nil, "site.yaml")
	s := New(holder, Options{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestSettingsEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/settings.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	var settings map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &settings))
	assert.Equal(t, "This Is The Title Of This Page", settings[config.KeySiteName])
	assert.Nil(t, settings[config.KeyFeedAllAtom])

	resp, body = get(t, ts.URL+"/settings.py")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `PLUGINS = ["html_entity"]`)

	resp, body = get(t, ts.URL+"/settings.yaml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "relative_urls: true")
}

func TestReportPage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, `"/ws"`)

	resp, _ = get(t, ts.URL+"/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/report", resp.Header.Get("Location"))

	resp, _ = get(t, ts.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBroadcastReloads(t *testing.T) {
	s, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan config.SiteConfig, 1)
	go s.broadcastReloads(ctx, updates)
	updates <- config.Default()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))

	conn.Close()
	assert.Eventually(t, func() bool { return s.hub.count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	s, ts := newTestServer(t)

	// The client never reads, so its socket buffers fill up.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	big := bytes.Repeat([]byte("x"), 1<<20)
	for i := 0; i < 64 && s.hub.count() > 0; i++ {
		start := time.Now()
		s.hub.broadcastMessage(big)
		require.Less(t, time.Since(start), writeWait+time.Second)
	}
	assert.Equal(t, 0, s.hub.count())
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	holder := config.NewHolder(config.Default(), nil, dir+"/site.yaml")
	s := New(holder, Options{Port: 0})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
