// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sitecfg/internal/config"
	"sitecfg/internal/export"
	"sitecfg/internal/report"
)

// Options configure the development server.
type Options struct {
	Port int
	// Unsafe skips HTML sanitising of the report page.
	Unsafe bool
}

// Server exposes the current settings over HTTP and tells connected
// browsers to reload when the settings file changes.
type Server struct {
	holder *config.Holder
	hub    *Hub
	opts   Options
	logger zerolog.Logger
}

// New creates a Server for the settings held by holder.
func New(holder *config.Holder, opts Options) *Server {
	logger := log.With().Str("component", "server").Logger()
	return &Server{
		holder: holder,
		hub:    newHub(logger),
		opts:   opts,
		logger: logger,
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.hub, w, r)
	})
	mux.HandleFunc("/settings.json", s.settingsHandler(config.FormatJSON, "application/json"))
	mux.HandleFunc("/settings.yaml", s.settingsHandler(config.FormatYAML, "application/yaml"))
	mux.HandleFunc("/settings.py", s.settingsHandler(config.FormatPython, "text/x-python; charset=utf-8"))
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/report", http.StatusFound)
	})
	return noCache(mux)
}

func (s *Server) settingsHandler(format config.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := export.Write(&buf, s.holder.Get(), format); err != nil {
			s.logger.Error().Err(err).Str("format", string(format)).Msg("failed to encode settings")
			http.Error(w, "failed to encode settings", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(buf.Bytes())
	}
}

var reportPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }} | settings</title>
</head>
<body>
{{ .Body }}
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'sitecfg serve'.");
    };
  })();
</script>
</body>
</html>
`))

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	cfg := s.holder.Get()
	body, err := report.HTML(cfg, s.opts.Unsafe)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render report")
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := reportPage.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{cfg.SiteName, template.HTML(body)}); err != nil {
		s.logger.Error().Err(err).Msg("failed to render report page")
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// Run watches the settings file and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	updates := make(chan config.SiteConfig, 1)
	s.holder.Subscribe(updates)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.holder.Watch(gctx)
	})
	g.Go(func() error {
		return s.broadcastReloads(gctx, updates)
	})
	g.Go(func() error {
		s.logger.Info().Str("addr", "http://localhost"+srv.Addr).Msg("serving settings")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// broadcastReloads tells every client to reload after each settings update.
func (s *Server) broadcastReloads(ctx context.Context, updates <-chan config.SiteConfig) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			s.logger.Info().Msg("settings changed, triggering reload")
			s.hub.broadcastMessage([]byte("reload"))
		}
	}
}
