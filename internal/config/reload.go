package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const debounceDuration = 500 * time.Millisecond

// Holder keeps the current settings of a file and reloads them on demand.
// A reload that fails to load or validate keeps the previous settings.
type Holder struct {
	mu      sync.RWMutex
	current SiteConfig
	loader  *Loader
	path    string
	logger  zerolog.Logger

	subMu sync.Mutex
	subs  []chan<- SiteConfig
}

// NewHolder creates a Holder serving initial until the first reload.
func NewHolder(initial SiteConfig, loader *Loader, path string) *Holder {
	if loader == nil {
		loader = &Loader{}
	}
	return &Holder{
		current: initial,
		loader:  loader,
		path:    path,
		logger:  log.With().Str("component", "config").Logger(),
	}
}

// Path returns the watched settings file.
func (h *Holder) Path() string { return h.path }

// Get returns the current settings.
func (h *Holder) Get() SiteConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers ch to receive the settings after every successful
// reload. Sends never block; a full channel misses the update.
func (h *Holder) Subscribe(ch chan<- SiteConfig) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.subs = append(h.subs, ch)
}

// Reload reads and validates the settings file, then swaps it in.
func (h *Holder) Reload(_ context.Context) error {
	next, err := h.loader.Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("failed to load settings")
		return fmt.Errorf("load config: %w", err)
	}
	if err := next.Validate(); err != nil {
		h.logger.Error().Err(err).Str("event", "config.validation_failed").Msg("new settings failed validation")
		return fmt.Errorf("validate config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	changed := Changes(prev, next)
	h.logger.Info().
		Str("event", "config.reload_success").
		Strs("changed", changed).
		Msg("settings reloaded")
	if len(changed) > 0 {
		h.logger.Debug().Msg(cmp.Diff(prev, next))
	}

	h.notify(next)
	return nil
}

func (h *Holder) notify(cfg SiteConfig) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str("event", "config.listener_full").Msg("dropping reload notification")
		}
	}
}

// Changes lists the settings whose exported values differ.
func Changes(prev, next SiteConfig) []string {
	prevMap := prev.Map()
	var changed []string
	for _, s := range next.Settings() {
		if !cmp.Equal(prevMap[s.Name], s.Value) {
			changed = append(changed, s.Name)
		}
	}
	return changed
}

// Watch reloads the settings whenever the file changes, until ctx is done.
// The parent directory is watched so editors that save by rename are seen.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	h.logger.Info().Str("event", "config.watcher_started").Str("path", h.path).Msg("watching settings file")

	name := filepath.Clean(h.path)
	// Reload once events have been quiet for debounceDuration.
	timer := time.NewTimer(debounceDuration)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounceDuration)
		case <-timer.C:
			h.logger.Info().Str("file", h.path).Msg("change detected, reloading")
			_ = h.Reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().Err(err).Msg("watcher error")
		}
	}
}
