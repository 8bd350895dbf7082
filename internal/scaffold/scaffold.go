// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"

	"sitecfg/internal/config"
	"sitecfg/internal/export"
)

// ErrExists is returned when the settings file is already present.
var ErrExists = errors.New("settings file already exists")

const settingsHeader = `# Site settings, read once by the site generator at build start.
# Feeds and pagination are disabled while developing; set a feed path or a
# page size to switch them on.
`

// Options customise a new site.
type Options struct {
	SiteName string
	Author   string
	// Force overwrites an existing settings file.
	Force bool
}

// CreateNewSite writes site.yaml with the default settings into dir,
// together with the content directory and the theme directory it names.
// It returns the path of the settings file.
func CreateNewSite(dir string, opts Options) (string, error) {
	cfg := config.Default()
	if opts.SiteName != "" {
		cfg.SiteName = opts.SiteName
	}
	if opts.Author != "" {
		cfg.Author = opts.Author
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "site.yaml")
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}

	dirs := []string{"content", filepath.FromSlash(cfg.Theme)}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(settingsHeader)
	if err := export.YAML(&buf, cfg); err != nil {
		return "", err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	log.Info().Str("component", "scaffold").Str("path", path).Msg("site scaffolded")
	return path, nil
}
