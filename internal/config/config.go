// internal/config/config.go
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"sitecfg/internal/pyconf"
)

// Setting names as the external site generator reads them.
const (
	KeyAuthor              = "AUTHOR"
	KeySiteName            = "SITENAME"
	KeySiteURL             = "SITEURL"
	KeyTheme               = "THEME"
	KeyTimezone            = "TIMEZONE"
	KeyDefaultLang         = "DEFAULT_LANG"
	KeyFeedAllAtom         = "FEED_ALL_ATOM"
	KeyCategoryFeedAtom    = "CATEGORY_FEED_ATOM"
	KeyTranslationFeedAtom = "TRANSLATION_FEED_ATOM"
	KeyLinks               = "LINKS"
	KeySocial              = "SOCIAL"
	KeyDefaultPagination   = "DEFAULT_PAGINATION"
	KeyRelativeURLs        = "RELATIVE_URLS"
	KeyPluginPath          = "PLUGIN_PATH"
	KeyPlugins             = "PLUGINS"
)

// SettingNames lists every setting in canonical order.
var SettingNames = []string{
	KeyAuthor,
	KeySiteName,
	KeySiteURL,
	KeyTheme,
	KeyTimezone,
	KeyDefaultLang,
	KeyFeedAllAtom,
	KeyCategoryFeedAtom,
	KeyTranslationFeedAtom,
	KeyLinks,
	KeySocial,
	KeyDefaultPagination,
	KeyRelativeURLs,
	KeyPluginPath,
	KeyPlugins,
}

// Link is one blogroll or social widget entry.
type Link struct {
	Label string `yaml:"label" validate:"required,nocontrol"`
	URL   string `yaml:"url" validate:"required,http_url"`
}

// Pagination is the default number of articles per page. Zero disables
// pagination and is exported as the literal false.
type Pagination int

// Enabled reports whether pagination is switched on.
func (p Pagination) Enabled() bool { return p > 0 }

// SiteConfig holds the settings handed to the site generator at build start.
// A nil feed setting means the feed is not generated.
type SiteConfig struct {
	Author              string     `setting:"AUTHOR" validate:"required,nocontrol"`
	SiteName            string     `setting:"SITENAME" validate:"required,nocontrol"`
	SiteURL             string     `setting:"SITEURL" validate:"omitempty,url"`
	Theme               string     `setting:"THEME" validate:"required,nocontrol"`
	Timezone            string     `setting:"TIMEZONE" validate:"required,timezone"`
	DefaultLang         string     `setting:"DEFAULT_LANG" validate:"required,locale"`
	FeedAllAtom         *string    `setting:"FEED_ALL_ATOM" validate:"omitempty,nocontrol"`
	CategoryFeedAtom    *string    `setting:"CATEGORY_FEED_ATOM" validate:"omitempty,nocontrol"`
	TranslationFeedAtom *string    `setting:"TRANSLATION_FEED_ATOM" validate:"omitempty,nocontrol"`
	Links               []Link     `setting:"LINKS" validate:"dive"`
	Social              []Link     `setting:"SOCIAL" validate:"dive"`
	DefaultPagination   Pagination `setting:"DEFAULT_PAGINATION" validate:"gte=0"`
	RelativeURLs        bool       `setting:"RELATIVE_URLS"`
	PluginPath          string     `setting:"PLUGIN_PATH" validate:"nocontrol"`
	Plugins             []string   `setting:"PLUGINS" validate:"dive,required,nocontrol"`
}

// Default returns the reference settings for the site.
func Default() SiteConfig {
	return SiteConfig{
		Author:       "Eric Plumb",
		SiteName:     "This Is The Title Of This Page",
		Theme:        "theme/built-texts",
		Timezone:     "US/Pacific",
		DefaultLang:  "en",
		Links:        []Link{},
		Social: []Link{
			{Label: "Twitter", URL: "http://twitter.com/xanthelasmoidea"},
			{Label: "GitHub", URL: "https://github.com/professorplumb"},
		},
		RelativeURLs: true,
		PluginPath:   "../pelican-plugins",
		Plugins:      []string{"html_entity"},
	}
}

// Format identifies a settings file syntax.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatJSON   Format = "json"
	FormatPython Format = "py"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".py":
		return FormatPython, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Loader reads settings files. The zero value is ready to use.
type Loader struct {
	// Strict rejects settings this record does not know about.
	Strict bool
	// Timeout bounds evaluation of Python settings files.
	Timeout time.Duration
}

// Load reads a settings file with the default Loader.
func Load(path string) (SiteConfig, error) {
	return (&Loader{}).Load(path)
}

// Load reads the file at path and decodes it into a SiteConfig.
// The result is not validated.
func (l *Loader) Load(path string) (SiteConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return SiteConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	cfg, err := l.parse(data, format, filepath.Base(path))
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes settings from data in the given format.
func (l *Loader) Parse(data []byte, format Format) (SiteConfig, error) {
	return l.parse(data, format, "settings."+string(format))
}

func (l *Loader) parse(data []byte, format Format, name string) (SiteConfig, error) {
	raw := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return SiteConfig{}, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return SiteConfig{}, err
		}
	case FormatJSON:
		// JSON is a subset of YAML; this keeps integer typing consistent.
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return SiteConfig{}, err
		}
	case FormatPython:
		timeout := l.Timeout
		if timeout == 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		globals, err := pyconf.Eval(ctx, name, data)
		if err != nil {
			return SiteConfig{}, err
		}
		raw = globals
	default:
		return SiteConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return FromMap(raw, l.Strict)
}

// Location resolves the configured time zone.
func (c SiteConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
