package config

import (
	"strings"

	"sitecfg/internal/util"
)

// Setting is one exported (name, value) pair. Disabled settings carry the
// literal values the site generator expects: nil for feeds, false for
// pagination.
type Setting struct {
	Name  string
	Value any
}

// Settings returns every setting in canonical order.
func (c SiteConfig) Settings() []Setting {
	return []Setting{
		{KeyAuthor, c.Author},
		{KeySiteName, c.SiteName},
		{KeySiteURL, c.SiteURL},
		{KeyTheme, c.Theme},
		{KeyTimezone, c.Timezone},
		{KeyDefaultLang, c.DefaultLang},
		{KeyFeedAllAtom, feedValue(c.FeedAllAtom)},
		{KeyCategoryFeedAtom, feedValue(c.CategoryFeedAtom)},
		{KeyTranslationFeedAtom, feedValue(c.TranslationFeedAtom)},
		{KeyLinks, pairs(c.Links)},
		{KeySocial, pairs(c.Social)},
		{KeyDefaultPagination, c.DefaultPagination.Value()},
		{KeyRelativeURLs, c.RelativeURLs},
		{KeyPluginPath, c.PluginPath},
		{KeyPlugins, plugins(c.Plugins)},
	}
}

// Map returns the settings keyed by name.
func (c SiteConfig) Map() map[string]any {
	settings := c.Settings()
	m := make(map[string]any, len(settings))
	for _, s := range settings {
		m[s.Name] = s.Value
	}
	return m
}

// Value is the exported form: false when disabled, the page size otherwise.
func (p Pagination) Value() any {
	if !p.Enabled() {
		return false
	}
	return int(p)
}

// Disabled reports whether an exported value means "switched off".
func Disabled(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	}
	return false
}

// URLFor returns the prefix that links on the page at pagePath must use to
// reach the site root: "../" per directory level when relative URLs are on,
// SITEURL with a trailing slash otherwise.
func (c SiteConfig) URLFor(pagePath string) string {
	if c.RelativeURLs {
		return util.ComputeBaseHref(pagePath)
	}
	if c.SiteURL == "" {
		return "/"
	}
	return strings.TrimSuffix(c.SiteURL, "/") + "/"
}

func feedValue(feed *string) any {
	if feed == nil {
		return nil
	}
	return *feed
}

func pairs(links []Link) [][]string {
	out := make([][]string, 0, len(links))
	for _, l := range links {
		out = append(out, []string{l.Label, l.URL})
	}
	return out
}

func plugins(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
