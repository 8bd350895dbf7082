package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// FromMap builds a SiteConfig from decoded settings. Keys match setting
// names case-insensitively. Missing settings keep their zero value, which
// for feeds and pagination means disabled.
func FromMap(raw map[string]any, strict bool) (SiteConfig, error) {
	var cfg SiteConfig
	var unknown []string
	seen := make(map[string]string, len(raw))

	for key, value := range raw {
		name := strings.ToUpper(strings.TrimSpace(key))
		if prev, dup := seen[name]; dup {
			return SiteConfig{}, &DecodeError{Setting: name, Err: fmt.Errorf("set twice, as %q and %q", prev, key)}
		}
		seen[name] = key
		var err error
		switch name {
		case KeyAuthor:
			cfg.Author, err = asString(value)
		case KeySiteName:
			cfg.SiteName, err = asString(value)
		case KeySiteURL:
			cfg.SiteURL, err = asString(value)
		case KeyTheme:
			cfg.Theme, err = asString(value)
		case KeyTimezone:
			cfg.Timezone, err = asString(value)
		case KeyDefaultLang:
			cfg.DefaultLang, err = asString(value)
		case KeyFeedAllAtom:
			cfg.FeedAllAtom, err = asFeed(value)
		case KeyCategoryFeedAtom:
			cfg.CategoryFeedAtom, err = asFeed(value)
		case KeyTranslationFeedAtom:
			cfg.TranslationFeedAtom, err = asFeed(value)
		case KeyLinks:
			cfg.Links, err = asLinks(value)
		case KeySocial:
			cfg.Social, err = asLinks(value)
		case KeyDefaultPagination:
			cfg.DefaultPagination, err = asPagination(value)
		case KeyRelativeURLs:
			cfg.RelativeURLs, err = asBool(value)
		case KeyPluginPath:
			cfg.PluginPath, err = asString(value)
		case KeyPlugins:
			cfg.Plugins, err = asStrings(value)
		default:
			unknown = append(unknown, key)
		}
		if err != nil {
			return SiteConfig{}, &DecodeError{Setting: name, Err: err}
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		if strict {
			return SiteConfig{}, fmt.Errorf("%w: %s", ErrUnknownSetting, strings.Join(unknown, ", "))
		}
		log.Warn().
			Str("component", "config").
			Strs("settings", unknown).
			Msg("ignoring unknown settings")
	}
	return cfg, nil
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", fmt.Errorf("expected text, got %T", v)
}

func asFeed(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case bool:
		// Pelican treats False like None here.
		if !s {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected a feed path or null, got %v", v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	}
	return false, fmt.Errorf("expected true or false, got %T", v)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n <= math.MaxInt32 {
			return int(n), true
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n), true
		}
	}
	return 0, false
}

func asPagination(v any) (Pagination, error) {
	switch b := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if b {
			return 0, fmt.Errorf("expected false or a page size, got true")
		}
		return 0, nil
	}
	if n, ok := asInt(v); ok {
		return Pagination(n), nil
	}
	return 0, fmt.Errorf("expected false or a page size, got %T", v)
}

func asList(v any) ([]any, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return l, nil
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}

func asStrings(v any) ([]string, error) {
	items, err := asList(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected text, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func asLinks(v any) ([]Link, error) {
	items, err := asList(v)
	if err != nil {
		return nil, err
	}
	out := make([]Link, 0, len(items))
	for i, item := range items {
		link, err := asLink(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, link)
	}
	return out, nil
}

// asLink accepts the (label, url) pair form and the {label, url} mapping form.
func asLink(v any) (Link, error) {
	switch e := v.(type) {
	case []any:
		if len(e) != 2 {
			return Link{}, fmt.Errorf("expected a (label, url) pair, got %d elements", len(e))
		}
		label, lok := e[0].(string)
		url, uok := e[1].(string)
		if !lok || !uok {
			return Link{}, fmt.Errorf("expected a (label, url) pair of text")
		}
		return Link{Label: label, URL: url}, nil
	case map[string]any:
		var link Link
		for k, val := range e {
			s, ok := val.(string)
			if !ok {
				return Link{}, fmt.Errorf("%s: expected text, got %T", k, val)
			}
			switch strings.ToLower(k) {
			case "label", "name":
				link.Label = s
			case "url":
				link.URL = s
			default:
				return Link{}, fmt.Errorf("unexpected key %q", k)
			}
		}
		return link, nil
	}
	return Link{}, fmt.Errorf("expected a (label, url) pair, got %T", v)
}
