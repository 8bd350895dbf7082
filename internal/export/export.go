// Package export writes a SiteConfig in the formats the site generator and
// its users read: JSON, YAML and a Pelican settings module.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"sitecfg/internal/config"
)

// Write encodes cfg in the given format.
func Write(w io.Writer, cfg config.SiteConfig, format config.Format) error {
	switch format {
	case config.FormatJSON:
		return JSON(w, cfg)
	case config.FormatYAML:
		return YAML(w, cfg)
	case config.FormatPython:
		return Python(w, cfg)
	}
	return fmt.Errorf("%w: cannot write %q", config.ErrUnsupportedFormat, format)
}

// WriteFile atomically replaces path with cfg, encoded by the file extension.
func WriteFile(path string, cfg config.SiteConfig) error {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, cfg, format); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// JSON writes the settings as one object with keys in canonical order.
func JSON(w io.Writer, cfg config.SiteConfig) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range cfg.Settings() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return fmt.Errorf("encode key %s: %w", s.Name, err)
		}
		val, err := json.Marshal(s.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// YAML writes the settings with lower-case keys, the site.yaml convention.
// Pairs are written in flow style: [label, url].
func YAML(w io.Writer, cfg config.SiteConfig) error {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range cfg.Settings() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: strings.ToLower(s.Name)}
		val := &yaml.Node{}
		if err := val.Encode(s.Value); err != nil {
			return fmt.Errorf("encode %s: %w", s.Name, err)
		}
		if pairs, ok := s.Value.([][]string); ok && len(pairs) > 0 {
			for _, item := range val.Content {
				item.Style = yaml.FlowStyle
			}
		}
		mapping.Content = append(mapping.Content, key, val)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}); err != nil {
		return err
	}
	return enc.Close()
}

var pythonTemplate = template.Must(template.New("pelicanconf").Funcs(template.FuncMap{
	"py": PyLiteral,
}).Parse(`#!/usr/bin/env python
# -*- coding: utf-8 -*- #
from __future__ import unicode_literals

{{ range . }}{{ .Name }} = {{ py .Value }}
{{ end }}`))

// Python writes a pelicanconf.py module.
func Python(w io.Writer, cfg config.SiteConfig) error {
	return pythonTemplate.Execute(w, cfg.Settings())
}

// PyLiteral renders an exported setting value as a Python literal.
// Label/URL pairs become a tuple of tuples, plugin lists a list.
func PyLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case string:
		return strconv.Quote(val)
	case []string:
		items := make([]string, len(val))
		for i, s := range val {
			items[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case [][]string:
		if len(val) == 0 {
			return "()"
		}
		var sb strings.Builder
		sb.WriteString("(")
		for _, pair := range val {
			items := make([]string, len(pair))
			for i, s := range pair {
				items[i] = strconv.Quote(s)
			}
			sb.WriteString("(" + strings.Join(items, ", ") + "),")
		}
		sb.WriteString(")")
		return sb.String()
	}
	return strconv.Quote(fmt.Sprint(v))
}

// FormatFor returns the export format named by s, or the one implied by a
// file name when s is empty.
func FormatFor(s, path string) (config.Format, error) {
	if s == "" {
		return config.FormatFromPath(path)
	}
	switch config.Format(strings.TrimPrefix(strings.ToLower(s), ".")) {
	case config.FormatJSON:
		return config.FormatJSON, nil
	case config.FormatYAML, "yml":
		return config.FormatYAML, nil
	case config.FormatPython, "python":
		return config.FormatPython, nil
	}
	return "", fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, s)
}

// DefaultName is the settings file name used when none is given.
func DefaultName(format config.Format) string {
	if format == config.FormatPython {
		return "pelicanconf.py"
	}
	return "site." + string(format)
}
