package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecfg/internal/config"
)

const pelicanConf = `#!/usr/bin/env python
# -*- coding: utf-8 -*- #
from __future__ import unicode_literals

AUTHOR = u'Eric Plumb'
SITENAME = u'This Is The Title Of This Page'
THEME = 'theme/built-texts'
TIMEZONE = 'US/Pacific'
DEFAULT_LANG = 'en'
FEED_ALL_ATOM = None
LINKS = []
SOCIAL = (('Twitter', 'http://twitter.com/xanthelasmoidea'),
          ('GitHub', 'https://github.com/professorplumb'), )
DEFAULT_PAGINATION = False
RELATIVE_URLS = True
PLUGIN_PATH = "../pelican-plugins"
PLUGINS = ['html_entity', ]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := execute(context.Background(), cmd)
	return out.String(), err
}

func TestInitThenCheck(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "init", dir, "--sitename", "Notes")
	require.NoError(t, err)
	assert.Contains(t, out, "Site scaffolded")

	out, err = run(t, "-c", filepath.Join(dir, "site.yaml"), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, config.KeyPluginPath)
}

func TestImportPelicanConf(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pelicanconf.py")
	require.NoError(t, os.WriteFile(src, []byte(pelicanConf), 0o644))
	dest := filepath.Join(dir, "site.yaml")

	_, err := run(t, "import", src, "-o", dest)
	require.NoError(t, err)

	cfg, err := config.Load(dest)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Social, cfg.Social)

	_, err = run(t, "import", src, "-o", dest)
	assert.Error(t, err)
	_, err = run(t, "import", src, "-o", dest, "--force")
	assert.NoError(t, err)
}

func TestShowFormats(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pelicanconf.py")
	require.NoError(t, os.WriteFile(src, []byte(pelicanConf), 0o644))

	out, err := run(t, "-c", src, "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"DEFAULT_PAGINATION": false`)
	assert.Contains(t, out, `"FEED_ALL_ATOM": null`)

	out, err = run(t, "-c", src, "show", "--format", "py")
	require.NoError(t, err)
	assert.Contains(t, out, "RELATIVE_URLS = True\n")

	_, err = run(t, "-c", src, "show", "--format", "ini")
	assert.True(t, errors.Is(err, config.ErrUnsupportedFormat))
}

func TestCheckReportsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sitename: Blog\ntimezone: Nowhere/Town\n"), 0o644))

	_, err := run(t, "-c", path, "check")
	var verr *config.ValidationErrors
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, err.Error(), "TIMEZONE")
	assert.Contains(t, err.Error(), "AUTHOR is required")
}

func TestStrictRejectsUnknownSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sitename: Blog\nmenuitems: []\n"), 0o644))

	_, err := run(t, "-c", path, "show")
	require.NoError(t, err)

	_, err = run(t, "-c", path, "--strict", "show")
	assert.True(t, errors.Is(err, config.ErrUnknownSetting))
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "init", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "site.yaml")

	out, err := run(t, "-c", path, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "| `FEED_ALL_ATOM` | `None` | disabled |")

	out, err = run(t, "-c", path, "report", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestLogFileClosedWhenCommandFails(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "sitecfg.log")
	closed := false

	cmd := newRootCommand("test")
	cmd.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			next := closeLog
			closeLog = func() {
				closed = true
				next()
			}
			log.Error().Msg("boom")
			return errors.New("boom")
		},
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-file", logFile, "fail"})

	err := execute(context.Background(), cmd)
	require.EqualError(t, err, "boom")
	assert.True(t, closed)
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}
