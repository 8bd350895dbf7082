package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecfg/internal/config"
)

func TestMarkdown(t *testing.T) {
	md, err := Markdown(config.Default())
	require.NoError(t, err)

	assert.Contains(t, md, "# This Is The Title Of This Page\n")
	for _, line := range []string{
		"| `AUTHOR` | `\"Eric Plumb\"` | set |",
		"| `SITEURL` | `\"\"` | unset |",
		"| `FEED_ALL_ATOM` | `None` | disabled |",
		"| `DEFAULT_PAGINATION` | `False` | disabled |",
		"| `RELATIVE_URLS` | `True` | set |",
		"| `PLUGINS` | `[\"html_entity\"]` | set |",
		"- [Twitter](<http://twitter.com/xanthelasmoidea>)",
		"- [GitHub](<https://github.com/professorplumb>)",
	} {
		assert.Contains(t, md, line+"\n")
	}
	assert.Contains(t, md, "## Blogroll\n\n_none_\n")
	assert.Contains(t, md, "reaches the site root through `../`.")
}

func TestMarkdownAbsoluteURLs(t *testing.T) {
	cfg := config.Default()
	cfg.RelativeURLs = false
	cfg.SiteURL = "https://example.com/blog"

	md, err := Markdown(cfg)
	require.NoError(t, err)
	assert.Contains(t, md, "Links are absolute, rooted at `https://example.com/blog/`.")
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	cfg := config.Default()
	cfg.Plugins = []string{"a|b"}
	cfg.Links = []config.Link{{Label: "[x]", URL: "https://example.com/<y>"}}

	md, err := Markdown(cfg)
	require.NoError(t, err)
	assert.Contains(t, md, `a\|b`)
	assert.Contains(t, md, `- [\[x\]](<https://example.com/%3Cy%3E>)`)
}

func TestHTML(t *testing.T) {
	out, err := HTML(config.Default(), true)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `rel="me"`)
	assert.Contains(t, out, `href="https://github.com/professorplumb"`)

	safe, err := HTML(config.Default(), false)
	require.NoError(t, err)
	assert.Contains(t, safe, "<table>")
	assert.Contains(t, safe, `href="https://github.com/professorplumb"`)
	assert.Contains(t, safe, `rel="me`)
}

func TestHTMLSanitizes(t *testing.T) {
	cfg := config.Default()
	cfg.SiteName = "<script>alert(1)</script>Blog"

	out, err := HTML(cfg, false)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Blog")

	raw, err := HTML(cfg, true)
	require.NoError(t, err)
	assert.Contains(t, raw, "<script>")
}
