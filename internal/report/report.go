// Package report renders a settings reference for a site: every setting
// with the value the site generator will see.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"sitecfg/internal/config"
	"sitecfg/internal/export"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newSocialLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = newSanitizer()
)

// newSanitizer keeps rel="me" on social links alongside the nofollow the
// UGC policy adds.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return p
}

const markdownTemplate = `# {{ .SiteName }}

| Setting | Value | State |
|---------|-------|-------|
{{ range .Rows }}| ` + "`{{ .Name }}`" + ` | {{ .Value }} | {{ .State }} |
{{ end }}
{{ if .Relative }}Links are document-relative: a page at ` + "`{{ .SamplePage }}`" + ` reaches the site root through ` + "`{{ .SamplePrefix }}`" + `.
{{ else }}Links are absolute, rooted at ` + "`{{ .SamplePrefix }}`" + `.
{{ end }}
## Social

{{ range .Social }}- [{{ .Label }}](<{{ .URL }}>)
{{ else }}_none_
{{ end }}
## Blogroll

{{ range .Links }}- [{{ .Label }}](<{{ .URL }}>)
{{ else }}_none_
{{ end }}`

var tmpl = template.Must(template.New("report").Parse(markdownTemplate))

type row struct {
	Name  string
	Value string
	State string
}

const samplePage = "posts/example.html"

type reportData struct {
	SiteName     string
	Relative     bool
	SamplePage   string
	SamplePrefix string
	Rows         []row
	Social       []config.Link
	Links        []config.Link
}

// Markdown returns the settings reference as GitHub-flavoured Markdown.
func Markdown(cfg config.SiteConfig) (string, error) {
	data := reportData{
		SiteName:     cfg.SiteName,
		Relative:     cfg.RelativeURLs,
		SamplePage:   samplePage,
		SamplePrefix: cfg.URLFor(samplePage),
		Social:       escapeLinks(cfg.Social),
		Links:        escapeLinks(cfg.Links),
	}
	for _, s := range cfg.Settings() {
		data.Rows = append(data.Rows, row{
			Name:  s.Name,
			Value: cell(export.PyLiteral(s.Value)),
			State: state(s.Value),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render settings report: %w", err)
	}
	return buf.String(), nil
}

// HTML renders the Markdown report. The output is sanitised unless unsafe
// is set.
func HTML(cfg config.SiteConfig, unsafe bool) (string, error) {
	md, err := Markdown(cfg)
	if err != nil {
		return "", err
	}
	var htmlBuffer bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &htmlBuffer); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	if unsafe {
		return htmlBuffer.String(), nil
	}
	return string(htmlSanitizer.SanitizeBytes(htmlBuffer.Bytes())), nil
}

func state(v any) string {
	switch {
	case config.Disabled(v):
		return "disabled"
	case v == "":
		return "unset"
	}
	return "set"
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	if strings.Contains(s, "`") {
		return s
	}
	return "`" + s + "`"
}

var (
	labelEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)
	urlEscaper   = strings.NewReplacer(">", "%3E", "<", "%3C")
)

func escapeLinks(links []config.Link) []config.Link {
	out := make([]config.Link, len(links))
	for i, l := range links {
		out[i] = config.Link{
			Label: labelEscaper.Replace(l.Label),
			URL:   urlEscaper.Replace(l.URL),
		}
	}
	return out
}
