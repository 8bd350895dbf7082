package report

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// socialLinkTransformer marks absolute links with rel="me" so profile
// pages can verify the site that links to them.
type socialLinkTransformer struct{}

func newSocialLinkTransformer() parser.ASTTransformer {
	return &socialLinkTransformer{}
}

func (t *socialLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if bytes.HasPrefix(link.Destination, []byte("http://")) || bytes.HasPrefix(link.Destination, []byte("https://")) {
			link.SetAttributeString("rel", []byte("me"))
		}
		return ast.WalkContinue, nil
	})
}
