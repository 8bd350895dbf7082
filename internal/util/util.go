package util

import (
	"path"
	"path/filepath"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that links work correctly for pages at any depth.
// For example, a page at posts/a/b.html gets a BaseHref of "../../".
func ComputeBaseHref(relPath string) string {
	dir := path.Dir(strings.TrimPrefix(filepath.ToSlash(relPath), "/"))
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, "/") + 1
	return strings.Repeat("../", depth)
}
