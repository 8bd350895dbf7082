// Package pyconf reads Pelican settings modules (pelicanconf.py).
//
// The files are plain assignments of literals, which Starlark evaluates
// once Python-only syntax (imports, u'' prefixes) is removed.
package pyconf

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	importLine  = regexp.MustCompile(`^(from\s+\S+\s+)?import\s`)
	settingName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// Normalize rewrites Python-only constructs so the source parses as Starlark.
// Import statements are blanked and u'' prefixes dropped; string literals and
// comments are copied untouched.
func Normalize(src []byte) string {
	s := string(src)
	var out strings.Builder
	out.Grow(len(s))
	lineStart := true
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\n':
			out.WriteByte(c)
			lineStart = true
			i++
		case c == ' ' || c == '\t' || c == '\r':
			out.WriteByte(c)
			i++
		case lineStart && importLine.MatchString(s[i:lineEnd(s, i)]):
			// Keep line numbers stable for error messages.
			i = lineEnd(s, i)
		case c == '#':
			end := lineEnd(s, i)
			out.WriteString(s[i:end])
			i = end
		case c == '\'' || c == '"':
			end := stringEnd(s, i)
			out.WriteString(s[i:end])
			i = end
			lineStart = false
		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			word := s[i:j]
			if !(strings.EqualFold(word, "u") && j < len(s) && (s[j] == '\'' || s[j] == '"')) {
				out.WriteString(word)
			}
			i = j
			lineStart = false
		default:
			out.WriteByte(c)
			i++
			lineStart = false
		}
	}
	return out.String()
}

func lineEnd(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(s)
}

// stringEnd returns the index just past the string literal opening at i.
// An unterminated literal runs to the end of its line, or of the source
// when triple-quoted; the parser reports it.
func stringEnd(s string, i int) int {
	quote := s[i : i+1]
	if strings.HasPrefix(s[i:], quote+quote+quote) {
		quote = quote + quote + quote
	}
	for j := i + len(quote); j < len(s); j++ {
		switch {
		case s[j] == '\\':
			j++
		case len(quote) == 1 && s[j] == '\n':
			return j
		case strings.HasPrefix(s[j:], quote):
			return j + len(quote)
		}
	}
	return len(s)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// Eval executes a settings module and returns its UPPER_CASE globals.
// Tuples and lists both become []any, None becomes nil.
func Eval(ctx context.Context, filename string, src []byte) (map[string]any, error) {
	thread := &starlark.Thread{
		Name: "pyconf",
		Print: func(_ *starlark.Thread, msg string) {
			log.Debug().Str("component", "pyconf").Str("file", filename).Msg(msg)
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	globals, err := starlark.ExecFileOptions(opts, thread, filename, Normalize(src), nil)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", filename, err)
	}

	out := make(map[string]any)
	for name, val := range globals {
		if !settingName.MatchString(name) {
			continue
		}
		goVal, err := fromStarlark(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = goVal
	}
	return out, nil
}

func fromStarlark(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer too large")
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case starlark.Indexable:
		// *List and Tuple
		items := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, err := fromStarlark(val.Index(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	case *starlark.Dict:
		dict := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be a string")
			}
			value, err := fromStarlark(item[1])
			if err != nil {
				return nil, err
			}
			dict[string(key)] = value
		}
		return dict, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", v.Type())
}
