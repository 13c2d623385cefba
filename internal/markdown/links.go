// Package markdown extracts cross-references from note bodies. Two link forms
// count as references: [[wikilinks]] and standard Markdown links whose
// destination is a local .md file.
package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

var md = goldmark.New()

// ExtractLinks returns deduplicated reference targets in order of first
// appearance. Wikilink aliases ([[Target|Alias]]) resolve to Target; Markdown
// destinations are normalised by dropping the .md extension and any leading
// path, so "notes/Other Note.md" and [[Other Note]] name the same target.
func ExtractLinks(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(target string) {
		target = strings.TrimSpace(target)
		if target == "" {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}

	for _, m := range wikilinkRe.FindAllStringSubmatch(body, -1) {
		raw := m[1]
		if i := strings.Index(raw, "|"); i >= 0 {
			raw = raw[:i]
		}
		add(raw)
	}

	for _, dest := range markdownDestinations([]byte(body)) {
		add(normalizeDestination(dest))
	}

	return out
}

// markdownDestinations walks the goldmark AST and collects link destinations.
func markdownDestinations(source []byte) []string {
	doc := md.Parser().Parse(text.NewReader(source))
	var dests []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			dests = append(dests, string(link.Destination))
		}
		return ast.WalkContinue, nil
	})
	return dests
}

// normalizeDestination reduces a local .md destination to a bare note name.
// External URLs and non-Markdown destinations are not references.
func normalizeDestination(dest string) string {
	if strings.Contains(dest, "://") {
		return ""
	}
	if !strings.HasSuffix(dest, ".md") {
		return ""
	}
	dest = strings.TrimSuffix(dest, ".md")
	if i := strings.LastIndexByte(dest, '/'); i >= 0 {
		dest = dest[i+1:]
	}
	return dest
}

// NoteName reduces a note path to the bare name used as a link target.
func NoteName(path string) string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".md")
}
