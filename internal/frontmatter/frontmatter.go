// Package frontmatter implements the delimited key-value header at the start
// of each note file. Parsing keeps the original bytes and the decoded YAML
// node tree side by side: a document that was never mutated serialises back
// byte-identically, and a mutated one re-encodes through the node tree so
// unknown keys, key order, and list syntax survive the round trip.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mvantol/ansuz/internal/apperr"
	"github.com/mvantol/ansuz/internal/models"
)

const delim = "---"

// Lifecycle keys recognised by the engine. Any other key is passed through
// untouched.
const (
	KeyTitle     = "title"
	KeyType      = "type"
	KeyStatus    = "status"
	KeyCreated   = "created"
	KeyProcessed = "processed_date"
	KeyPromoted  = "promoted_date"
	KeyQuality   = "quality_score"
	KeyTags      = "tags"
	KeySummary   = "summary"
)

// Doc is one parsed note file: an optional YAML header plus the raw body.
type Doc struct {
	orig  []byte
	node  *yaml.Node // document node; nil when the file has no header
	body  string     // verbatim bytes after the closing delimiter line
	dirty bool
}

// Parse splits data into header and body. A file without a leading delimiter
// has no header and is all body. A header that is opened but never closed,
// or whose YAML cannot be decoded into a mapping, is apperr.ErrParse:
// lifecycle decisions must not run on half-read metadata.
func Parse(data []byte) (*Doc, error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return &Doc{orig: data, body: string(data)}, nil
	}

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, fmt.Errorf("frontmatter: unterminated header: %w", apperr.ErrParse)
	}

	yamlBlock := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := trimOneNewline(after)

	var node yaml.Node
	if err := yaml.Unmarshal(yamlBlock, &node); err != nil {
		return nil, fmt.Errorf("frontmatter: %v: %w", err, apperr.ErrParse)
	}
	if len(node.Content) > 0 && node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter: header is not a mapping: %w", apperr.ErrParse)
	}

	return &Doc{orig: data, node: &node, body: string(body)}, nil
}

// trimOneNewline removes the single line break that terminates the closing
// delimiter, leaving the body bytes otherwise untouched.
func trimOneNewline(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}

// Body returns the note body exactly as it appears on disk.
func (d *Doc) Body() string { return d.body }

// HasHeader reports whether the file carried a front-matter block.
func (d *Doc) HasHeader() bool { return d.node != nil && len(d.node.Content) > 0 }

// Dirty reports whether any field was mutated since parsing.
func (d *Doc) Dirty() bool { return d.dirty }

// Bytes serialises the document. An unmodified document returns the original
// bytes verbatim.
func (d *Doc) Bytes() ([]byte, error) {
	if !d.dirty {
		return d.orig, nil
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.node); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	buf.WriteString(delim + "\n")
	buf.WriteString(d.body)
	return buf.Bytes(), nil
}

// mapping returns the top-level mapping node, or nil when no header exists.
func (d *Doc) mapping() *yaml.Node {
	if d.node == nil || len(d.node.Content) == 0 {
		return nil
	}
	return d.node.Content[0]
}

// find returns the value node for key, or nil.
func (d *Doc) find(key string) *yaml.Node {
	m := d.mapping()
	if m == nil {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Has reports whether key is present in the header.
func (d *Doc) Has(key string) bool { return d.find(key) != nil }

// GetString returns the scalar value for key.
func (d *Doc) GetString(key string) (string, bool) {
	v := d.find(key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return "", false
	}
	return v.Value, true
}

// GetFloat returns the numeric value for key.
func (d *Doc) GetFloat(key string) (float64, bool) {
	s, ok := d.GetString(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetStringList returns the scalar elements of a sequence-valued key. A
// scalar value is treated as a one-element list.
func (d *Doc) GetStringList(key string) []string {
	v := d.find(key)
	if v == nil {
		return nil
	}
	switch v.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind == yaml.ScalarNode && item.Value != "" {
				out = append(out, item.Value)
			}
		}
		return out
	case yaml.ScalarNode:
		if v.Value == "" {
			return nil
		}
		return []string{v.Value}
	}
	return nil
}

// ensureMapping creates the header structure on first mutation of a
// header-less file.
func (d *Doc) ensureMapping() *yaml.Node {
	if m := d.mapping(); m != nil {
		return m
	}
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	d.node = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m}}
	return m
}

// setNode replaces the value node for key, appending the pair when absent.
func (d *Doc) setNode(key string, value *yaml.Node) {
	m := d.ensureMapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			d.dirty = true
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	d.dirty = true
}

// SetString sets a string-valued key.
func (d *Doc) SetString(key, value string) {
	d.setNode(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// SetFloat sets a numeric key.
func (d *Doc) SetFloat(key string, value float64) {
	d.setNode(key, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!float",
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	})
}

// SetStringList sets a block-style sequence of strings.
func (d *Doc) SetStringList(key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	d.setNode(key, seq)
}

// Record projects the lifecycle fields into a models.Note.
func (d *Doc) Record(path string) *models.Note {
	n := &models.Note{
		Path: path,
		Body: d.body,
		Tags: d.GetStringList(KeyTags),
	}
	if s, ok := d.GetString(KeyStatus); ok {
		n.Status = s
	}
	if s, ok := d.GetString(KeyType); ok {
		if t, valid := models.ParseNoteType(s); valid {
			n.Type = t
		}
	}
	if f, ok := d.GetFloat(KeyQuality); ok {
		n.QualityScore = &f
	}
	n.Created = d.getDate(KeyCreated)
	n.Processed = d.getDate(KeyProcessed)
	n.Promoted = d.getDate(KeyPromoted)
	n.Title = d.deriveTitle()
	return n
}

// getDate parses a date-stamped key, accepting the stamp layout and RFC 3339.
func (d *Doc) getDate(key string) *time.Time {
	s, ok := d.GetString(key)
	if !ok || s == "" {
		return nil
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// deriveTitle returns the header "title" if present, otherwise the first H1
// heading in the body.
func (d *Doc) deriveTitle() string {
	if t, ok := d.GetString(KeyTitle); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(d.body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
