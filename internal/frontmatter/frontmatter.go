// Package frontmatter splits Markdown documents into a metadata block and a
// body, and parses the block into an order-preserving YAML mapping that can
// be serialized back without losing key order or scalar quoting styles.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/apperr"
)

// DefaultMarker is the delimiter line that opens and closes a metadata block.
const DefaultMarker = "---"

// Split separates raw document content into a frontmatter block and the
// body. The marker must appear at the very start of the content; a missing
// or unterminated block yields ok=false with the full content as body.
func Split(content, marker string) (block, body string, ok bool) {
	if !strings.HasPrefix(content, marker) {
		return "", content, false
	}
	parts := strings.SplitN(content, marker, 3)
	if len(parts) < 3 {
		return "", content, false
	}
	return parts[1], parts[2], true
}

// Join reassembles a serialized block and the body into full document
// content, with exactly one newline between the closing marker and the body.
func Join(block, body, marker string) string {
	if strings.HasPrefix(body, "\n") {
		return marker + "\n" + block + "\n" + marker + body
	}
	return marker + "\n" + block + "\n" + marker + "\n" + body
}

// Mapping wraps a YAML mapping node. Key order and scalar styles survive a
// parse/serialize round trip, which keeps rewrites minimal for documents
// whose metadata did not change.
type Mapping struct {
	node *yaml.Node
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Parse decodes a frontmatter block. An empty or whitespace-only block
// parses to an empty mapping; invalid YAML or a non-mapping top level yields
// an error wrapping apperr.ErrParse.
func Parse(block string) (*Mapping, error) {
	if strings.TrimSpace(block) == "" {
		return NewMapping(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: %w: %v", apperr.ErrParse, err)
	}
	if len(doc.Content) == 0 {
		return NewMapping(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return NewMapping(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter: %w: top level is not a mapping", apperr.ErrParse)
	}
	return &Mapping{node: root}, nil
}

// Serialize renders the mapping as a YAML block with 2-space indentation and
// trailing whitespace trimmed. An empty mapping serializes to "".
func Serialize(m *Mapping) (string, error) {
	if m.Len() == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.node); err != nil {
		return "", fmt.Errorf("frontmatter: serialize: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: serialize: %w", err)
	}
	return strings.TrimRight(buf.String(), " \t\n"), nil
}

// Get returns the value node for key, or ok=false if the key is absent.
func (m *Mapping) Get(key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			return m.node.Content[i+1], true
		}
	}
	return nil, false
}

// Set replaces the value for key in place, preserving its position, or
// appends a new key/value pair at the end of the mapping.
func (m *Mapping) Set(key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			m.node.Content[i+1] = value
			return
		}
	}
	m.node.Content = append(m.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value)
}

// Delete removes key from the mapping, reporting whether it was present.
func (m *Mapping) Delete(key string) bool {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			m.node.Content = append(m.node.Content[:i], m.node.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	return len(m.node.Content) / 2
}

// Keys returns the keys in document order.
func (m *Mapping) Keys() []string {
	out := make([]string, 0, m.Len())
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		out = append(out, m.node.Content[i].Value)
	}
	return out
}

// QuotedScalar returns a double-quoted string scalar node.
func QuotedScalar(s string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: s,
	}
}

// QuotedList returns a sequence node of double-quoted string scalars.
func QuotedList(items []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, it := range items {
		seq.Content = append(seq.Content, QuotedScalar(it))
	}
	return seq
}

// IsBlank reports whether a value node is null or an empty string scalar.
// Absent keys (nil node) are blank too.
func IsBlank(n *yaml.Node) bool {
	if n == nil {
		return true
	}
	if n.Tag == "!!null" {
		return true
	}
	return n.Kind == yaml.ScalarNode && n.Value == ""
}

// StringValue returns the scalar string value of n, or ok=false when n is
// not a string scalar.
func StringValue(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		return "", false
	}
	return n.Value, true
}
