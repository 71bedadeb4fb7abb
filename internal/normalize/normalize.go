// Package normalize repairs blog post metadata: missing titles are derived
// from the file name, missing dates are stamped, and category lists are
// cleaned up. Rules mutate the mapping in place and report whether they
// changed anything, so a second pass over already-normalized metadata is a
// no-op.
package normalize

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/frontmatter"
)

// Normalizer carries the normalization policy.
type Normalizer struct {
	defaultCategory string
	now             func() time.Time
}

// New returns a Normalizer using defaultCategory as the fallback category
// label. now may be nil, in which case time.Now is used; tests inject a
// fixed clock.
func New(defaultCategory string, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{defaultCategory: defaultCategory, now: now}
}

// Apply runs every rule against m. path is the document's file path, used to
// derive a default title. It returns whether any rule changed the mapping
// and a list of human-readable change notes.
func (n *Normalizer) Apply(m *frontmatter.Mapping, path string) (bool, []string) {
	var notes []string
	changed := n.titleRule(m, path, &notes)
	if n.dateRule(m, &notes) {
		changed = true
	}
	if n.categoriesRule(m, &notes) {
		changed = true
	}
	return changed, notes
}

// titleRule sets a title derived from the file name when the field is
// absent, null, or empty.
func (n *Normalizer) titleRule(m *frontmatter.Mapping, path string, notes *[]string) bool {
	if v, ok := m.Get("title"); ok && !frontmatter.IsBlank(v) {
		return false
	}
	title := DefaultTitle(path)
	m.Set("title", frontmatter.QuotedScalar(title))
	*notes = append(*notes, fmt.Sprintf("set title %q", title))
	return true
}

// dateRule stamps the current UTC time in RFC 3339 form when the field is
// absent, null, or empty.
func (n *Normalizer) dateRule(m *frontmatter.Mapping, notes *[]string) bool {
	if v, ok := m.Get("date"); ok && !frontmatter.IsBlank(v) {
		return false
	}
	stamp := n.now().UTC().Format(time.RFC3339)
	m.Set("date", frontmatter.QuotedScalar(stamp))
	*notes = append(*notes, fmt.Sprintf("set date %s", stamp))
	return true
}

// categoriesRule guarantees a non-empty categories list: blank and
// non-string entries are dropped, a non-list value is removed outright, and
// an absent field falls back to the default category.
func (n *Normalizer) categoriesRule(m *frontmatter.Mapping, notes *[]string) bool {
	changed := false

	if v, ok := m.Get("categories"); ok {
		if v.Kind == yaml.SequenceNode {
			kept := make([]string, 0, len(v.Content))
			for _, entry := range v.Content {
				s, isStr := frontmatter.StringValue(entry)
				if isStr && strings.TrimSpace(s) != "" {
					kept = append(kept, s)
				}
			}
			switch {
			case len(kept) == 0:
				m.Delete("categories")
				changed = true
				*notes = append(*notes, "removed empty categories list")
			case len(kept) != len(v.Content):
				m.Set("categories", frontmatter.QuotedList(kept))
				changed = true
				*notes = append(*notes, "dropped blank categories")
			default:
				// Nothing dropped: the nodes stay as-is so the
				// author's list and quoting styles survive.
			}
		} else {
			// Scalar, null, or nested mapping: not a usable list.
			m.Delete("categories")
			changed = true
			*notes = append(*notes, "removed non-list categories")
		}
	}

	if _, ok := m.Get("categories"); !ok {
		m.Set("categories", frontmatter.QuotedList([]string{n.defaultCategory}))
		changed = true
		*notes = append(*notes, fmt.Sprintf("set default category %q", n.defaultCategory))
	}
	return changed
}

// DefaultTitle derives a title from a file path: base name without the .md
// extension, underscores as spaces, each word title-cased.
func DefaultTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Split(name, " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(w)
	out := make([]rune, len(runes))
	out[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		out[i] = unicode.ToLower(runes[i])
	}
	return string(out)
}
