package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/frontmatter"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600))
}

func testNormalizer() *Normalizer {
	return New("Uncategorized", fixedClock)
}

func mustParse(t *testing.T, block string) *frontmatter.Mapping {
	t.Helper()
	m, err := frontmatter.Parse(block)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func categories(t *testing.T, m *frontmatter.Mapping) []string {
	t.Helper()
	v, ok := m.Get("categories")
	if !ok {
		t.Fatal("categories missing")
	}
	var out []string
	for _, entry := range v.Content {
		out = append(out, entry.Value)
	}
	return out
}

func TestDefaultTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/posts/my_post.md", "My Post"},
		{"my_FIRST_post.md", "My First Post"},
		{"/a/b/hello.md", "Hello"},
		{"already good.md", "Already Good"},
	}
	for _, c := range cases {
		if got := DefaultTitle(c.path); got != c.want {
			t.Errorf("DefaultTitle(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestApply_MissingTitle(t *testing.T) {
	m := mustParse(t, "date: \"2024-01-01T00:00:00Z\"\ncategories:\n  - \"Tech\"")
	changed, _ := testNormalizer().Apply(m, "/posts/my_post.md")
	if !changed {
		t.Fatal("expected change")
	}
	v, _ := m.Get("title")
	if v.Value != "My Post" {
		t.Errorf("title = %q, want %q", v.Value, "My Post")
	}
}

func TestApply_EmptyTitleReplaced(t *testing.T) {
	m := mustParse(t, "title: \"\"\ndate: \"2024-01-01T00:00:00Z\"\ncategories: [\"Tech\"]")
	changed, _ := testNormalizer().Apply(m, "notes.md")
	if !changed {
		t.Fatal("expected change")
	}
	v, _ := m.Get("title")
	if v.Value != "Notes" {
		t.Errorf("title = %q", v.Value)
	}
}

func TestApply_MissingDateUTC(t *testing.T) {
	m := mustParse(t, "title: \"X\"\ncategories: [\"Tech\"]")
	changed, _ := testNormalizer().Apply(m, "x.md")
	if !changed {
		t.Fatal("expected change")
	}
	v, _ := m.Get("date")
	// 10:30 CET is 09:30 UTC.
	if v.Value != "2024-03-15T09:30:00Z" {
		t.Errorf("date = %q, want UTC RFC 3339", v.Value)
	}
	if !strings.HasSuffix(v.Value, "Z") {
		t.Errorf("date %q missing Z suffix", v.Value)
	}
}

func TestApply_CategoriesCollapse(t *testing.T) {
	m := mustParse(t, "title: \"X\"\ndate: \"2024-01-01T00:00:00Z\"\ncategories:\n  - \"\"\n  - \"  \"\n  - \"Tech\"")
	changed, _ := testNormalizer().Apply(m, "x.md")
	if !changed {
		t.Fatal("expected change")
	}
	got := categories(t, m)
	if len(got) != 1 || got[0] != "Tech" {
		t.Errorf("categories = %v, want [Tech]", got)
	}
}

func TestApply_CategoriesAllBlankFallsBack(t *testing.T) {
	for _, block := range []string{
		"title: \"X\"\ndate: \"d\"\ncategories: []",
		"title: \"X\"\ndate: \"d\"\ncategories:\n  - \"\"\n  - \" \"",
	} {
		m := mustParse(t, block)
		changed, _ := testNormalizer().Apply(m, "x.md")
		if !changed {
			t.Fatalf("expected change for %q", block)
		}
		got := categories(t, m)
		if len(got) != 1 || got[0] != "Uncategorized" {
			t.Errorf("categories = %v, want [Uncategorized]", got)
		}
	}
}

func TestApply_CategoriesNonList(t *testing.T) {
	for _, block := range []string{
		"title: \"X\"\ndate: \"d\"\ncategories: \"Tech\"",
		"title: \"X\"\ndate: \"d\"\ncategories:",
	} {
		m := mustParse(t, block)
		changed, _ := testNormalizer().Apply(m, "x.md")
		if !changed {
			t.Fatalf("expected change for %q", block)
		}
		got := categories(t, m)
		if len(got) != 1 || got[0] != "Uncategorized" {
			t.Errorf("categories = %v, want [Uncategorized]", got)
		}
	}
}

func TestApply_NonStringEntriesDropped(t *testing.T) {
	m := mustParse(t, "title: \"X\"\ndate: \"d\"\ncategories:\n  - \"Tech\"\n  - 42\n  - true")
	changed, _ := testNormalizer().Apply(m, "x.md")
	if !changed {
		t.Fatal("expected change")
	}
	got := categories(t, m)
	if len(got) != 1 || got[0] != "Tech" {
		t.Errorf("categories = %v, want [Tech]", got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	m := mustParse(t, "description: \"keep me\"")
	n := testNormalizer()

	changed, _ := n.Apply(m, "/posts/my_post.md")
	if !changed {
		t.Fatal("first pass should change")
	}

	// Round-trip through serialization, as the engine does between runs.
	block, err := frontmatter.Serialize(m)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	m2, err := frontmatter.Parse(block)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}

	changed, notes := n.Apply(m2, "/posts/my_post.md")
	if changed {
		t.Errorf("second pass changed again: %v", notes)
	}
}

func TestApply_PreservesUnrelatedFields(t *testing.T) {
	m := mustParse(t, "draft: true\nauthor: \"lcs\"")
	testNormalizer().Apply(m, "x.md")
	if v, ok := m.Get("draft"); !ok || v.Value != "true" {
		t.Error("draft field lost")
	}
	if v, ok := m.Get("author"); !ok || v.Value != "lcs" {
		t.Error("author field lost")
	}
}

func TestApply_IntactCategoriesKeepStyle(t *testing.T) {
	// A flow-style list with plain scalars is untouched even when another
	// rule forces a rewrite.
	m := mustParse(t, "title: \"\"\ndate: \"2024-01-01T00:00:00Z\"\ncategories: [Tech, Notes]")
	changed, _ := testNormalizer().Apply(m, "post.md")
	if !changed {
		t.Fatal("title rule should have changed the mapping")
	}
	block, err := frontmatter.Serialize(m)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(block, "categories: [Tech, Notes]") {
		t.Errorf("categories restyled:\n%s", block)
	}
}

func TestApply_CompleteMetadataUntouched(t *testing.T) {
	m := mustParse(t, "title: \"Done\"\ndate: \"2024-01-01T00:00:00Z\"\ncategories:\n  - \"Tech\"")
	changed, notes := testNormalizer().Apply(m, "x.md")
	if changed {
		t.Errorf("unexpected change: %v", notes)
	}
}
