package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSplitsFrontmatterAndBody(t *testing.T) {
	content := "---\ntype: task\nstatus: todo\n---\n# Heading\n\nBody text.\n"

	doc, err := Parse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !doc.HasFrontmatter() {
		t.Fatal("expected frontmatter")
	}
	want := map[string]interface{}{"type": "task", "status": "todo"}
	if diff := cmp.Diff(want, doc.Frontmatter); diff != "" {
		t.Errorf("frontmatter mismatch (-want +got):\n%s", diff)
	}
	if doc.Body != "# Heading\n\nBody text.\n" {
		t.Errorf("body mismatch: %q", doc.Body)
	}
	if doc.Type() != "task" {
		t.Errorf("type = %q, want task", doc.Type())
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	doc, err := Parse("just a note\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.HasFrontmatter() {
		t.Error("expected no frontmatter")
	}
	if doc.Body != "just a note\n" {
		t.Errorf("body mismatch: %q", doc.Body)
	}
}

func TestParseUnclosedFrontmatterIsBody(t *testing.T) {
	doc, err := Parse("---\ntype: task\nno closing delimiter\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.HasFrontmatter() {
		t.Error("unclosed frontmatter must be treated as body")
	}
}

func TestParseEmptyFrontmatterBlock(t *testing.T) {
	doc, err := Parse("---\n---\nbody\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !doc.HasFrontmatter() {
		t.Error("an empty block still counts as frontmatter present")
	}
	if len(doc.Frontmatter) != 0 {
		t.Errorf("expected empty frontmatter, got %v", doc.Frontmatter)
	}
}

func TestParseMalformedYAMLFailsLoudly(t *testing.T) {
	_, err := Parse("---\nstatus: [unclosed\n---\n")
	if err == nil {
		t.Fatal("expected a parse error for malformed YAML")
	}
}

func TestSerializePreservesBodyExactly(t *testing.T) {
	body := "# Title\n\n  indented\n\ttabbed\ntrailing spaces  \n"
	content, err := Serialize(map[string]interface{}{"type": "task"}, body)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if !strings.HasSuffix(content, body) {
		t.Errorf("body not preserved byte-exactly:\n%q", content)
	}

	doc, err := Parse(content)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if doc.Body != body {
		t.Errorf("round-trip body mismatch: %q", doc.Body)
	}
}

func TestSerializeNilFrontmatterIsBodyOnly(t *testing.T) {
	content, err := Serialize(nil, "plain\n")
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if content != "plain\n" {
		t.Errorf("expected body only, got %q", content)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("---\ntype: task\n---\nbody\n"), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc.Frontmatter["status"] = "todo"
	if err := WriteFile(path, doc.Frontmatter, doc.Body); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if got.Frontmatter["status"] != "todo" || got.Frontmatter["type"] != "task" {
		t.Errorf("frontmatter mismatch: %v", got.Frontmatter)
	}
	if got.Body != "body\n" {
		t.Errorf("body mismatch: %q", got.Body)
	}
}
