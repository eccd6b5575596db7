// Package parser handles the YAML frontmatter codec for markdown files.
//
// The codec's contract: the body is preserved byte-exactly on rewrite, and
// malformed YAML fails loudly rather than being guessed at.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Document is a markdown file split into frontmatter and body.
type Document struct {
	// Frontmatter holds the parsed key/value pairs. Nil when the file has
	// no frontmatter block.
	Frontmatter map[string]interface{}

	// Body is everything after the closing delimiter, byte-exact.
	Body string
}

// HasFrontmatter reports whether the file carried a frontmatter block.
func (d *Document) HasFrontmatter() bool {
	return d.Frontmatter != nil
}

// Type returns the document's declared type, if any.
func (d *Document) Type() string {
	if d.Frontmatter == nil {
		return ""
	}
	if s, ok := d.Frontmatter["type"].(string); ok {
		return s
	}
	return ""
}

// frontmatterBounds returns the closing delimiter line index, or -1.
// Frontmatter is only detected when the first line is exactly '---'.
func frontmatterBounds(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i
		}
	}
	return -1
}

// Parse splits markdown content into frontmatter and body.
// Content without a frontmatter block yields a nil Frontmatter map and the
// whole content as body.
func Parse(content string) (*Document, error) {
	lines := strings.Split(content, "\n")

	end := frontmatterBounds(lines)
	if end == -1 {
		return &Document{Body: content}, nil
	}

	raw := strings.Join(lines[1:end], "\n")

	var fm map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}
	// An empty or comment-only block still counts as frontmatter present.
	if fm == nil {
		fm = map[string]interface{}{}
	}

	return &Document{
		Frontmatter: fm,
		Body:        strings.Join(lines[end+1:], "\n"),
	}, nil
}

// ParseFile reads and parses a markdown file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Serialize renders frontmatter and body back into file content.
// yaml.v3 emits map keys in sorted order, so output is deterministic.
func Serialize(frontmatter map[string]interface{}, body string) (string, error) {
	if frontmatter == nil {
		return body, nil
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(frontmatter) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(frontmatter); err != nil {
			return "", fmt.Errorf("failed to serialize frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("failed to serialize frontmatter: %w", err)
		}
	}
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// WriteFile serializes and atomically rewrites a markdown file.
// The body is written back untouched; only the frontmatter block changes.
func WriteFile(path string, frontmatter map[string]interface{}, body string) error {
	content, err := Serialize(frontmatter, body)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
