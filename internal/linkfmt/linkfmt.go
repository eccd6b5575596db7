// Package linkfmt provides canonical parsing and conversion of relation
// field values between link notations.
//
// Supported notations:
//
//	[[target]]          wikilink
//	[[target|display]]  wikilink with display text
//	[display](target)   markdown link
//
// Targets and display text are trimmed of surrounding whitespace. A value
// already in the requested notation passes through unchanged.
package linkfmt

import (
	"regexp"
	"strings"

	"github.com/quillvault/quill/internal/schema"
)

var markdownRe = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]+)\)$`)

// IsWikilink reports whether s is exactly a wikilink literal.
func IsWikilink(s string) bool {
	_, _, ok := ParseWikilink(s)
	return ok
}

// IsMarkdownLink reports whether s is exactly a markdown link literal.
func IsMarkdownLink(s string) bool {
	s = strings.TrimSpace(s)
	m := markdownRe.FindStringSubmatch(s)
	return m != nil && strings.TrimSpace(m[2]) != ""
}

// ParseWikilink parses a string that is exactly a wikilink literal,
// returning its target and optional display text.
func ParseWikilink(s string) (target string, display string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return "", "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
	if strings.ContainsAny(inner, "[]") {
		return "", "", false
	}
	parts := strings.SplitN(inner, "|", 2)
	target = strings.TrimSpace(parts[0])
	if target == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		display = strings.TrimSpace(parts[1])
	}
	return target, display, true
}

// ParseMarkdownLink parses a string that is exactly a markdown link literal.
func ParseMarkdownLink(s string) (target string, display string, ok bool) {
	s = strings.TrimSpace(s)
	m := markdownRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	target = strings.TrimSpace(m[2])
	if target == "" {
		return "", "", false
	}
	return target, strings.TrimSpace(m[1]), true
}

// Target extracts the reference target from a value in either notation.
// Bare (unbracketed) values are their own target.
func Target(s string) string {
	if t, _, ok := ParseWikilink(s); ok {
		return t
	}
	if t, _, ok := ParseMarkdownLink(s); ok {
		return t
	}
	return strings.TrimSpace(s)
}

// ToWikilink converts a bare or markdown-notated reference to a wikilink.
func ToWikilink(s string) string {
	if IsWikilink(s) {
		return strings.TrimSpace(s)
	}
	if target, display, ok := ParseMarkdownLink(s); ok {
		if display != "" && display != target {
			return "[[" + target + "|" + display + "]]"
		}
		return "[[" + target + "]]"
	}
	return "[[" + strings.TrimSpace(s) + "]]"
}

// ToMarkdownLink converts a bare or wikilink-notated reference to a
// markdown link. The display text defaults to the target.
func ToMarkdownLink(s string) string {
	if IsMarkdownLink(s) {
		return strings.TrimSpace(s)
	}
	if target, display, ok := ParseWikilink(s); ok {
		if display == "" {
			display = target
		}
		return "[" + display + "](" + target + ")"
	}
	t := strings.TrimSpace(s)
	return "[" + t + "](" + t + ")"
}

// Convert rewrites a reference value into the requested notation.
func Convert(s string, format schema.LinkFormat) string {
	switch format {
	case schema.LinkFormatMarkdown:
		return ToMarkdownLink(s)
	default:
		return ToWikilink(s)
	}
}

// InFormat reports whether the value is already in the requested notation.
func InFormat(s string, format schema.LinkFormat) bool {
	switch format {
	case schema.LinkFormatMarkdown:
		return IsMarkdownLink(s)
	default:
		return IsWikilink(s)
	}
}
