package textutil

import (
	"regexp"
	"strings"
)

var (
	slugShapeRE = regexp.MustCompile(`(?i)^[a-z0-9]+(?:[-_][a-z0-9]+)+$`)
	slugSplitRE = regexp.MustCompile(`[-_]+`)
	nonSlugRE   = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRunRE  = regexp.MustCompile(`\s+`)
	hyphenRunRE = regexp.MustCompile(`-+`)
)

// LooksLikeSlug reports whether s is shaped like a machine slug:
// two or more alphanumeric tokens joined by hyphens or underscores.
func LooksLikeSlug(s string) bool {
	return slugShapeRE.MatchString(s)
}

// HumanizeSlug turns a slug into a display title: split on hyphen and
// underscore runs, capitalize the first letter of each token, join with spaces.
func HumanizeSlug(s string) string {
	parts := slugSplitRE.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, " ")
}

// FormatDisplayTitle picks the title when it is real copy, the slug when the
// title is empty or the "Untitled" placeholder, and humanizes the result if
// it still looks like a slug.
func FormatDisplayTitle(title, slug string) string {
	preferred := title
	if preferred == "" || preferred == "Untitled" {
		preferred = slug
	}
	if LooksLikeSlug(preferred) {
		return HumanizeSlug(preferred)
	}
	return preferred
}

// SlugFromTitle derives a URL-friendly slug from free-form title text.
func SlugFromTitle(title string) string {
	s := strings.ToLower(title)
	s = nonSlugRE.ReplaceAllString(s, "")
	s = spaceRunRE.ReplaceAllString(s, "-")
	s = hyphenRunRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
		s = strings.Trim(s, "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// UniqueSlug appends a short stable suffix taken from the entry id so that
// duplicate titles do not collide.
func UniqueSlug(baseSlug, entryID string) string {
	suffix := strings.ReplaceAll(entryID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		return baseSlug
	}
	return baseSlug + "-" + suffix
}
