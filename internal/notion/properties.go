package notion

import "strings"

// PropertyBag is one page's schema-flexible property map, keyed by the
// human-assigned property names.
type PropertyBag map[string]interface{}

const (
	kindTitle    = "title"
	kindRichText = "rich_text"
)

// plainText returns the plain text of the first text run of the named
// property when it exists and has the expected kind. Absence or a shape
// mismatch at any step yields ok=false, never an error.
func plainText(bag PropertyBag, name, kind string) (string, bool) {
	raw, ok := bag[name]
	if !ok {
		return "", false
	}
	prop, ok := raw.(map[string]interface{})
	if !ok {
		return "", false
	}
	if propKind, _ := prop["type"].(string); propKind != kind {
		return "", false
	}
	items, ok := prop[kind].([]interface{})
	if !ok || len(items) == 0 {
		return "", false
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := first["plain_text"].(string)
	return text, ok
}

// firstNonEmpty handles first non empty.
func firstNonEmpty(probes ...func() (string, bool)) string {
	for _, probe := range probes {
		if value, ok := probe(); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// ExtractTitle returns the advice copy for a page. The upstream schema has
// drifted over time, so several historical property shapes are probed in
// priority order: the long-form "Advice Text" rich-text body, then the
// "Name" and "Title" title properties.
func ExtractTitle(bag PropertyBag) string {
	return firstNonEmpty(
		func() (string, bool) { return plainText(bag, "Advice Text", kindRichText) },
		func() (string, bool) { return plainText(bag, "Name", kindTitle) },
		func() (string, bool) { return plainText(bag, "Title", kindTitle) },
	)
}

// ExtractSlug returns the page slug. The slug property has been both a
// rich-text and a title field historically; rich-text wins.
func ExtractSlug(bag PropertyBag) string {
	return firstNonEmpty(
		func() (string, bool) { return plainText(bag, "slug", kindRichText) },
		func() (string, bool) { return plainText(bag, "Slug", kindRichText) },
		func() (string, bool) { return plainText(bag, "slug", kindTitle) },
		func() (string, bool) { return plainText(bag, "Slug", kindTitle) },
	)
}
