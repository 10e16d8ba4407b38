package cards

import (
	"fmt"
	"regexp"
	"strings"

	"heresthething/backend/internal/models"
	"heresthething/backend/internal/textutil"
)

var (
	hexColorRE    = regexp.MustCompile(`^#[0-9a-f]{6}$`)
	absoluteURLRE = regexp.MustCompile(`(?i)^https?://`)
)

// normalizeOptions controls image URL resolution during normalization.
type normalizeOptions struct {
	// ImageBaseURL is the remote image base; when set it wins over any
	// non-absolute raw image URL.
	ImageBaseURL string
	// FilenameOverrides patches known slug→filename mismatches when an
	// image URL has to be constructed.
	FilenameOverrides map[string]string
}

// normalizeCards validates and coerces raw manifest entries into well-formed
// cards. Malformed entries are dropped silently: the manifest is
// producer-controlled and partial corruption must not break the listing.
func normalizeCards(raw interface{}, opts normalizeOptions) []models.AdviceCard {
	items, ok := raw.([]interface{})
	if !ok {
		return []models.AdviceCard{}
	}

	cards := make([]models.AdviceCard, 0, len(items))
	for index, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		slug := strings.TrimSpace(stringField(record, "slug"))
		if slug == "" {
			continue
		}

		id := strings.TrimSpace(stringField(record, "id"))
		if id == "" {
			id = fmt.Sprintf("%s-%d", slug, index)
		}

		title := strings.TrimSpace(textutil.FixTypographicArtifacts(stringField(record, "title")))
		if title == "" {
			title = slug
		}

		cards = append(cards, models.AdviceCard{
			ID:              id,
			Slug:            slug,
			Title:           title,
			ImageURL:        resolveImageURL(slug, stringField(record, "imageUrl"), opts),
			QuoteText:       textutil.NormalizeWhitespace(textutil.FixTypographicArtifacts(stringField(record, "quoteText"))),
			BackgroundColor: normalizeHexColor(stringField(record, "backgroundColor")),
		})
	}
	return cards
}

// resolveImageURL applies the image resolution policy: a configured remote
// base wins unless the raw value is already an absolute URL; a bare relative
// path survives only when no base is configured; the last resort is the
// conventional local image path.
func resolveImageURL(slug, rawImageURL string, opts normalizeOptions) string {
	trimmed := strings.TrimSpace(rawImageURL)
	base := strings.TrimRight(opts.ImageBaseURL, "/")

	if trimmed != "" && absoluteURLRE.MatchString(trimmed) {
		return trimmed
	}
	if base != "" {
		return base + "/" + imageFilename(slug, opts)
	}
	if trimmed != "" {
		return trimmed
	}
	return "/img/" + imageFilename(slug, opts)
}

// imageFilename handles image filename.
func imageFilename(slug string, opts normalizeOptions) string {
	if override := opts.FilenameOverrides[slug]; override != "" {
		return override
	}
	return slug + ".png"
}

// normalizeHexColor accepts only lowercased #rrggbb values.
func normalizeHexColor(raw string) string {
	color := strings.ToLower(strings.TrimSpace(raw))
	if hexColorRE.MatchString(color) {
		return color
	}
	return ""
}

// stringField returns the named field when it is a string, else "".
func stringField(record map[string]interface{}, name string) string {
	value, _ := record[name].(string)
	return value
}
