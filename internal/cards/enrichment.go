package cards

import (
	"context"
	"sync"
	"time"
)

const enrichmentTTL = 5 * time.Minute

// enrichmentEntry carries the fresher editorial copy for one slug.
type enrichmentEntry struct {
	Title     string
	QuoteText string
}

// enrichmentCache holds the slug→copy mapping for the process lifetime,
// replaced wholesale when the TTL lapses. The mutex is held across the
// paginated fetch, so concurrent callers share one listing instead of each
// racing through a redundant full fetch.
type enrichmentCache struct {
	mu        sync.Mutex
	value     map[string]enrichmentEntry
	expiresAt time.Time
}

// enrichmentMap returns the slug→copy overlay from the content database. An
// unconfigured client yields an empty map; a fetch failure propagates so the
// caller can fall back to the pre-enrichment list.
func (s *Service) enrichmentMap(ctx context.Context) (map[string]enrichmentEntry, error) {
	if s.notion == nil || !s.notion.Configured() {
		return map[string]enrichmentEntry{}, nil
	}

	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	now := s.now()
	if s.cache.value != nil && now.Before(s.cache.expiresAt) {
		return s.cache.value, nil
	}

	entries, err := s.notion.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]enrichmentEntry, len(entries))
	for _, entry := range entries {
		if entry.Slug == "" || entry.Title == "" {
			continue
		}
		// Last occurrence wins on duplicate slugs.
		mapping[entry.Slug] = enrichmentEntry{Title: entry.Title, QuoteText: entry.Title}
	}

	s.cache.value = mapping
	s.cache.expiresAt = now.Add(enrichmentTTL)
	return mapping, nil
}
