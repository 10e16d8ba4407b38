package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const manifestTimeout = 6 * time.Second

// loadRemoteManifest fetches and parses the manifest JSON from url within
// manifestTimeout. The parsed value is returned untyped; validation is the
// normalizer's job.
func loadRemoteManifest(ctx context.Context, client *http.Client, url string) (interface{}, error) {
	if url == "" {
		return nil, ErrConfigMissing
	}

	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrManifestTimeout, url)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse remote manifest: %w", err)
	}
	return raw, nil
}

// loadLocalManifest reads the on-disk manifest. Failures propagate: a missing
// or malformed local manifest is a fatal misconfiguration, there is no
// further fallback behind it.
func loadLocalManifest(path string) (interface{}, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local manifest: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse local manifest %s: %w", path, err)
	}
	return raw, nil
}

// loadSlugMap reads a slug-keyed string map, first from the local path, then
// from fallbackURL when the local read fails (read-only deploy filesystems).
// Lenient: any failure yields an empty map.
func loadSlugMap(ctx context.Context, client *http.Client, path, fallbackURL string) map[string]string {
	if body, err := os.ReadFile(path); err == nil {
		if m := parseSlugMap(body); m != nil {
			return m
		}
	}
	if fallbackURL == "" {
		return map[string]string{}
	}

	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fallbackURL, nil)
	if err != nil {
		return map[string]string{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return map[string]string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return map[string]string{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return map[string]string{}
	}
	if m := parseSlugMap(body); m != nil {
		return m
	}
	return map[string]string{}
}

// parseSlugMap keeps only string-valued entries with non-empty keys.
func parseSlugMap(body []byte) map[string]string {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		if key == "" {
			continue
		}
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out
}
