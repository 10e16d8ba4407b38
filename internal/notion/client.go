package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"heresthething/backend/internal/models"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	maxPageSize    = 100
	pageTimeout    = 8 * time.Second

	// Notion allows roughly three requests per second per integration.
	requestsPerSecond = 3
)

type Config struct {
	APIKey     string
	DatabaseID string
	BaseURL    string
}

type Client struct {
	baseURL    string
	apiKey     string
	databaseID string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// APIError represents api error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates client.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: pageTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		databaseID: strings.TrimSpace(cfg.DatabaseID),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}
}

// Configured reports whether configured condition is met.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.databaseID != ""
}

type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []queryPage `json:"results"`
	HasMore    bool        `json:"has_more"`
	NextCursor string      `json:"next_cursor"`
}

type queryPage struct {
	ID         string      `json:"id"`
	Properties PropertyBag `json:"properties"`
}

// ListEntries fetches the full database listing, following the continuation
// cursor until the source reports no further pages. Any single page failure
// fails the whole listing.
func (c *Client) ListEntries(ctx context.Context) ([]models.NotionEntry, error) {
	return c.listEntries(ctx, false)
}

// ListEntriesBestEffort behaves like ListEntries but keeps the pages fetched
// so far when a later page fails, failing only when no page succeeded.
func (c *Client) ListEntriesBestEffort(ctx context.Context) ([]models.NotionEntry, error) {
	return c.listEntries(ctx, true)
}

// listEntries lists entries.
func (c *Client) listEntries(ctx context.Context, keepPartial bool) ([]models.NotionEntry, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("notion database id or api key is missing")
	}

	var entries []models.NotionEntry
	cursor := ""
	for {
		resp, err := c.queryDatabase(ctx, cursor)
		if err != nil {
			if keepPartial && len(entries) > 0 {
				c.logger.Warn("notion_partial_listing", "entries", len(entries), "error", err)
				return entries, nil
			}
			return nil, err
		}
		for _, page := range resp.Results {
			if page.Properties == nil {
				continue
			}
			slug := ExtractSlug(page.Properties)
			if slug == "" {
				continue
			}
			entries = append(entries, models.NotionEntry{
				ID:    page.ID,
				Title: ExtractTitle(page.Properties),
				Slug:  slug,
			})
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return entries, nil
}

// queryDatabase issues one page query, individually time-bounded.
func (c *Client) queryDatabase(ctx context.Context, cursor string) (queryResponse, error) {
	var out queryResponse

	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}

	payload, err := json.Marshal(queryRequest{PageSize: maxPageSize, StartCursor: cursor})
	if err != nil {
		return out, err
	}

	pageCtx, cancel := context.WithTimeout(ctx, pageTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, url.PathEscape(c.databaseID))
	req, err := http.NewRequestWithContext(pageCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("notion query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return out, fmt.Errorf("notion read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode notion query response: %w", err)
	}
	return out, nil
}
