package cards

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"heresthething/backend/internal/config"
	"heresthething/backend/internal/models"
	"heresthething/backend/internal/notion"
	"heresthething/backend/internal/textutil"
)

const (
	manifestFile  = "local-cards.json"
	quotesFile    = "card-quotes.json"
	colorsFile    = "card-colors.json"
	filenameFixes = "card-filename-fixes.json"
)

// Service resolves the card listing from the remote manifest, the local
// manifest and the content database, in that fallback order.
type Service struct {
	manifestURL       string
	imageBaseURL      string
	siteURL           string
	dataRoot          string
	filenameOverrides map[string]string

	httpClient *http.Client
	notion     *notion.Client
	logger     *slog.Logger

	cache enrichmentCache
	now   func() time.Time
}

// NewService creates service.
func NewService(cfg *config.Config, notionClient *notion.Client, httpClient *http.Client, logger *slog.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: manifestTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		manifestURL:       cfg.Manifest.RemoteURL,
		imageBaseURL:      cfg.Manifest.ImageBaseURL,
		siteURL:           cfg.SiteURL,
		dataRoot:          cfg.DataRoot,
		filenameOverrides: loadFilenameOverrides(filepath.Join(cfg.DataRoot, "data", filenameFixes)),
		httpClient:        httpClient,
		notion:            notionClient,
		logger:            logger,
		now:               time.Now,
	}
}

// GetCards resolves the full card list: remote manifest first, local manifest
// as the final fallback tier, auxiliary quote/color maps overlaid where cards
// lack their own values, then content-database enrichment on top. Source
// order is preserved throughout and duplicate slugs survive.
func (s *Service) GetCards(ctx context.Context) ([]models.AdviceCard, error) {
	var (
		wg        sync.WaitGroup
		remoteRaw interface{}
		remoteErr error
		quotes    map[string]string
		colors    map[string]string
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		remoteRaw, remoteErr = loadRemoteManifest(ctx, s.httpClient, s.manifestURL)
	}()
	go func() {
		defer wg.Done()
		quotes = loadSlugMap(ctx, s.httpClient, s.dataPath(quotesFile), s.publicDataURL(quotesFile))
	}()
	go func() {
		defer wg.Done()
		colors = loadSlugMap(ctx, s.httpClient, s.dataPath(colorsFile), s.publicDataURL(colorsFile))
	}()
	wg.Wait()

	opts := normalizeOptions{
		ImageBaseURL:      s.imageBaseURL,
		FilenameOverrides: s.filenameOverrides,
	}

	var base []models.AdviceCard
	if remoteErr == nil {
		base = normalizeCards(remoteRaw, opts)
	} else if !errors.Is(remoteErr, ErrConfigMissing) {
		s.logger.Warn("remote_manifest_unavailable", "error", remoteErr)
	}

	if len(base) == 0 {
		raw, err := loadLocalManifest(s.dataPath(manifestFile))
		if err != nil {
			return nil, err
		}
		base = normalizeCards(raw, opts)
	}

	for i := range base {
		if base[i].QuoteText == "" {
			base[i].QuoteText = textutil.NormalizeWhitespace(textutil.FixTypographicArtifacts(quotes[base[i].Slug]))
		}
		if base[i].BackgroundColor == "" {
			base[i].BackgroundColor = normalizeHexColor(colors[base[i].Slug])
		}
	}

	enrichment, err := s.enrichmentMap(ctx)
	if err != nil {
		// Enrichment failure is never fatal; serve the pre-enrichment list.
		s.logger.Warn("enrichment_unavailable", "error", err)
		return finalizeTitles(base), nil
	}
	if len(enrichment) > 0 {
		for i := range base {
			entry, ok := enrichment[base[i].Slug]
			if !ok {
				continue
			}
			if entry.Title != "" {
				base[i].Title = entry.Title
			}
			if entry.QuoteText != "" {
				base[i].QuoteText = entry.QuoteText
			}
		}
	}
	return finalizeTitles(base), nil
}

// finalizeTitles makes every title display-ready: slug-shaped or placeholder
// titles are replaced with the humanized slug.
func finalizeTitles(cardList []models.AdviceCard) []models.AdviceCard {
	for i := range cardList {
		cardList[i].Title = textutil.FormatDisplayTitle(cardList[i].Title, cardList[i].Slug)
	}
	return cardList
}

// GetCardBySlug resolves the full list and returns the first card with the
// given slug, or nil when none matches.
func (s *Service) GetCardBySlug(ctx context.Context, slug string) (*models.AdviceCard, error) {
	cardList, err := s.GetCards(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cardList {
		if cardList[i].Slug == slug {
			return &cardList[i], nil
		}
	}
	return nil, nil
}

// dataPath handles data path.
func (s *Service) dataPath(name string) string {
	return filepath.Join(s.dataRoot, "data", name)
}

// publicDataURL handles public data u r l.
func (s *Service) publicDataURL(name string) string {
	if s.siteURL == "" {
		return ""
	}
	return s.siteURL + "/data/" + name
}

// loadFilenameOverrides reads the slug→filename patch table. The table is a
// data patch for known misnamed image files, kept outside the code.
func loadFilenameOverrides(path string) map[string]string {
	body, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	if m := parseSlugMap(body); m != nil {
		return m
	}
	return map[string]string{}
}
