package cards

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heresthething/backend/internal/config"
	"heresthething/backend/internal/notion"
)

func writeDataFile(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestService(t *testing.T, cfg *config.Config, notionClient *notion.Client, httpClient *http.Client) *Service {
	t.Helper()
	if cfg.DataRoot == "" {
		cfg.DataRoot = t.TempDir()
	}
	return NewService(cfg, notionClient, httpClient, nil)
}

func TestGetCardsLocalManifestScenario(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"say-thier-name","title":"Untitled"}]`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)
	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cardList))
	}
	card := cardList[0]
	if card.ID != "say-thier-name-0" {
		t.Fatalf("unexpected id: %q", card.ID)
	}
	if card.Slug != "say-thier-name" {
		t.Fatalf("unexpected slug: %q", card.Slug)
	}
	if card.Title != "Say Thier Name" {
		t.Fatalf("unexpected title: %q", card.Title)
	}
	if card.ImageURL != "/img/say-thier-name.png" {
		t.Fatalf("unexpected image url: %q", card.ImageURL)
	}
}

func TestGetCardsRemoteManifestWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"slug":"remote-card","title":"Remote Card"}]`))
	}))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"local-card"}]`)

	cfg := &config.Config{DataRoot: root, Manifest: config.ManifestConfig{RemoteURL: srv.URL}}
	svc := newTestService(t, cfg, nil, srv.Client())

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 || cardList[0].Slug != "remote-card" {
		t.Fatalf("expected remote card, got %#v", cardList)
	}
}

func TestGetCardsFallsBackOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"local-card","title":"Local"}]`)

	cfg := &config.Config{DataRoot: root, Manifest: config.ManifestConfig{RemoteURL: srv.URL}}
	svc := newTestService(t, cfg, nil, srv.Client())

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 || cardList[0].Slug != "local-card" {
		t.Fatalf("expected local fallback card, got %#v", cardList)
	}
}

func TestGetCardsFallsBackOnRemoteEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"local-card"}]`)

	cfg := &config.Config{DataRoot: root, Manifest: config.ManifestConfig{RemoteURL: srv.URL}}
	svc := newTestService(t, cfg, nil, srv.Client())

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 || cardList[0].Slug != "local-card" {
		t.Fatalf("expected local fallback card, got %#v", cardList)
	}
}

func TestGetCardsRemoteTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[{"slug":"too-late"}]`))
	}))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"local-card","title":"Local"}]`)

	cfg := &config.Config{DataRoot: root, Manifest: config.ManifestConfig{RemoteURL: srv.URL}}
	svc := newTestService(t, cfg, nil, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cardList, err := svc.GetCards(ctx)
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 || cardList[0].Slug != "local-card" {
		t.Fatalf("expected local fallback after timeout, got %#v", cardList)
	}
}

func TestGetCardsLocalManifestFailureIsFatal(t *testing.T) {
	svc := newTestService(t, &config.Config{DataRoot: t.TempDir()}, nil, nil)
	if _, err := svc.GetCards(context.Background()); err == nil {
		t.Fatalf("expected error when every tier fails")
	}
}

func TestGetCardsLocalManifestParseErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `{not json`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)
	if _, err := svc.GetCards(context.Background()); err == nil {
		t.Fatalf("expected parse error to propagate")
	}
}

func TestGetCardsAuxOverlayOnlyWhereAbsent(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile,
		`[{"slug":"has-own","quoteText":"own quote","backgroundColor":"#112233"},{"slug":"needs-aux"}]`)
	writeDataFile(t, root, quotesFile,
		`{"has-own":"aux quote","needs-aux":"  overlay   quote "}`)
	writeDataFile(t, root, colorsFile,
		`{"has-own":"#ffffff","needs-aux":"#ABCDEF"}`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)
	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if cardList[0].QuoteText != "own quote" || cardList[0].BackgroundColor != "#112233" {
		t.Fatalf("own values must win: %#v", cardList[0])
	}
	if cardList[1].QuoteText != "overlay quote" {
		t.Fatalf("expected normalized aux quote, got %q", cardList[1].QuoteText)
	}
	if cardList[1].BackgroundColor != "#abcdef" {
		t.Fatalf("expected lowercased aux color, got %q", cardList[1].BackgroundColor)
	}
}

func TestGetCardsAuxMapFailuresAreLenient(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"a","title":"A"}]`)
	writeDataFile(t, root, quotesFile, `{broken json`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)
	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 1 || cardList[0].QuoteText != "" {
		t.Fatalf("expected card without quote, got %#v", cardList)
	}
}

func notionListingServer(t *testing.T, pages ...map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNotionListing(t, w, pages)
	}))
}

func TestGetCardsEnrichmentOverlay(t *testing.T) {
	srv := notionListingServer(t,
		notionPage("p1", "a", "Better A"),
		notionPage("p2", "missing-from-base", "Ignored"),
	)
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"a","title":"A"},{"slug":"d","title":"D"}]`)

	notionClient := notion.NewClient(notion.Config{APIKey: "k", DatabaseID: "db", BaseURL: srv.URL}, srv.Client(), nil)
	svc := newTestService(t, &config.Config{DataRoot: root}, notionClient, nil)

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if cardList[0].Title != "Better A" || cardList[0].QuoteText != "Better A" {
		t.Fatalf("expected enrichment overlay, got %#v", cardList[0])
	}
	if cardList[1].Title != "D" || cardList[1].QuoteText != "" {
		t.Fatalf("expected unmatched card unchanged, got %#v", cardList[1])
	}
}

func TestGetCardsEnrichmentFailureNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"a","title":"A"}]`)

	notionClient := notion.NewClient(notion.Config{APIKey: "k", DatabaseID: "db", BaseURL: srv.URL}, srv.Client(), nil)
	svc := newTestService(t, &config.Config{DataRoot: root}, notionClient, nil)

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("expected pre-enrichment list, got error: %v", err)
	}
	if len(cardList) != 1 || cardList[0].Title != "A" {
		t.Fatalf("unexpected cards: %#v", cardList)
	}
}

func TestGetCardsNonEmptyFieldInvariant(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"a"},{"slug":"b","title":" "},{"slug":"c","title":"C"}]`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)
	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	for _, card := range cardList {
		if card.Slug == "" || card.Title == "" || card.ImageURL == "" {
			t.Fatalf("empty required field: %#v", card)
		}
	}
}

func TestGetCardBySlug(t *testing.T) {
	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"a","title":"A"},{"slug":"b","title":"B"}]`)

	svc := newTestService(t, &config.Config{DataRoot: root}, nil, nil)

	card, err := svc.GetCardBySlug(context.Background(), "b")
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card == nil || card.Slug != "b" {
		t.Fatalf("unexpected card: %#v", card)
	}

	missing, err := svc.GetCardBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatalf("lookup miss must not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown slug, got %#v", missing)
	}
}

func TestGetCardsDuplicateSlugsSurvive(t *testing.T) {
	srv := notionListingServer(t, notionPage("p1", "dup", "Enriched"))
	defer srv.Close()

	root := t.TempDir()
	writeDataFile(t, root, manifestFile, `[{"slug":"dup","title":"First"},{"slug":"dup","title":"Second"}]`)

	notionClient := notion.NewClient(notion.Config{APIKey: "k", DatabaseID: "db", BaseURL: srv.URL}, srv.Client(), nil)
	svc := newTestService(t, &config.Config{DataRoot: root}, notionClient, nil)

	cardList, err := svc.GetCards(context.Background())
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cardList) != 2 {
		t.Fatalf("expected duplicates to survive, got %d cards", len(cardList))
	}
	if cardList[0].Title != "Enriched" || cardList[1].Title != "Enriched" {
		t.Fatalf("expected both duplicates enriched, got %#v", cardList)
	}
}
