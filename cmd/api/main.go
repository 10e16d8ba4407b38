package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"heresthething/backend/internal/cards"
	"heresthething/backend/internal/config"
	"heresthething/backend/internal/db"
	"heresthething/backend/internal/http/handlers"
	"heresthething/backend/internal/http/middleware"
	"heresthething/backend/internal/integrations"
	"heresthething/backend/internal/logging"
	"heresthething/backend/internal/notion"
	"heresthething/backend/internal/repository"
	syncsvc "heresthething/backend/internal/sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	logger = logger.With("service", "api")
	slog.SetDefault(logger)

	ctx := context.Background()

	var repo *repository.Repository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db error", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = repository.New(pool)
	} else {
		logger.Warn("database not configured, advice routes disabled")
	}

	notionClient := notion.NewClient(notion.Config{
		APIKey:     cfg.Notion.APIKey,
		DatabaseID: cfg.Notion.DatabaseID,
	}, nil, logger)

	cardService := cards.NewService(cfg, notionClient, nil, logger)

	var uploader syncsvc.ImageUploader
	if cfg.R2.Bucket != "" {
		r2Client, err := integrations.NewR2(cfg.R2)
		if err != nil {
			logger.Error("r2 error", "error", err)
			os.Exit(1)
		}
		uploader = r2Client
	}
	syncService := syncsvc.New(notionClient, repoStore(repo), uploader, filepath.Join(cfg.DataRoot, "img"), logger)

	h := handlers.New(cardService, repo, notionClient, syncService, cfg, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/cards", h.Cards)
	r.Get("/api/cards/{slug}", h.CardBySlug)
	r.Get("/api/notion", h.NotionListing)
	r.Get("/api/advice", h.AdviceItems)
	r.Get("/api/advice/{slug}", h.AdviceItemBySlug)
	r.Get("/api/stats", h.AdviceStats)
	r.Get("/api/sync", h.SyncStatus)
	r.Post("/api/sync", h.TriggerSync)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("api_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown", "service", "api")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}

// repoStore keeps the sync store nil when the repository is nil. A plain
// assignment would hand sync a non-nil interface wrapping a nil pointer.
func repoStore(repo *repository.Repository) syncsvc.Store {
	if repo == nil {
		return nil
	}
	return repo
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,X-Sync-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
