package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env          string
	HTTPAddr     string
	DatabaseURL  string
	SiteURL      string
	DataRoot     string
	SyncAPIKey   string
	SyncInterval time.Duration
	Notion       NotionConfig
	Manifest     ManifestConfig
	R2           R2Config
	Logging      LoggingConfig
}

type NotionConfig struct {
	APIKey     string
	DatabaseID string
}

type ManifestConfig struct {
	RemoteURL    string
	ImageBaseURL string
}

type R2Config struct {
	Endpoint       string
	PublicEndpoint string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
	UseSSL         bool
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads configuration from the environment. Every data source is
// optional for the API binary: card resolution degrades tier by tier when a
// source is unconfigured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:          getenv("APP_ENV", "dev"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SiteURL:      strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		DataRoot:     getenv("DATA_ROOT", "public"),
		SyncAPIKey:   os.Getenv("SYNC_API_KEY"),
		SyncInterval: getenvDuration("SYNC_INTERVAL", time.Hour),
		Notion: NotionConfig{
			APIKey:     os.Getenv("NOTION_API_KEY"),
			DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		},
		Manifest: ManifestConfig{
			RemoteURL:    os.Getenv("R2_MANIFEST_URL"),
			ImageBaseURL: os.Getenv("R2_IMAGE_BASE_URL"),
		},
		R2: R2Config{
			Endpoint:       os.Getenv("R2_ENDPOINT"),
			PublicEndpoint: os.Getenv("R2_PUBLIC_ENDPOINT"),
			Bucket:         os.Getenv("R2_BUCKET"),
			AccessKey:      os.Getenv("R2_ACCESS_KEY"),
			SecretKey:      os.Getenv("R2_SECRET_KEY"),
			Region:         getenv("R2_REGION", "auto"),
			UseSSL:         getenvBool("R2_USE_SSL", true),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
