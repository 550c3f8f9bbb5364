// Package config loads runtime configuration from the environment. A .env
// file is honored when present (development convenience); real deployments
// set the variables directly.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddr   = ":8080"
	defaultAssetRoot    = "inventory"
	defaultDBPath       = "build/salvagedb.sqlite"
	defaultScratchDir   = "build/scratch"
	defaultStoreTimeout = 30 * time.Second
)

// Config is the full runtime configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// Bucket is the object-store bucket name.
	Bucket string
	// S3Endpoint is the object-store endpoint URL (empty for stock AWS).
	S3Endpoint string
	// S3Region is the signing region.
	S3Region string
	// S3AccessKeyID / S3SecretAccessKey are static credentials; empty values
	// fall through to the SDK's default credential chain.
	S3AccessKeyID     string
	S3SecretAccessKey string
	// PublicURLFormat renders a blob key into a public URL, e.g.
	// "https://assets.example.com/%s". Must contain exactly one %s verb.
	PublicURLFormat string

	// AssetRoot is the top-level directory name all assets live under,
	// shared across owners.
	AssetRoot string

	// DBPath is the SQLite document database path.
	DBPath string
	// ScratchDir holds temporary artifacts (compressed files, normalized
	// images, downloads).
	ScratchDir string

	// AllowedUsers is the login allow-list.
	AllowedUsers []string
	// AdminID is the identity granted admin access.
	AdminID string

	// StoreTimeout bounds individual blob/document store calls.
	StoreTimeout time.Duration

	// Debug enables debug logging.
	Debug bool
}

// Load reads configuration from the environment, honoring an optional .env
// file in the working directory.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:        getenv("SALVAGEDB_LISTEN_ADDR", defaultListenAddr),
		Bucket:            os.Getenv("SALVAGEDB_BUCKET"),
		S3Endpoint:        os.Getenv("SALVAGEDB_S3_ENDPOINT"),
		S3Region:          getenv("SALVAGEDB_S3_REGION", "auto"),
		S3AccessKeyID:     os.Getenv("SALVAGEDB_S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("SALVAGEDB_S3_SECRET_ACCESS_KEY"),
		PublicURLFormat:   os.Getenv("SALVAGEDB_PUBLIC_URL_FORMAT"),
		AssetRoot:         getenv("SALVAGEDB_ASSET_ROOT", defaultAssetRoot),
		DBPath:            getenv("SALVAGEDB_DB_PATH", defaultDBPath),
		ScratchDir:        getenv("SALVAGEDB_SCRATCH_DIR", defaultScratchDir),
		AdminID:           os.Getenv("SALVAGEDB_ADMIN_ID"),
		StoreTimeout:      defaultStoreTimeout,
		Debug:             os.Getenv("SALVAGEDB_DEBUG") != "",
	}

	if users := os.Getenv("SALVAGEDB_ALLOWED_USERS"); users != "" {
		for _, u := range strings.Split(users, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.AllowedUsers = append(cfg.AllowedUsers, u)
			}
		}
	}

	if raw := os.Getenv("SALVAGEDB_STORE_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SALVAGEDB_STORE_TIMEOUT: %w", err)
		}
		cfg.StoreTimeout = timeout
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("SALVAGEDB_BUCKET is required")
	}
	if c.PublicURLFormat == "" {
		return fmt.Errorf("SALVAGEDB_PUBLIC_URL_FORMAT is required")
	}
	if strings.Count(c.PublicURLFormat, "%s") != 1 {
		return fmt.Errorf("SALVAGEDB_PUBLIC_URL_FORMAT must contain exactly one %%s")
	}
	if len(c.AllowedUsers) == 0 {
		return fmt.Errorf("SALVAGEDB_ALLOWED_USERS is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
