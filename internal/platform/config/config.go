package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultPort               = "8080"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultCatalogSource      = CatalogSourceFile
	defaultCatalogFile        = "configs/catalog.yaml"
	defaultCatalogCacheTTL    = 5 * time.Minute
	defaultCatalogCollection  = "venue_catalog"
	defaultQuotationTopic     = "quotation-generated"
	defaultQuotationValidity  = 14 * 24 * time.Hour
	defaultQuotationIssuer    = "Venue Sales Office"
	defaultLocalesDir         = "locales"
	defaultLocale             = "en"
	defaultSupportedLocaleCSV = "en,th"
	defaultIdempotencyStore   = IdempotencyStoreMemory
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultIdempotencyCleanup = 15 * time.Minute
	defaultIdempotencyColl    = "idempotency_keys"
	defaultQuoteRatePerMinute = 120
)

// Idempotency stores understood by the loader.
const (
	IdempotencyStoreMemory    = "memory"
	IdempotencyStoreFirestore = "firestore"
	IdempotencyStoreDisabled  = "disabled"
)

// Catalog sources understood by the loader.
const (
	CatalogSourceFile      = "file"
	CatalogSourceFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Catalog     CatalogConfig
	Firestore   FirestoreConfig
	PubSub      PubSubConfig
	Quotation   QuotationConfig
	Locale      LocaleConfig
	Idempotency IdempotencyConfig
	RateLimits  RateLimitConfig
	Build       BuildConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig selects where pricing catalog data is read from.
type CatalogConfig struct {
	Source   string
	File     string
	CacheTTL time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID         string
	EmulatorHost      string
	CatalogCollection string
}

// PubSubConfig controls quotation event publishing. An empty project disables publishing.
type PubSubConfig struct {
	ProjectID      string
	QuotationTopic string
}

// QuotationConfig holds quotation document defaults.
type QuotationConfig struct {
	Validity   time.Duration
	IssuerName string
}

// LocaleConfig configures the translation bundle.
type LocaleConfig struct {
	Dir       string
	Default   string
	Supported []string
}

// IdempotencyConfig controls replay of quotation document requests.
type IdempotencyConfig struct {
	Store           string
	TTL             time.Duration
	CleanupInterval time.Duration
	Collection      string
}

// RateLimitConfig controls request throttling. A non-positive value disables it.
type RateLimitConfig struct {
	QuotesPerMinute int
}

// BuildConfig identifies the deployed binary.
type BuildConfig struct {
	Version   string
	CommitSHA string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides and
// environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "QUOTE_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "QUOTE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "QUOTE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "QUOTE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			Source:   strings.ToLower(stringWithDefault(lookup, "QUOTE_CATALOG_SOURCE", defaultCatalogSource)),
			File:     stringWithDefault(lookup, "QUOTE_CATALOG_FILE", defaultCatalogFile),
			CacheTTL: durationWithDefault(lookup, "QUOTE_CATALOG_CACHE_TTL", defaultCatalogCacheTTL),
		},
		Firestore: FirestoreConfig{
			ProjectID:         stringWithDefault(lookup, "QUOTE_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:      stringWithDefault(lookup, "QUOTE_FIRESTORE_EMULATOR_HOST", ""),
			CatalogCollection: stringWithDefault(lookup, "QUOTE_FIRESTORE_CATALOG_COLLECTION", defaultCatalogCollection),
		},
		PubSub: PubSubConfig{
			ProjectID:      stringWithDefault(lookup, "QUOTE_PUBSUB_PROJECT_ID", ""),
			QuotationTopic: stringWithDefault(lookup, "QUOTE_PUBSUB_QUOTATION_TOPIC", defaultQuotationTopic),
		},
		Quotation: QuotationConfig{
			Validity:   durationWithDefault(lookup, "QUOTE_QUOTATION_VALIDITY", defaultQuotationValidity),
			IssuerName: stringWithDefault(lookup, "QUOTE_QUOTATION_ISSUER_NAME", defaultQuotationIssuer),
		},
		Locale: LocaleConfig{
			Dir:       stringWithDefault(lookup, "QUOTE_LOCALES_DIR", defaultLocalesDir),
			Default:   stringWithDefault(lookup, "QUOTE_DEFAULT_LOCALE", defaultLocale),
			Supported: csvWithDefault(lookup, "QUOTE_SUPPORTED_LOCALES", defaultSupportedLocaleCSV),
		},
		Idempotency: IdempotencyConfig{
			Store:           strings.ToLower(stringWithDefault(lookup, "QUOTE_IDEMPOTENCY_STORE", defaultIdempotencyStore)),
			TTL:             durationWithDefault(lookup, "QUOTE_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval: durationWithDefault(lookup, "QUOTE_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyCleanup),
			Collection:      stringWithDefault(lookup, "QUOTE_FIRESTORE_IDEMPOTENCY_COLLECTION", defaultIdempotencyColl),
		},
		RateLimits: RateLimitConfig{
			QuotesPerMinute: intWithDefault(lookup, "QUOTE_RATELIMIT_PER_MIN", defaultQuoteRatePerMinute),
		},
		Build: BuildConfig{
			Version:   stringWithDefault(lookup, "QUOTE_BUILD_VERSION", "dev"),
			CommitSHA: stringWithDefault(lookup, "QUOTE_BUILD_COMMIT_SHA", ""),
		},
	}

	// Pub/Sub project defaults to the Firestore project when unspecified.
	if cfg.PubSub.ProjectID == "" && boolWithDefault(lookup, "QUOTE_PUBSUB_ENABLED", false) {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	switch cfg.Catalog.Source {
	case CatalogSourceFile:
		if strings.TrimSpace(cfg.Catalog.File) == "" {
			missing = append(missing, "Catalog.File")
		}
	case CatalogSourceFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
		if strings.TrimSpace(cfg.Firestore.CatalogCollection) == "" {
			missing = append(missing, "Firestore.CatalogCollection")
		}
	default:
		missing = append(missing, "Catalog.Source")
	}
	if cfg.Catalog.CacheTTL < 0 {
		missing = append(missing, "Catalog.CacheTTL")
	}
	if cfg.PubSub.ProjectID != "" && strings.TrimSpace(cfg.PubSub.QuotationTopic) == "" {
		missing = append(missing, "PubSub.QuotationTopic")
	}
	if cfg.Quotation.Validity <= 0 {
		missing = append(missing, "Quotation.Validity")
	}
	switch cfg.Idempotency.Store {
	case IdempotencyStoreMemory, IdempotencyStoreDisabled:
	case IdempotencyStoreFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Idempotency.Store")
	}
	if cfg.Idempotency.TTL <= 0 {
		missing = append(missing, "Idempotency.TTL")
	}
	if strings.TrimSpace(cfg.Locale.Default) == "" {
		missing = append(missing, "Locale.Default")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Whole days, e.g. "30" or "30d", for quotation validity.
		if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key, fallback string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
