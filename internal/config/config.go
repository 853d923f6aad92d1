// Package config reads the bot configuration from the process environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Defaults.
const (
	DefaultAPIURL          = "https://MakanKecoa-chatbot.hf.space/predict"
	DefaultGeminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultProfileDir      = ".skara/chrome-profile"
	DefaultSessionDB       = "file:skara.db?_foreign_keys=on"
	DefaultTempDir         = "temp"
	DefaultClassifyTimeout = 60 * time.Second
	DefaultGenerateTimeout = 15 * time.Second
	DefaultDedupTTL        = 10 * time.Minute
	DefaultLogLevel        = "info"
)

// Config is the runtime configuration. It is built once at startup and
// passed by value; nothing reads the environment after Load.
type Config struct {
	APIURL string // classification endpoint

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	ChromiumPath      string // enables the browser generator when no API key is set
	BrowserProfileDir string

	SessionDB      string // whatsmeow sqlstore DSN
	TempDir        string
	FacilitiesFile string // YAML registry override, embedded registry when empty

	TopicFilter     bool
	ClassifyTimeout time.Duration
	GenerateTimeout time.Duration

	RedisURL string // dedup store, in-memory when empty
	DedupTTL time.Duration

	LogLevel string
}

// HasAPIKey reports whether the generative API is configured.
func (c Config) HasAPIKey() bool { return c.GeminiAPIKey != "" }

// HasBrowser reports whether the browser generator is configured.
func (c Config) HasBrowser() bool { return c.ChromiumPath != "" }

// Load reads envFile (skipped when it does not exist), then the process
// environment, and validates the result. Process variables win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the process environment. It fails only on
// values that cannot be parsed.
func FromEnv() (Config, error) {
	var errs []string

	cfg := Config{
		APIURL:            lookup("API_URL", DefaultAPIURL),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:     nonEmpty("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		GeminiModel:       nonEmpty("GEMINI_MODEL", DefaultGeminiModel),
		ChromiumPath:      strings.TrimSpace(os.Getenv("CHROMIUM_PATH")),
		BrowserProfileDir: nonEmpty("BROWSER_PROFILE_DIR", DefaultProfileDir),
		SessionDB:         nonEmpty("SESSION_DB", DefaultSessionDB),
		TempDir:           nonEmpty("TEMP_DIR", DefaultTempDir),
		FacilitiesFile:    strings.TrimSpace(os.Getenv("FACILITIES_FILE")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:          strings.ToLower(nonEmpty("LOG_LEVEL", DefaultLogLevel)),
	}

	var err error
	if cfg.TopicFilter, err = boolVar("TOPIC_FILTER", false); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.ClassifyTimeout, err = durationVar("CLASSIFY_TIMEOUT", DefaultClassifyTimeout); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.GenerateTimeout, err = durationVar("GENERATE_TIMEOUT", DefaultGenerateTimeout); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.DedupTTL, err = durationVar("DEDUP_TTL", DefaultDedupTTL); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config parse errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

// Validate checks that the config has usable values.
func (c Config) Validate() error {
	var errs []string

	if c.APIURL == "" {
		errs = append(errs, "API_URL is required")
	}
	if c.ChromiumPath != "" {
		if info, err := os.Stat(c.ChromiumPath); err != nil {
			errs = append(errs, fmt.Sprintf("CHROMIUM_PATH %q: %v", c.ChromiumPath, err))
		} else if info.IsDir() {
			errs = append(errs, fmt.Sprintf("CHROMIUM_PATH %q is a directory", c.ChromiumPath))
		}
	}
	if c.ClassifyTimeout <= 0 {
		errs = append(errs, "CLASSIFY_TIMEOUT must be positive")
	}
	if c.GenerateTimeout <= 0 {
		errs = append(errs, "GENERATE_TIMEOUT must be positive")
	}
	if c.DedupTTL <= 0 {
		errs = append(errs, "DEDUP_TTL must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// lookup returns the variable when set, even if empty, else def.
func lookup(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

// nonEmpty returns the variable when set and non-blank, else def.
func nonEmpty(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolVar(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}

func durationVar(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}
