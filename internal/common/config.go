package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is threaded explicitly into
// every constructor so pipelines are reproducible and testable in isolation;
// nothing reads ambient state after LoadConfig returns.
type Config struct {
	Database    DatabaseConfig
	OCR         OCRConfig
	Resolver    ResolverConfig
	Certificate CertificateConfig
	LLM         LLMConfig
	Proxy       ProxyConfig
}

// DatabaseConfig holds record-store configuration.
type DatabaseConfig struct {
	Path string // SQLite file path; ":memory:" for tests
}

// OCRConfig holds OCR gateway configuration. Endpoint and key may be changed
// at runtime between calls; the gateway reads them per request.
type OCRConfig struct {
	Endpoint string
	APIKey   string
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 144
	Timeout  time.Duration
}

// ResolverConfig holds bibliographic catalog configuration.
type ResolverConfig struct {
	CrossrefURL    string
	OpenAlexURL    string
	Mailto         string // contact identifier sent with catalog requests
	UserAgent      string
	Timeout        time.Duration
	Retries        int
	MatchThreshold float64 // confidence below this never auto-writes a DOI
}

// CertificateConfig holds certificate-extraction tuning.
type CertificateConfig struct {
	// RemedyMissingFields is the missing-field count at which a direct-text
	// extraction escalates to a one-shot OCR remedy.
	RemedyMissingFields int
}

// LLMConfig holds the optional language-model fallback parser configuration.
// The fallback is disabled unless both Endpoint and APIKey are set.
type LLMConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// ProxyConfig holds the outbound proxy for OCR and catalog traffic.
type ProxyConfig struct {
	Enabled bool
	Type    string // socks5 | http
	Host    string
	Port    string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("BIOMANAGER_DB", "literature.db"),
		},
		OCR: OCRConfig{
			Endpoint: getEnv("BIOMANAGER_OCR_URL", ""),
			APIKey:   getEnv("BIOMANAGER_OCR_KEY", ""),
			Pdftoppm: getEnv("BIOMANAGER_PDFTOPPM", "pdftoppm"),
			DPI:      getEnvInt("BIOMANAGER_OCR_DPI", 144),
			Timeout:  getEnvDuration("BIOMANAGER_OCR_TIMEOUT", 60*time.Second),
		},
		Resolver: ResolverConfig{
			CrossrefURL:    getEnv("BIOMANAGER_CROSSREF_URL", "https://api.crossref.org/works"),
			OpenAlexURL:    getEnv("BIOMANAGER_OPENALEX_URL", "https://api.openalex.org/works"),
			Mailto:         getEnv("BIOMANAGER_RESOLVER_MAILTO", "researcher@example.com"),
			UserAgent:      getEnv("BIOMANAGER_RESOLVER_UA", "biomanager/1.0"),
			Timeout:        getEnvDuration("BIOMANAGER_RESOLVER_TIMEOUT", 10*time.Second),
			Retries:        getEnvInt("BIOMANAGER_RESOLVER_RETRIES", 2),
			MatchThreshold: getEnvFloat("BIOMANAGER_MATCH_THRESHOLD", 80),
		},
		Certificate: CertificateConfig{
			RemedyMissingFields: getEnvInt("BIOMANAGER_REMEDY_MISSING", 4),
		},
		LLM: LLMConfig{
			Endpoint: getEnv("BIOMANAGER_LLM_URL", ""),
			APIKey:   getEnv("BIOMANAGER_LLM_KEY", ""),
			Model:    getEnv("BIOMANAGER_LLM_MODEL", "deepseek-chat"),
			Timeout:  getEnvDuration("BIOMANAGER_LLM_TIMEOUT", 60*time.Second),
		},
		Proxy: ProxyConfig{
			Enabled: getEnvBool("BIOMANAGER_PROXY_ENABLED", false),
			Type:    getEnv("BIOMANAGER_PROXY_TYPE", "socks5"),
			Host:    getEnv("BIOMANAGER_PROXY_HOST", "127.0.0.1"),
			Port:    getEnv("BIOMANAGER_PROXY_PORT", "1080"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
