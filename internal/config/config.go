package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ottomatch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Search    SearchConfig    `yaml:"search"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

// DSN builds the keyword/value connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds the optional embedding-cache backend settings.
// An empty addr disables the Redis-backed embedding cache.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	Dimensions        int    `yaml:"dimensions"`
	TimeoutSec        int    `yaml:"timeout_sec"`
	ContextPrefix     string `yaml:"context_prefix"`     // prepended in contextual mode
	ContextualDefault bool   `yaml:"contextual_default"` // contextual mode for requests that don't specify it
}

// ExpansionConfig holds query-expansion LLM settings. DefaultEnabled applies
// to requests that leave the expand_query flag unset.
type ExpansionConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	CacheTTLSec    int    `yaml:"cache_ttl_sec"`
	CacheSize      int    `yaml:"cache_size"`
	DefaultEnabled bool   `yaml:"default_enabled"`
}

// SearchConfig holds hybrid-search fusion and cache settings.
type SearchConfig struct {
	RRFK                int     `yaml:"rrf_k"`
	VectorWeight        float64 `yaml:"vector_weight"`
	KeywordWeight       float64 `yaml:"keyword_weight"`
	FilterWeight        float64 `yaml:"filter_weight"`
	CandidateMultiplier int     `yaml:"candidate_multiplier"`
	MaxCandidates       int     `yaml:"max_candidates"`
	CacheTTLSec         int     `yaml:"cache_ttl_sec"`
	CacheSize           int     `yaml:"cache_size"`
}

// RerankConfig holds cross-encoder settings. An empty URL disables re-ranking
// regardless of per-request flags.
type RerankConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BatchSize      int    `yaml:"batch_size"`
	BudgetMS       int    `yaml:"budget_ms"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	DefaultEnabled bool   `yaml:"default_enabled"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Port <= 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "ottomatch:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Expansion.Model == "" {
		c.Expansion.Model = "gpt-4o-mini"
	}
	if c.Expansion.TimeoutSec <= 0 {
		c.Expansion.TimeoutSec = 10
	}
	if c.Expansion.CacheTTLSec <= 0 {
		c.Expansion.CacheTTLSec = 3600
	}
	if c.Expansion.CacheSize <= 0 {
		c.Expansion.CacheSize = 1000
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.VectorWeight <= 0 {
		c.Search.VectorWeight = 0.4
	}
	if c.Search.KeywordWeight <= 0 {
		c.Search.KeywordWeight = 0.3
	}
	if c.Search.FilterWeight <= 0 {
		c.Search.FilterWeight = 0.3
	}
	if c.Search.CandidateMultiplier <= 0 {
		c.Search.CandidateMultiplier = 3
	}
	if c.Search.MaxCandidates <= 0 {
		c.Search.MaxCandidates = 300
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
	if c.Search.CacheSize <= 0 {
		c.Search.CacheSize = 500
	}
	if c.Rerank.BatchSize <= 0 {
		c.Rerank.BatchSize = 10
	}
	if c.Rerank.BudgetMS <= 0 {
		c.Rerank.BudgetMS = 250
	}
	if c.Rerank.TimeoutSec <= 0 {
		c.Rerank.TimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.Search.VectorWeight+c.Search.KeywordWeight+c.Search.FilterWeight <= 0 {
		return fmt.Errorf("search weights must sum to a positive value")
	}
	if c.Rerank.URL != "" && c.Rerank.Model == "" {
		return fmt.Errorf("rerank.model is required when rerank.url is set")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
