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

// Storage drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Config holds the toolsel configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Storage    StorageConfig    `yaml:"storage"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// LLMConfig holds the OpenAI-compatible chat provider settings.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
// APIKey and BaseURL fall back to the llm section when empty.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	Cache               bool   `yaml:"cache"`
	CacheTTLHours       int    `yaml:"cache_ttl_hours"`
}

// StorageConfig selects where tool and query caches live.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // file, redis, valkey (default: file)
	Dir              string   `yaml:"dir"`
	ToolsFile        string   `yaml:"tools_file"`
	QueriesFile      string   `yaml:"queries_file"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ExperimentConfig holds run defaults; CLI flags override them.
type ExperimentConfig struct {
	Tools              int      `yaml:"tools"`
	Queries            int      `yaml:"queries"`
	HyDE               *bool    `yaml:"hyde"`
	TopK               int      `yaml:"top_k"`
	Seed               uint64   `yaml:"seed"`
	ToolThreshold      float64  `yaml:"tool_similarity_threshold"`
	QueryThreshold     float64  `yaml:"query_similarity_threshold"`
	MaxAttempts        int      `yaml:"max_attempts"`
	GroundingToolCount int      `yaml:"grounding_tool_count"`
	Categories         []string `yaml:"categories"`
}

// MetricsConfig holds the Prometheus/health HTTP listener. Empty Addr disables it.
// Non-empty BearerTokens protect /metrics; /healthz stays open for probes.
type MetricsConfig struct {
	Addr         string   `yaml:"addr"`
	BearerTokens []string `yaml:"bearer_tokens"`
	ShutdownSec  int      `yaml:"shutdown_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3.2"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = c.LLM.Provider
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = c.LLM.APIKey
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "nomic-embed-text"
	}
	if c.Embedding.CacheTTLHours <= 0 {
		c.Embedding.CacheTTLHours = 24 * 30
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "."
	}
	if c.Storage.ToolsFile == "" {
		c.Storage.ToolsFile = "tools.json"
	}
	if c.Storage.QueriesFile == "" {
		c.Storage.QueriesFile = "test_queries.json"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "toolsel:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Metrics.ShutdownSec <= 0 {
		c.Metrics.ShutdownSec = 5
	}
	if c.Experiment.Tools <= 0 {
		c.Experiment.Tools = 100
	}
	if c.Experiment.Queries <= 0 {
		c.Experiment.Queries = 400
	}
	if c.Experiment.HyDE == nil {
		on := true
		c.Experiment.HyDE = &on
	}
	if c.Experiment.TopK <= 0 {
		c.Experiment.TopK = 5
	}
	if c.Experiment.ToolThreshold <= 0 {
		c.Experiment.ToolThreshold = 0.9
	}
	if c.Experiment.QueryThreshold <= 0 {
		c.Experiment.QueryThreshold = 0.98
	}
	if c.Experiment.MaxAttempts <= 0 {
		c.Experiment.MaxAttempts = 10
	}
	if c.Experiment.GroundingToolCount <= 0 {
		c.Experiment.GroundingToolCount = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
	case DriverRedis, DriverValkey:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be \"file\", \"redis\" or \"valkey\", got %q", c.Storage.Driver)
	}
	if c.Embedding.Cache && !c.Storage.Remote() {
		return fmt.Errorf("embedding.cache requires a redis or valkey storage driver")
	}
	if t := c.Experiment.ToolThreshold; t > 1 {
		return fmt.Errorf("experiment.tool_similarity_threshold must be in (0, 1], got %g", t)
	}
	if t := c.Experiment.QueryThreshold; t > 1 {
		return fmt.Errorf("experiment.query_similarity_threshold must be in (0, 1], got %g", t)
	}
	for i, cat := range c.Experiment.Categories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("experiment.categories[%d] is empty", i)
		}
	}
	return nil
}

// Remote reports whether caches live in Redis/Valkey.
func (s StorageConfig) Remote() bool {
	return s.Driver == DriverRedis || s.Driver == DriverValkey
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
