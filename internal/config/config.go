package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"jobmatch/internal/errors"
	"jobmatch/internal/matching"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Matching      MatchingConfig      `mapstructure:"matching"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds global AI settings plus the explanation override
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	APIKey      string        `mapstructure:"apiKey"`
	MaxRetries  int           `mapstructure:"maxRetries"`
	Temperature float32       `mapstructure:"temperature"`
	// Enabled turns AI explanations on; when false the template sentence is used
	Enabled bool `mapstructure:"enabled"`

	Explain OperationAIConfig `mapstructure:"explain"`
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold float64       `mapstructure:"failureThreshold"`
	MinRequests      uint32        `mapstructure:"minRequests"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// OperationAIConfig holds AI configuration for the explanation operation.
// Pointer fields distinguish "unset" from zero values so global settings can fill them.
type OperationAIConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     *int                 `mapstructure:"maxRetries"`
	Temperature    *float32             `mapstructure:"temperature"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
	Prompts        PromptConfig         `mapstructure:"prompts"`
}

// PromptConfig holds optional prompt overrides, inline or from files
type PromptConfig struct {
	System     string `mapstructure:"system"`
	User       string `mapstructure:"user"`
	SystemFile string `mapstructure:"systemFile"`
	UserFile   string `mapstructure:"userFile"`
}

// MatchingConfig holds matching engine settings
type MatchingConfig struct {
	// Workers bounds batch concurrency; zero means GOMAXPROCS
	Workers        int           `mapstructure:"workers"`
	ExplainTimeout time.Duration `mapstructure:"explainTimeout"`
	DefaultWindow  string        `mapstructure:"defaultWindow"`
	AliasFile      string        `mapstructure:"aliasFile"`
	MinMatchScore  int           `mapstructure:"minMatchScore"`
	SourceTimeout  time.Duration `mapstructure:"sourceTimeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string          `mapstructure:"host"`
	Port         string          `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	APIKeys      []string        `mapstructure:"apiKeys"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	// WatchAliases reloads the alias file on change while serving
	WatchAliases bool `mapstructure:"watchAliases"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ServiceName     string `mapstructure:"serviceName"`
	ServiceVersion  string `mapstructure:"serviceVersion"`
	ServiceInstance string `mapstructure:"serviceInstance"`
	ConsoleOutput   bool   `mapstructure:"consoleOutput"`

	Tracing    TracingConfig     `mapstructure:"tracing"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Prometheus PrometheusConfig  `mapstructure:"prometheus"`
	OTLP       OTLPConfig        `mapstructure:"otlp"`
	Health     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from defaults, an optional config file and the environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), true)
}

func loadConfig(v *viper.Viper, searchPaths bool) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", EnvPrefix)

	if searchPaths {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/jobmatch/")
		v.AddConfigPath("$HOME/.jobmatch")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptFiles(); err != nil {
		return nil, fmt.Errorf("failed to load prompt files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// LoadConfigFile loads configuration from an explicit file path
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return loadConfig(v, false)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// a key stored in Vault is only applied after loading
	vaultKey := c.Vault.Enabled && c.Vault.Secrets.GeminiKey != ""
	if c.AI.Enabled && c.AI.APIKey == "" && c.AI.Explain.APIKey == "" && !vaultKey {
		return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"AI API key is required when AI explanations are enabled (set JOBMATCH_AI_APIKEY)", nil)
	}

	if c.AI.Timeout <= 0 {
		return invalidConfig("AI timeout must be positive", "ai.timeout", c.AI.Timeout)
	}

	if c.Matching.Workers < 0 {
		return invalidConfig("matching workers must not be negative", "matching.workers", c.Matching.Workers)
	}

	if c.Matching.ExplainTimeout <= 0 {
		return invalidConfig("explain timeout must be positive", "matching.explainTimeout", c.Matching.ExplainTimeout)
	}

	if c.Matching.SourceTimeout <= 0 {
		return invalidConfig("source timeout must be positive", "matching.sourceTimeout", c.Matching.SourceTimeout)
	}

	if !slices.Contains(matching.WindowKeys(), c.Matching.DefaultWindow) {
		return invalidConfig("unknown default window", "matching.defaultWindow", c.Matching.DefaultWindow)
	}

	if c.Matching.MinMatchScore < 0 || c.Matching.MinMatchScore > 100 {
		return invalidConfig("minimum match score must be between 0 and 100", "matching.minMatchScore", c.Matching.MinMatchScore)
	}

	if c.Server.Port == "" {
		return invalidConfig("server port is required", "server.port", c.Server.Port)
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMin <= 0 {
		return invalidConfig("rate limit must allow at least one request per minute", "server.rateLimit.requestsPerMin", c.Server.RateLimit.RequestsPerMin)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return invalidConfig("invalid default format", "app.defaultFormat", c.App.DefaultFormat)
	}

	if _, err := errors.ParseLevel(c.App.LogLevel); err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid log level", err).WithContext("key", "app.logLevel")
	}

	return nil
}

func invalidConfig(message, key string, value any) error {
	return errors.NewConfigError(errors.ErrCodeInvalidConfig, message, nil).
		WithContext("key", key).
		WithContext("value", value)
}
