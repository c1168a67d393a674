package server

import (
	"encoding/json"
	"time"

	"jobmatch/internal/common"
	"jobmatch/internal/config"
	"jobmatch/internal/errors"
	"jobmatch/internal/observability"
	"jobmatch/internal/types"
)

// maxJobsPerRequest bounds the job list of a single request
const maxJobsPerRequest = 1000

// Résumé and job fields stay raw so they go through the same schema
// validation as files read by the CLI.

// MatchRequest represents the request body for the match endpoint
type MatchRequest struct {
	Resume  json.RawMessage `json:"resume" validate:"required"`
	Jobs    json.RawMessage `json:"jobs" validate:"required"`
	Window  string          `json:"window,omitempty" validate:"omitempty,oneof=3h 24h 7d 30d all"`
	Explain bool            `json:"explain,omitempty"`
}

// RankRequest represents the request body for the rank endpoint
type RankRequest struct {
	Resume      json.RawMessage   `json:"resume" validate:"required"`
	Jobs        json.RawMessage   `json:"jobs" validate:"required"`
	Preferences json.RawMessage   `json:"preferences,omitempty"`
	Actions     common.JobActions `json:"actions"`
	Window      string            `json:"window,omitempty" validate:"omitempty,oneof=3h 24h 7d 30d all"`
	Explain     bool              `json:"explain,omitempty"`
}

// FilterRequest represents the request body for the filter endpoint
type FilterRequest struct {
	Jobs   json.RawMessage `json:"jobs" validate:"required"`
	Filter types.JobFilter `json:"filter"`
}

// InsightsRequest takes either previously computed matches or a résumé and
// jobs to match first
type InsightsRequest struct {
	Matches []types.MatchResult `json:"matches,omitempty" validate:"required_without_all=Resume Jobs"`
	Resume  json.RawMessage     `json:"resume,omitempty" validate:"required_with=Jobs"`
	Jobs    json.RawMessage     `json:"jobs,omitempty" validate:"required_with=Resume"`
	Window  string              `json:"window,omitempty" validate:"omitempty,oneof=3h 24h 7d 30d all"`
}

// ExplainRequest represents the request body for the explain endpoint
type ExplainRequest struct {
	Resume json.RawMessage    `json:"resume" validate:"required"`
	Job    json.RawMessage    `json:"job" validate:"required"`
	Match  *types.MatchResult `json:"match,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Matching operations shared with the CLI
	Pipeline *common.Pipeline

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Alias hot reload; nil when disabled
	AliasFile    string
	AliasWatcher *AliasWatcher

	Logger *errors.Logger

	metrics   *observability.Metrics
	startedAt time.Time
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	// AliasFile is watched for changes when WatchAliases is set
	AliasFile    string
	WatchAliases bool
}

// ServerConfigFromConfig derives the server settings from the application configuration
func ServerConfigFromConfig(cfg *config.Config, version string) ServerConfig {
	rateLimit := cfg.Server.RateLimit
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &rateLimit,
		AliasFile:      cfg.Matching.AliasFile,
		WatchAliases:   cfg.Server.WatchAliases,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, pipeline *common.Pipeline, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	aliasFile := ""
	if cfg.WatchAliases {
		aliasFile = cfg.AliasFile
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Pipeline:       pipeline,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AliasFile:      aliasFile,
		Logger:         logger,
		metrics:        &observability.Metrics{},
		startedAt:      time.Now(),
	}
}
