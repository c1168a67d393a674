package config

import (
	"time"

	"jobmatch/internal/matching"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "JOBMATCH"

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI, global
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.temperature", 0.4)

	// AI, explanation override; empty values fall back to the global settings
	v.SetDefault("ai.explain.provider", "")
	v.SetDefault("ai.explain.model", "")
	v.SetDefault("ai.explain.apiKey", "")
	v.SetDefault("ai.explain.circuitBreaker.enabled", true)
	v.SetDefault("ai.explain.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.explain.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.explain.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.explain.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.explain.circuitBreaker.failureThreshold", 0.6)
	v.SetDefault("ai.explain.prompts.systemFile", "")
	v.SetDefault("ai.explain.prompts.userFile", "")

	// Matching
	v.SetDefault("matching.workers", 0)
	v.SetDefault("matching.explainTimeout", 10*time.Second)
	v.SetDefault("matching.defaultWindow", matching.WindowAll)
	v.SetDefault("matching.aliasFile", "")
	v.SetDefault("matching.minMatchScore", 50)
	v.SetDefault("matching.sourceTimeout", 15*time.Second)

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.watchAliases", true)
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "jobmatch")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 5*time.Second)
}
