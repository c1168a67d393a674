package server

import (
	"fmt"

	"jobmatch/internal/observability"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(om *observability.ObservabilityManager) {
	s.displayEndpoints(om)
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayAliasInfo()
}

func (s *Server) displayEndpoints(om *observability.ObservabilityManager) {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	if om.MetricsHandler() != nil {
		fmt.Printf("  GET  %-10s - Prometheus metrics\n", om.MetricsEndpoint())
	}
	fmt.Println("  POST /match     - Score jobs against a resume (requires API key)")
	fmt.Println("  POST /rank      - Recommend jobs by preference (requires API key)")
	fmt.Println("  POST /filter    - Filter and sort jobs (requires API key)")
	fmt.Println("  POST /insights  - Summarize match results (requires API key)")
	fmt.Println("  POST /explain   - Explain a single match (requires API key)")
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in POST requests")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB), %d jobs per request\n",
			s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024), maxJobsPerRequest)
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}

func (s *Server) displayAliasInfo() {
	if s.AliasWatcher != nil {
		fmt.Printf("Skill aliases: watching %s for changes\n", s.AliasFile)
	}
}
