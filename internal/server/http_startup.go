package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmatch/internal/matching"
	"jobmatch/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start starts the HTTP server with all configured components and blocks
// until SIGINT or SIGTERM. om is created from the configuration when nil;
// either way it is shut down on return.
func (s *Server) Start(om *observability.ObservabilityManager) error {
	if om == nil {
		var err error
		if om, err = s.initializeObservability(); err != nil {
			return err
		}
	}
	defer s.shutdownObservability(om)

	httpServer := s.setupHTTPServer(om)

	if err := s.startAliasWatcher(); err != nil {
		return err
	}

	s.displayServerInfo(om)

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	om, err := observability.NewObservabilityManager(observability.FromConfig(s.AppConfig, s.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(om),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startAliasWatcher hot-reloads the skill alias file when one is configured
func (s *Server) startAliasWatcher() error {
	if s.AliasFile == "" {
		return nil
	}

	watcher, err := NewAliasWatcher(s.AliasFile, 0, s.reloadAliases, s.Logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start alias watcher: %w", err)
	}
	s.AliasWatcher = watcher
	return nil
}

// reloadAliases loads the alias file and swaps it into the engine. A file
// that fails to load leaves the current resolver in place.
func (s *Server) reloadAliases() error {
	ctx := context.Background()
	resolver, err := matching.LoadSkillResolver(s.AliasFile)
	if err != nil {
		s.metrics.RecordAliasReload(ctx, false)
		return err
	}

	s.Pipeline.SwapResolver(resolver)
	s.metrics.RecordAliasReload(ctx, true)
	s.Logger.Info("Skill aliases reloaded", "file", s.AliasFile, "skills", resolver.Size())
	return nil
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.stopBackground()
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.stopBackground()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// stopBackground stops the alias watcher and the rate limiter cleanup
func (s *Server) stopBackground() {
	if s.AliasWatcher != nil {
		if err := s.AliasWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop alias watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
