// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/slideshare/cache"
	"github.com/briangreenhill/slideshare/internal/config"
	"github.com/briangreenhill/slideshare/internal/http/routes"
	"github.com/briangreenhill/slideshare/pkg/slideshare"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	level, _ := cfg.Level()
	logger = logger.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache
	store, closeStore, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache error")
	}
	defer closeStore()

	// SlideShare client
	client, err := newClient(cfg, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("slideshare client")
	}

	// Router / server
	s := routes.New(routes.ServerOptions{Slides: client, Token: cfg.Token})
	h := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", d).
				Msg("request")
		})(s.Router),
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", cfg.Port).Str("cache", cfg.Cache.Backend).Msg("starting gateway")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newClient(cfg *config.Config, store cache.Cache, logger zerolog.Logger) (*slideshare.Client, error) {
	hc := slideshare.NewDefaultHTTPClient()
	hc.Timeout = cfg.SlideShare.HTTPTimeout

	opts := []slideshare.Option{
		slideshare.WithHTTPClient(hc),
		slideshare.WithLogger(logger.With().Str("component", "slideshare").Logger()),
	}
	if cfg.SlideShare.BaseURL != "" {
		opts = append(opts, slideshare.WithBaseURL(cfg.SlideShare.BaseURL))
	}
	if cfg.HasUploadAccount() {
		opts = append(opts, slideshare.WithCredentials(cfg.SlideShare.Username, cfg.SlideShare.Password))
	}
	if store != nil {
		opts = append(opts, slideshare.WithCache(store, cfg.Cache.TTL))
	}
	return slideshare.New(cfg.SlideShare.APIKey, cfg.SlideShare.SharedSecret, opts...)
}

// openCache builds the configured backend. A nil cache means caching is off.
func openCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Cache, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.CacheNone:
		return nil, noop, nil

	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.TTL), noop, nil

	case config.CacheFile:
		if cfg.Dir == "" {
			fc, err := cache.NewFileCache("")
			return fc, noop, err
		}
		fc, err := cache.NewFileCacheAt(cfg.Dir, cfg.TTL)
		return fc, noop, err

	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, TTL: cfg.TTL})
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { _ = rc.Close() }, nil

	case config.CachePostgres:
		pc, err := cache.NewPostgresCache(ctx, cfg.DatabaseURL, cfg.TTL)
		if err != nil {
			return nil, noop, err
		}
		if n, err := pc.Purge(ctx); err != nil {
			logger.Warn().Err(err).Msg("purge expired cache rows")
		} else if n > 0 {
			logger.Info().Int64("rows", n).Msg("purged expired cache rows")
		}
		return pc, func() { _ = pc.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
