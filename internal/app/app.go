package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/config"
	"github.com/lingobridge/lingobridge-server/internal/core"
	"github.com/lingobridge/lingobridge-server/internal/ocr"
	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/store/memory"
	"github.com/lingobridge/lingobridge-server/internal/store/sqlite"
	transporthttp "github.com/lingobridge/lingobridge-server/internal/transport/http"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// App wires together store, translation, routing and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	router          *core.Router
	store           store.SessionStore
	redis           *redis.Client
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := newStore(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var translator translate.Translator = translate.NewLingoClient(
		cfg.Translator.BaseURL,
		cfg.Translator.APIKey,
		cfg.Translator.Timeout,
	)

	var redisClient *redis.Client
	switch cfg.Translator.Cache.Kind {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Translator.Cache.RedisAddr})
		translator = translate.Cached(translator, translate.NewRedisCache(redisClient, cfg.Translator.Cache.TTL, logger))
		logger.Info().Str("addr", cfg.Translator.Cache.RedisAddr).Msg("redis translation cache enabled")
	case "memory":
		translator = translate.Cached(translator, translate.NewMemoryCache(cfg.Translator.Cache.TTL))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Translator.Cache.Kind)
	}

	coord := translate.NewCoordinator(
		translator,
		translate.NewContextBuilder(st, cfg.Translator.ContextDepth),
		cfg.Translator.Timeout,
		logger,
	)

	extractor := ocr.NewHTTPExtractor(cfg.OCR.BaseURL, cfg.OCR.Timeout)
	ocrService := ocr.NewService(extractor, coord, logger)

	router := core.NewRouter(st, coord, logger)
	server := transporthttp.NewServer(router, st, coord, ocrService, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		router:          router,
		store:           st,
		redis:           redisClient,
		log:             logger,
	}, nil
}

func newStore(cfg config.Database, logger *zerolog.Logger) (store.SessionStore, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info().Msg("using in-memory session store")
		return memory.New(), nil
	case "sqlite", "":
		st, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("db_path", cfg.Path).Msg("sqlite session store initialized")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.router.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
