package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/zappy/internal/backend"
	"github.com/aristath/zappy/internal/config"
	"github.com/aristath/zappy/internal/media"
	"github.com/aristath/zappy/internal/metrics"
	"github.com/aristath/zappy/internal/orchestrator"
	"github.com/aristath/zappy/internal/persistence"
	"github.com/aristath/zappy/internal/publish"
	"github.com/aristath/zappy/internal/router"
	"github.com/aristath/zappy/internal/search"
)

const historyBuffer = 64

// app holds everything a pipeline command needs. Close releases it in
// reverse order of construction.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	orchestrator *orchestrator.Orchestrator
	store        persistence.Store
	history      *orchestrator.HistoryWriter
	closers      []func()
}

// openStore opens the configured history store.
func openStore(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	store, err := persistence.Open(ctx, cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// newApp wires backends, router, collaborators and the history writer.
// extra options are applied after the defaults.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...orchestrator.Option) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr, reg)
	}

	backends, err := backend.NewSet(cfg.BackendConfigs())
	if err != nil {
		return nil, fmt.Errorf("creating backends: %w", err)
	}
	r := router.New(backends, router.WithLogger(logger), router.WithRecorder(rec))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing history store", "error", err)
		}
	})

	a.history = orchestrator.NewHistoryWriter(store, historyBuffer, orchestrator.DefaultRetryConfig(), logger)
	a.history.Start(ctx)
	a.closers = append(a.closers, a.history.Stop)

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(rec),
		orchestrator.WithHistory(a.history),
		orchestrator.WithBatchPause(time.Duration(cfg.Batch.PauseSeconds * float64(time.Second))),
		orchestrator.WithPublishers(publish.FromConfig(cfg.Publish, nil)...),
	}

	searcher, err := a.newSearcher(ctx)
	if err != nil {
		return nil, err
	}
	if searcher != nil {
		opts = append(opts, orchestrator.WithSearch(searcher))
	}

	mediaOpts := media.OpenAIOptions{
		APIKey:      cfg.Providers[backend.OpenAI].APIKey,
		BaseURL:     cfg.Providers[backend.OpenAI].BaseURL,
		ImageModel:  cfg.Media.ImageModel,
		ImageSize:   cfg.Media.ImageSize,
		SpeechModel: cfg.Media.SpeechModel,
		Voice:       cfg.Media.Voice,
	}
	opts = append(opts, orchestrator.WithImager(media.NewOpenAIImager(mediaOpts)))

	storage, err := newStorage(ctx, cfg.Media.Storage)
	if err != nil {
		return nil, err
	}
	opts = append(opts, orchestrator.WithNarrator(media.NewOpenAINarrator(mediaOpts, storage)))

	o, err := orchestrator.New(r, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	a.orchestrator = o

	ok = true
	return a, nil
}

// newSearcher returns nil when no SerpAPI key is configured.
func (a *app) newSearcher(ctx context.Context) (search.Searcher, error) {
	sc := a.cfg.Search
	if sc.SerpAPIKey == "" {
		return nil, nil
	}
	client := search.NewSerpAPIClient(sc.SerpAPIKey, sc.BaseURL, nil)
	ttl := time.Duration(sc.Cache.TTLSeconds) * time.Second

	switch sc.Cache.Backend {
	case "", "none":
		return client, nil
	case "redis":
		cache, err := search.NewRedisCache(ctx, sc.Cache.RedisURL, ttl)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = cache.Close() })
		return search.NewCachedSearcher(client, cache, a.logger), nil
	default:
		return search.NewCachedSearcher(client, search.NewMemoryCache(sc.Cache.Size, ttl), a.logger), nil
	}
}

func newStorage(ctx context.Context, sc config.StorageConfig) (media.Storage, error) {
	if sc.Backend == "s3" {
		s3, err := media.NewS3Storage(ctx, media.S3Options{
			Bucket:          sc.Bucket,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			Prefix:          sc.Prefix,
			PublicBaseURL:   sc.PublicBaseURL,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			ForcePathStyle:  sc.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	}

	local, err := media.NewLocalStorage(sc.Dir)
	if err != nil {
		return nil, err
	}
	return local, nil
}

func (a *app) serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
}

// Close stops the history writer, flushing queued records, then closes the
// store and any other resources.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
