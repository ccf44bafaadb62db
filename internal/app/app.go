// Package app wires configs to use cases and lifecycle orchestration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"NewsHarvester/internal/api"
	"NewsHarvester/internal/config"
	"NewsHarvester/internal/infrastructure/compliance"
	"NewsHarvester/internal/infrastructure/extractor"
	"NewsHarvester/internal/infrastructure/fetcher"
	"NewsHarvester/internal/infrastructure/inference"
	"NewsHarvester/internal/infrastructure/queue"
	"NewsHarvester/internal/infrastructure/storage"
	"NewsHarvester/internal/logging"
	"NewsHarvester/internal/retry"
	"NewsHarvester/internal/usecase"
)

const shutdownGrace = 10 * time.Second

// Application owns every long-lived component and their start order.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	store     *storage.Store
	nc        *nats.Conn
	workers   *queue.Workers
	scheduler *usecase.Scheduler
	httpSrv   *http.Server
}

// New builds the full pipeline: storage, broker, stage use cases, workers,
// scheduler, and the HTTP surface.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	nc, err := nats.Connect(cfg.Queue.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	q, err := queue.NewQueue(nc, baseLogger.With("component", "queue"))
	if err != nil {
		nc.Close()
		store.Close()
		return nil, fmt.Errorf("init queue: %w", err)
	}

	scheduler := usecase.NewScheduler(usecase.SchedulerDeps{
		Jobs:          store.Jobs(),
		Dispatcher:    q,
		Logger:        baseLogger.With("component", "scheduler"),
		SweepInterval: cfg.Scheduler.SweepInterval(),
	})

	agent := "NewsHarvester/1.0"
	if len(cfg.Scraper.UserAgents) > 0 {
		agent = cfg.Scraper.UserAgents[0]
	}

	ingest := usecase.NewIngest(usecase.IngestDeps{
		Sources:   store.Sources(),
		Items:     store.Items(),
		Gate:      compliance.NewGate(agent, nil),
		Fetcher:   fetcher.NewFetcher(nil, cfg.Scraper.FetchTimeout(), cfg.Scraper.UserAgents, retry.Policy{}),
		Extractor: extractor.NewExtractor(),
		Audit:     store.Audit(),
		Logger:    baseLogger.With("component", "ingest"),
	})

	enrich := usecase.NewEnrich(usecase.EnrichDeps{
		Items:    store.Items(),
		Analyzer: inference.NewBrain(cfg.Inference, baseLogger.With("component", "brain")),
		Adjuster: scheduler,
		Audit:    store.Audit(),
		Logger:   baseLogger.With("component", "enrich"),
	})

	workers := queue.NewWorkers(q, ingest, enrich, scheduler, queue.WorkersConfig{
		IngestWorkers: cfg.Queue.IngestWorkers,
		EnrichWorkers: cfg.Queue.EnrichWorkers,
	}, baseLogger.With("component", "workers"))

	server := api.NewServer(api.Deps{
		Items:      store.Items(),
		Jobs:       store.Jobs(),
		Dispatcher: q,
		Logger:     baseLogger.With("component", "api"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		nc:        nc,
		workers:   workers,
		scheduler: scheduler,
		httpSrv: &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run starts the workers, the sweep loop, and the HTTP listener, then blocks
// until ctx is cancelled or a component fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.workers.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer a.workers.Stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := a.scheduler.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		a.logger.Info("api listening", "addr", a.cfg.API.Addr)
		err := a.httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.httpSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (a *Application) close() {
	if a.nc != nil {
		a.nc.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
