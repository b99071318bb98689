package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cappuccinotm/slogx"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/faque/pkg/admin"
	"github.com/getmockd/faque/pkg/config"
	"github.com/getmockd/faque/pkg/engine"
	"github.com/getmockd/faque/pkg/history"
	"github.com/getmockd/faque/pkg/metrics"
	"github.com/getmockd/faque/pkg/persist"
	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/route"
	"github.com/getmockd/faque/pkg/store"
	"github.com/getmockd/faque/pkg/store/bolt"
	"github.com/getmockd/faque/pkg/store/file"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop signal.
const shutdownTimeout = 10 * time.Second

// stack is one fully wired server instance.
type stack struct {
	cfg       *config.Config
	metrics   *metrics.Metrics
	table     *route.Table
	recorder  *requestlog.Recorder
	coalescer *persist.Coalescer
	history   *bolt.HistoryStore
	writer    *history.Writer
	cleaner   *history.Cleaner
	server    *engine.Server
	log       *slog.Logger
}

// newStack builds every component and restores persisted state. The returned
// stack owns the history store; run closes it.
func newStack(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stack, error) {
	s := &stack{cfg: cfg, log: log, metrics: metrics.New()}

	s.table = route.NewTable(
		route.WithMaxRoutes(cfg.MaxRoutes),
		route.WithLogger(log),
	)
	s.recorder = requestlog.NewRecorder(
		requestlog.WithMaxHistory(cfg.MaxRequestHistory),
		requestlog.WithMaxBodySize(cfg.MaxBodySize),
		requestlog.WithDropHook(s.metrics.HistoryDropped),
		requestlog.WithLogger(log),
	)
	s.metrics.TrackRoutes(s.table.Count)
	s.metrics.TrackRecorded(s.recorder.Count)

	storeCfg := cfg.Store()
	var snapshots store.RouteSnapshots
	if storeCfg.Enabled() {
		snapshots = file.New(storeCfg, log)
	} else {
		log.Warn("persistence disabled, routes and requests live in memory only")
		snapshots = store.NewMemorySnapshots()
	}

	s.coalescer = persist.New(s.table, snapshots,
		persist.WithInterval(cfg.SaveInterval),
		persist.WithSaveHook(s.metrics.ObserveSave),
		persist.WithLogger(log),
	)

	loaded, err := s.coalescer.LoadAtStartup(ctx)
	if err != nil {
		return nil, err
	}
	if loaded == nil && len(cfg.RouteFiles) > 0 {
		seeds, err := config.LoadRouteFiles(cfg.RouteFiles, cfg.BaseDir())
		if err != nil {
			return nil, fmt.Errorf("loading route files: %w", err)
		}
		if err := s.table.LoadAll(seeds); err != nil {
			return nil, fmt.Errorf("seeding routes: %w", err)
		}
		log.Info("routes seeded from files", "count", s.table.Count())
	}

	if storeCfg.Enabled() {
		if err := s.openHistory(ctx, storeCfg.HistoryPath()); err != nil {
			return nil, err
		}
	}

	api := admin.New(s.table, s.recorder,
		admin.WithMetrics(s.metrics),
		admin.WithVersion(version()),
		admin.WithLogger(log),
	)
	handler := engine.NewHandler(s.table, s.recorder,
		engine.WithAdmin(api),
		engine.WithMetrics(s.metrics),
		engine.WithMaxRequestBodySize(cfg.MaxRequestBodySize),
		engine.WithLogger(log),
	)
	s.server = engine.NewServer(engine.ServerConfig{
		Addr:         cfg.Listen,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, handler, log)

	return s, nil
}

func (s *stack) openHistory(ctx context.Context, path string) error {
	hs, err := bolt.Open(path)
	if err != nil {
		return err
	}

	restored, err := history.Restore(ctx, hs, s.recorder)
	if err != nil {
		_ = hs.Close()
		return err
	}
	if restored > 0 {
		s.log.Info("request history restored", "count", restored)
	}

	s.history = hs
	s.writer = history.NewWriter(s.recorder, hs, s.metrics.HistoryWriteFailed, s.log)
	s.cleaner = history.NewCleaner(s.recorder, hs, s.cfg.CleanupInterval, s.log)
	return nil
}

// run serves until ctx is cancelled or the server fails. Persistence workers
// outlive the HTTP server so changes made by the last requests are written.
func (s *stack) run(ctx context.Context) error {
	defer s.closeHistory()

	if err := s.server.Start(); err != nil {
		return err
	}

	persistCtx, stopPersist := context.WithCancel(context.Background())
	defer stopPersist()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stopPersist()

		var serveErr error
		select {
		case <-gctx.Done():
		case <-s.server.Done():
			serveErr = errors.New("HTTP server stopped unexpectedly")
			if err := s.server.Err(); err != nil {
				serveErr = fmt.Errorf("HTTP server stopped unexpectedly: %w", err)
			}
		}

		s.log.Info("shutting down")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Stop(stopCtx); err != nil {
			s.log.Warn("HTTP server did not stop cleanly", slogx.Error(err))
		}
		return serveErr
	})

	g.Go(func() error {
		s.coalescer.Run(persistCtx)
		return nil
	})

	if s.writer != nil {
		g.Go(func() error {
			s.writer.Run(persistCtx)
			return nil
		})
		g.Go(func() error {
			s.cleaner.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

func (s *stack) closeHistory() {
	if s.history == nil {
		return
	}
	if err := s.history.Close(); err != nil {
		s.log.Warn("failed to close request history", slogx.Error(err))
	}
}
