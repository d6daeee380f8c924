// Package app wires configuration, the pipeline and the HTTP server
// together and owns process lifecycle: signal handling, graceful shutdown
// and the periodic temp-file sweep.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexai/cardgen/internal/card"
	"github.com/alexai/cardgen/internal/config"
	"github.com/alexai/cardgen/internal/filex"
	"github.com/alexai/cardgen/internal/handlers"
	"github.com/alexai/cardgen/internal/httpx"
	"github.com/alexai/cardgen/internal/logging"
	"github.com/alexai/cardgen/internal/replicate"
	"github.com/alexai/cardgen/internal/storage"
)

const sweepInterval = time.Hour

type App struct {
	config   config.Config
	logger   logging.Logger
	pipeline *card.Pipeline
	server   *http.Server
}

func New(cfg config.Config, logger logging.Logger) (*App, error) {
	tempDir, err := filex.EnsureDir(cfg.TempDir)
	if err != nil {
		return nil, err
	}

	httpClient := httpx.New(httpx.Options{Timeout: cfg.HTTPTimeout})

	generator := replicate.New(replicate.Options{
		Token:      cfg.ReplicateAPIToken,
		BaseURL:    cfg.ReplicateBaseURL,
		Model:      cfg.ReplicateModel,
		HTTPClient: httpClient,
		Logger:     logger.With("component", "replicate"),
	})

	gateway := storage.New(context.Background(), cfg, logger.With("component", "storage"))

	pipeline := card.NewPipeline(card.Options{
		Generator:  generator,
		Store:      gateway,
		HTTPClient: httpClient,
		TempDir:    tempDir,
		AppURL:     cfg.AppURL,
		Logger:     logger.With("component", "pipeline"),
	})

	handler := handlers.New(pipeline, logger.With("component", "http"))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		config:   cfg,
		logger:   logger,
		pipeline: pipeline,
		server:   server,
	}, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// sweepTempFiles reaps card artifacts and view downloads left in the temp
// dir, once at startup and then on a ticker.
func (a *App) sweepTempFiles(ctx context.Context) {
	sweep := func() {
		for _, prefix := range []string{"card_", "view_"} {
			removed, err := filex.Sweep(a.config.TempDir, prefix, a.config.SweepMaxAge)
			if err != nil {
				a.logger.Warn(ctx, "temp sweep failed", "prefix", prefix, "error", err)
				continue
			}
			if removed > 0 {
				a.logger.Info(ctx, "temp files swept", "prefix", prefix, "removed", removed)
			}
		}
	}

	sweep()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sweepTempFiles(ctx)
	}()

	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.logger.Info(ctx, "server listening", "addr", a.server.Addr, "app_url", a.config.AppURL)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "server shutdown failed", "error", err)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
