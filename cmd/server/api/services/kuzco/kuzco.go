// Package kuzco is the model server.
package kuzco

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/kuzco/cache"
	"github.com/ardanlabs/kuzco/cmd/server/api/services/kuzco/build"
	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/debug"
	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/mux"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/defaults"
	"github.com/ardanlabs/kuzco/sdk/tools/libs"
	"golang.org/x/sync/errgroup"
)

var tag = "develop"

// Run starts the model server.
func Run(showHelp bool) error {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return ""
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "KUZCO", traceIDFn, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log, showHelp); err != nil {
		return err
	}

	return nil
}

func run(ctx context.Context, log *logger.Logger, showHelp bool) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	if !showHelp {
		log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))
	}

	// -------------------------------------------------------------------------
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:30s"`
			WriteTimeout    time.Duration `conf:"default:15m"`
			IdleTimeout     time.Duration `conf:"default:1m"`
			ShutdownTimeout time.Duration `conf:"default:1m"`
			APIHost         string        `conf:"default:localhost:8080"`
			DebugHost       string        `conf:"default:localhost:8090"`
		}
		Model struct {
			Device        string
			Instances     int           `conf:"default:1"`
			MaxInCache    int           `conf:"default:3"`
			ContextWindow int           `conf:"default:0"`
			CacheTTL      time.Duration `conf:"default:5m"`
			Quantized     bool          `conf:"default:false"`
			Reranker      string        `conf:"default:bge-reranker-v2-m3"`
			Embedder      string        `conf:"default:bge-small-en-v1.5"`
			Warmup        bool          `conf:"default:true"`
		}
		CatalogFile  string
		ModelPath    string
		LibPath      string
		Processor    string
		HfToken      string `conf:"mask"`
		AllowUpgrade bool   `conf:"default:true"`
	}{
		Version: conf.Version{
			Build: tag,
			Desc:  "Kuzco",
		},
	}

	const prefix = "KUZCO"
	if showHelp {
		help, err := conf.UsageInfo(prefix, &cfg)
		if err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		return fmt.Errorf("%s", help)
	}

	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Build)
	defer log.Info(ctx, "shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Info(ctx, "startup", "config", out)

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Build)

	fmt.Println(logo)

	// -------------------------------------------------------------------------
	// Library System

	log.Info(ctx, "startup", "status", "downloading libraries")

	arch, err := defaults.Arch("")
	if err != nil {
		return err
	}

	opSys, err := defaults.OS("")
	if err != nil {
		return err
	}

	processor, err := defaults.Processor(cfg.Processor)
	if err != nil {
		return err
	}

	lbs, err := libs.NewWithSettings(cfg.LibPath, arch, opSys, processor, cfg.AllowUpgrade)
	if err != nil {
		return fmt.Errorf("unable to create libs api: %w", err)
	}

	log.Info(ctx, "startup", "status", "installing/updating libraries", "libPath", lbs.LibsPath(), "arch", lbs.Arch(), "os", lbs.OS(), "processor", lbs.Processor())

	dlCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if _, err := lbs.Download(dlCtx, log.Info); err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	// -------------------------------------------------------------------------
	// Catalog System

	ctlg := catalog.Default()
	if cfg.CatalogFile != "" {
		log.Info(ctx, "startup", "status", "loading catalog", "file", cfg.CatalogFile)

		ctlg, err = catalog.Load(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("unable to load catalog: %w", err)
		}
	}

	// -------------------------------------------------------------------------
	// Init Kuzco

	log.Info(ctx, "startup", "status", "initializing kuzco")

	if err := kuzco.Init(kuzco.WithLibPath(cfg.LibPath)); err != nil {
		return fmt.Errorf("installation invalid: %w", err)
	}

	che, err := cache.NewCache(cache.Config{
		Log:            log,
		Catalog:        ctlg,
		ModelPath:      cfg.ModelPath,
		Device:         cfg.Model.Device,
		MaxInCache:     cfg.Model.MaxInCache,
		ModelInstances: cfg.Model.Instances,
		ContextWindow:  cfg.Model.ContextWindow,
		Quantized:      cfg.Model.Quantized,
		CacheTTL:       cfg.Model.CacheTTL,
	})

	if err != nil {
		return fmt.Errorf("initializing kuzco manager: %w", err)
	}

	defer func() {
		log.Info(ctx, "shutdown", "status", "shutting down kuzco")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := che.Shutdown(ctx); err != nil {
			log.Error(ctx, "kuzco manager", "ERROR", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Warm the configured models

	if cfg.Model.Warmup {
		log.Info(ctx, "startup", "status", "warming models", "reranker", cfg.Model.Reranker, "embedder", cfg.Model.Embedder)

		var g errgroup.Group

		for _, modelID := range []string{cfg.Model.Reranker, cfg.Model.Embedder} {
			if modelID == "" {
				continue
			}

			g.Go(func() error {
				if _, err := che.AcquireModel(ctx, modelID); err != nil {
					return fmt.Errorf("warmup: %s: %w", modelID, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:         tag,
		Log:           log,
		Cache:         che,
		Catalog:       ctlg,
		RerankerModel: cfg.Model.Reranker,
		EmbedderModel: cfg.Model.Embedder,
	}

	webAPI := mux.WebAPI(cfgMux, build.Routes())

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)

		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

var logo = `
██╗  ██╗██╗   ██╗███████╗ ██████╗ ██████╗
██║ ██╔╝██║   ██║╚══███╔╝██╔════╝██╔═══██╗
█████╔╝ ██║   ██║  ███╔╝ ██║     ██║   ██║
██╔═██╗ ██║   ██║ ███╔╝  ██║     ██║   ██║
██║  ██╗╚██████╔╝███████╗╚██████╗╚██████╔╝
╚═╝  ╚═╝ ╚═════╝ ╚══════╝ ╚═════╝ ╚═════╝
`
