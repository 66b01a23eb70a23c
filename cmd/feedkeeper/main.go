package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/feedkeeper/pkg/config"
	"github.com/umputun/feedkeeper/pkg/content"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/metrics"
	"github.com/umputun/feedkeeper/pkg/scheduler"
	"github.com/umputun/feedkeeper/pkg/service"
	"github.com/umputun/feedkeeper/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults are used if not set"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	DSN    string `long:"dsn" env:"DSN" description:"database connection string, overrides config"`
	Once   bool   `long:"once" description:"run a single batch and icon backfill, then exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug)

	lgr.Printf("[INFO] starting feedkeeper version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Print("[INFO] shutdown complete")
}

// run wires stores, the feed processor, scheduler and server, and blocks until ctx is done
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := service.Open(ctx, service.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			lgr.Printf("[WARN] failed to close store: %v", err)
		}
	}()
	lgr.Printf("[INFO] using %s store", storeKind(cfg.Database.DSN))

	m := metrics.New()
	processor := scheduler.NewFeedProcessor(scheduler.FeedProcessorConfig{
		FeedManager:       st,
		ItemManager:       st,
		FeedErrorManager:  st,
		Fetcher:           feed.NewHTTPFetcher(cfg.Ingest.FetchTimeout, cfg.Ingest.UserAgent),
		PageImages:        content.NewScraper(cfg.Ingest.ScrapeTimeout, cfg.Ingest.UserAgent),
		Icons:             content.NewScraper(cfg.Icons.Timeout, cfg.Ingest.UserAgent),
		Normalizer:        feed.NewNormalizer(cfg.Ingest.SummaryLength),
		Metrics:           m,
		BatchSize:         cfg.Ingest.BatchSize,
		Retention:         cfg.Ingest.Retention,
		ScrapeConcurrency: cfg.Ingest.ScrapeConcurrency,
		IconConcurrency:   cfg.Icons.Concurrency,
	})

	if opts.Once {
		return runOnce(ctx, processor, cfg.Icons.Enabled)
	}

	iconInterval := cfg.Icons.Interval
	if !cfg.Icons.Enabled {
		iconInterval = 0
	}
	sched := scheduler.NewScheduler(scheduler.Params{
		Runner:         processor,
		IngestInterval: cfg.Ingest.Interval,
		IconInterval:   iconInterval,
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(server.Params{
		Config:  cfg,
		Store:   st,
		Runner:  processor,
		Metrics: m.Handler(),
		Version: revision,
		Debug:   opts.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// runOnce makes a single ingestion pass, used for cron-style deployments
func runOnce(ctx context.Context, processor *scheduler.FeedProcessor, icons bool) error {
	res, err := processor.RunBatch(ctx)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	lgr.Printf("[INFO] single run done, processed %d feeds, inserted %d items", res.Processed, res.Inserted)

	if !icons {
		return nil
	}
	if _, err := processor.RunIconBackfill(ctx); err != nil {
		return fmt.Errorf("icon backfill failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file if set and applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}
	return cfg, nil
}

func storeKind(dsn string) string {
	if service.IsPostgres(dsn) {
		return "postgres"
	}
	return "sqlite"
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
