package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"seo_auditor/audit"
	"seo_auditor/config"
	"seo_auditor/dataforseo"
	"seo_auditor/export"
	"seo_auditor/httputil"
	"seo_auditor/logging"
	"seo_auditor/pagespeed"
	"seo_auditor/scheduler"
	"seo_auditor/server"
	"seo_auditor/storage"
	"seo_auditor/workers"
)

var (
	auditProject = flag.Int64("audit", 0, "Run one audit for the given project id and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting seo_auditor...")

	ctx := context.Background()

	store, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := audit.EnsureCatalog(ctx, store); err != nil {
		log.Fatalf("Failed to seed issue catalog: %v", err)
	}

	clients := httputil.NewClients()

	var crawler *dataforseo.Client
	if cfg.DataForSEO.Configured() {
		crawler, err = dataforseo.NewClient(cfg.DataForSEO, clients.API)
		if err != nil {
			log.Fatalf("Failed to build crawl client: %v", err)
		}
	} else {
		log.Println("DataForSEO credentials missing, audit runs disabled")
	}

	var perf *pagespeed.Client
	if cfg.PageSpeed.Configured() {
		perf, err = pagespeed.NewClient(cfg.PageSpeed, clients.PageSpeed)
		if err != nil {
			log.Fatalf("Failed to build pagespeed client: %v", err)
		}
	} else {
		log.Println("PageSpeed API key missing, performance rules will abstain")
	}

	var exporter *export.Exporter
	if cfg.Export.Configured() {
		exporter, err = export.NewExporter(ctx, cfg.Export)
		if err != nil {
			log.Fatalf("Failed to build report exporter: %v", err)
		}
		log.Printf("Report export enabled: bucket %s", cfg.Export.Bucket)
	}

	engine := audit.NewEngine(store, &cfg.Policy)
	orchestrator := audit.NewOrchestrator(store, crawler, perf, engine, exporter, cfg.PageSpeed.Concurrency)

	// One-shot mode
	if *auditProject > 0 {
		crawl, err := orchestrator.Run(ctx, *auditProject)
		if err != nil {
			log.Fatalf("Audit failed: %v", err)
		}
		log.Printf("Audit complete: crawl %d, health %.1f", crawl.ID, crawl.SiteHealth)
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg.Scheduler, store, orchestrator)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if perf != nil {
		perfWorker := workers.NewPageSpeedWorker(store, perf, engine)
		go perfWorker.Run(ctx, 10, 5*time.Minute)
		sched.SetWorkers(perfWorker)
		log.Println("PageSpeed worker started")
	}

	srv := server.New(store, engine, orchestrator)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	log.Println("Goodbye!")
}

// openStore picks the backend from the database URL: postgres URLs get the
// pool-backed store, anything else is treated as a local SQLite path.
func openStore(ctx context.Context, databaseURL string) (storage.Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		log.Printf("Using Postgres: %s", maskConnectionString(databaseURL))
		return storage.NewPostgresStore(ctx, databaseURL)
	}
	log.Printf("Using SQLite: %s", databaseURL)
	return storage.NewSQLiteStore(databaseURL)
}

// maskConnectionString masks the password in a connection string for logging
func maskConnectionString(connStr string) string {
	start := strings.Index(connStr, "://")
	if start < 0 {
		return connStr
	}
	rest := connStr[start+3:]
	at := strings.Index(rest, "@")
	if at < 0 {
		return connStr
	}
	colon := strings.Index(rest[:at], ":")
	if colon < 0 {
		return connStr
	}
	return connStr[:start+3] + rest[:colon+1] + "****" + rest[at:]
}
