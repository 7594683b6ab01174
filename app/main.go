package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-sheets/app/activity"
	"github.com/lysyi3m/rss-sheets/app/api"
	"github.com/lysyi3m/rss-sheets/app/auth"
	"github.com/lysyi3m/rss-sheets/app/cfg"
	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/feed"
	"github.com/lysyi3m/rss-sheets/app/sheet"
	"github.com/lysyi3m/rss-sheets/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	activityLog := activity.NewLog(appCfg.LogCapacity)
	setupLogger(appCfg, activityLog)

	if appCfg.ExportCredentials != "" {
		value, err := auth.ExportCredentials(appCfg.TokenFile, appCfg.ExportCredentials)
		if err != nil {
			slog.Error("Failed to export credentials", "error", err)
			os.Exit(1)
		}
		fmt.Println(value)
		return
	}

	slog.Info("Starting RSS Sheets", "version", appCfg.Version, "mode", appCfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rssURL, spreadsheetID string
	if appCfg.Mode == cfg.ModeStandalone {
		rssURL, spreadsheetID, err = resolveStandaloneTarget(appCfg, os.Stdin, os.Stdout)
		if err != nil {
			slog.Error("Missing monitor settings", "error", err)
			os.Exit(1)
		}
	}

	provider, err := newCredentialsProvider(appCfg)
	if err != nil {
		slog.Error("Failed to load Google credentials", "error", err)
		os.Exit(1)
	}

	slog.Info("Authenticating with Google Sheets", "credentials_mode", appCfg.CredentialsMode)
	if _, err := provider.Token(ctx); err != nil {
		slog.Error("Failed to authenticate with Google Sheets", "error", err)
		os.Exit(1)
	}

	values, err := sheet.NewGoogleValues(ctx, provider.TokenSource(ctx))
	if err != nil {
		slog.Error("Failed to create Sheets client", "error", err)
		os.Exit(1)
	}

	source := feed.NewSource(
		feed.NewFetcher(&http.Client{}, appCfg.UserAgent, appCfg.FetchTimeout),
		feed.NewParser(),
	)

	opts := tasks.MonitorOptions{
		SuccessInterval: appCfg.SuccessInterval,
		ErrorInterval:   appCfg.ErrorInterval,
		SeedFromSink:    appCfg.SeedFromSink,
	}

	if appCfg.Mode == cfg.ModeServer {
		if err := runServer(ctx, appCfg, source, values, opts, activityLog); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	writer := sheet.NewWriter(values, spreadsheetID, appCfg.SinkTimeout)
	monitor := tasks.NewMonitor("standalone", "standalone", rssURL, source, writer, nil, nil, opts)
	monitor.Run(ctx)
}

func setupLogger(appCfg *cfg.Cfg, activityLog *activity.Log) {
	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}

	text := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(activity.NewHandler(text, activityLog, slog.LevelInfo)))
}

func newCredentialsProvider(appCfg *cfg.Cfg) (auth.Provider, error) {
	switch appCfg.CredentialsMode {
	case cfg.CredentialsEnvironment:
		provider, err := auth.NewEnvironmentProvider(appCfg.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case cfg.CredentialsInteractive:
		return auth.NewInteractiveProvider(auth.InteractiveOptions{
			TokenFile:         appCfg.TokenFile,
			ClientSecretsFile: appCfg.ClientSecretsFile,
			Headless:          appCfg.Headless,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown credentials mode '%s'", auth.ErrAuth, appCfg.CredentialsMode)
	}
}

func runServer(ctx context.Context, appCfg *cfg.Cfg, source *feed.Source, values sheet.ValuesService,
	opts tasks.MonitorOptions, activityLog *activity.Log) error {
	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database migrated", "path", appCfg.DBPath, "version", version, "dirty", dirty)

	monitorRepo := database.NewMonitorRepository(db)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load monitor definitions: %w", err)
	}
	slog.Info("Monitor definitions loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	for _, config := range configCache.GetConfigs() {
		if err := tasks.NewSyncMonitorConfigTask(config, monitorRepo).Execute(ctx); err != nil {
			slog.Warn("Failed to register monitor definition", "feed", config.Name, "error", err)
		}
	}

	sinks := func(spreadsheetID string) tasks.Sink {
		return sheet.NewWriter(values, spreadsheetID, appCfg.SinkTimeout)
	}
	rowReaders := func(spreadsheetID string) api.RowReader {
		return sheet.NewWriter(values, spreadsheetID, appCfg.SinkTimeout)
	}

	scheduler := tasks.NewScheduler(monitorRepo, source, sinks, opts)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	handler := api.NewHandler(monitorRepo, scheduler, activityLog, rowReaders)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}
