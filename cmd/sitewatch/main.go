package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/logger"
	"github.com/aleister1102/sitewatch/internal/metrics"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/aleister1102/sitewatch/internal/monitor"
	"github.com/aleister1102/sitewatch/internal/notifier"
	"github.com/aleister1102/sitewatch/internal/probe"
	"github.com/aleister1102/sitewatch/internal/reconciler"
	"github.com/aleister1102/sitewatch/internal/render"
	"github.com/aleister1102/sitewatch/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

func run(flags AppFlags) error {
	// Config loading logs through a plain console logger until log_config is known.
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootLogger)
	if err != nil {
		return fmt.Errorf("could not load global config: %w", err)
	}

	for _, warning := range config.ApplyEnvOverrides(gCfg, os.Getenv) {
		bootLogger.Warn().Msg(warning)
	}
	if err := applyFlags(gCfg, flags); err != nil {
		return err
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return err
	}
	zLogger.Info().Str("mode", gCfg.Mode).Str("output_mode", gCfg.RenderConfig.OutputMode).Msg("Configuration validated successfully.")

	sitesPath := gCfg.ResolvePath(gCfg.MonitorConfig.SitesFile)
	sites, err := config.LoadSites(sitesPath)
	if err != nil {
		zLogger.Error().Err(err).Str("path", sitesPath).Msg("Failed to load sites")
		return err
	}
	zLogger.Info().Int("sites", len(sites)).Str("path", sitesPath).Msg("Sites loaded")

	stateStore, err := store.NewSQLiteStore(gCfg.ResolvePath(gCfg.StorageConfig.SQLitePath), zLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stateStore.Close(); closeErr != nil {
			zLogger.Error().Err(closeErr).Msg("Failed to close notification state database")
		}
	}()

	messenger, err := notifier.NewMessenger(gCfg.NotificationConfig, zLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := messenger.Close(); closeErr != nil {
			zLogger.Error().Err(closeErr).Msg("Failed to close messenger")
		}
	}()

	prober, err := probe.NewExecutor(gCfg.ProbeConfig, zLogger)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(gCfg.RenderConfig)
	if err != nil {
		return err
	}
	// The guard reads the live site set, which the service owns.
	var service *monitor.MonitoringService
	siteReconciler := reconciler.New(stateStore, messenger, renderer, zLogger,
		reconciler.WithThrottle(gCfg.NotificationConfig.ArtificialDelay()),
		reconciler.WithRemoteTimeout(gCfg.NotificationConfig.RemoteTimeout()),
		reconciler.WithRevalidateAfter(gCfg.NotificationConfig.RevalidateAfter()),
		reconciler.WithSiteGuard(func(siteID string) bool { return service.IsConfigured(siteID) }),
	)

	recorder := metrics.NewRecorder()

	var pruner monitor.RecordPruner
	if gCfg.StorageConfig.PruneRemovedSites {
		pruner = stateStore
	}
	service = monitor.NewMonitoringService(prober, siteReconciler, pruner, recorder, zLogger)
	service.SetSites(sites)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := service.PruneRemovedSites(ctx); err != nil {
		zLogger.Warn().Err(err).Msg("Failed to prune records of removed sites, continuing")
	}

	scheduler, err := monitor.NewScheduler(gCfg.MonitorConfig, gCfg.MaxCycles(), service, zLogger)
	if err != nil {
		return err
	}

	// Background components live until the scheduler returns or a signal arrives.
	bgCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()
	g, gCtx := errgroup.WithContext(bgCtx)

	g.Go(func() error {
		defer cancelBackground()
		return scheduler.Run(gCtx)
	})

	g.Go(func() error {
		return messenger.Start(gCtx)
	})

	if gCfg.MonitorConfig.WatchSitesFile && gCfg.Mode != config.ModeOnetime {
		watcher := config.NewSitesWatcher(sitesPath, func(updated []models.Site) {
			service.UpdateSites(gCtx, updated)
		}, zLogger)
		g.Go(func() error {
			return watcher.Run(gCtx)
		})
	}

	if gCfg.MetricsConfig.Enabled {
		server := metrics.NewServer(recorder, gCfg.MetricsConfig.ListenAddress, gCfg.MetricsConfig.Path, zLogger)
		g.Go(func() error {
			return server.Run(gCtx)
		})
	}

	zLogger.Info().Msg("Sitewatch started")
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		zLogger.Error().Err(err).Msg("Sitewatch stopped with error")
		return err
	}

	zLogger.Info().Int("cycles", scheduler.Tracker().CycleCount()).Msg("Sitewatch stopped")
	return nil
}

// applyFlags copies command line overrides onto the configuration.
func applyFlags(cfg *config.GlobalConfig, flags AppFlags) error {
	if flags.Mode != "" {
		cfg.Mode = flags.Mode
	}
	if flags.SitesFile != "" {
		cfg.MonitorConfig.SitesFile = flags.SitesFile
	}
	if flags.OutputMode != "" {
		mode, ok := config.NormalizeOutputMode(flags.OutputMode)
		if !ok {
			return fmt.Errorf("unknown output mode '%s' (expected raw, markdown or embed)", flags.OutputMode)
		}
		cfg.RenderConfig.OutputMode = mode
	}
	return nil
}
