// Package main is the entry point for the stockroom history daemon.
// It owns history.db, keeps the snapshot history healthy on a schedule and can
// export a comparison report between two recorded snapshots.
//
// Usage:
//
//	historyd                              run the maintenance scheduler until signalled
//	historyd record <file.json>           record one assignment run and exit
//	historyd report <id1> <id2> [dim]     export one comparison report and exit
//	historyd list                         log the recorded snapshot ids and exit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/stockroom/internal/config"
	"github.com/aristath/stockroom/internal/di"
	"github.com/aristath/stockroom/internal/modules/comparison"
	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/aristath/stockroom/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	if len(os.Args) > 1 {
		if err := runCommand(container, os.Args[1:], log); err != nil {
			log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
			container.Close()
			os.Exit(1)
		}
		return
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting stockroom history daemon")

	// Log the current state of the history once before the first scheduled run
	if err := container.Scheduler.RunNow(jobs.HistoryStats); err != nil {
		log.Warn().Err(err).Msg("Initial history stats failed")
	}

	container.Scheduler.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	done := make(chan struct{})
	go func() {
		container.Scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Warn().Msg("Timed out waiting for running jobs")
	}

	log.Info().Msg("History daemon stopped")
}

// runCommand executes a one-shot command against the wired container
func runCommand(container *di.Container, args []string, log zerolog.Logger) error {
	switch args[0] {
	case "record":
		if len(args) < 2 {
			return fmt.Errorf("usage: historyd record <file.json>")
		}

		file, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open assignment record: %w", err)
		}
		defer file.Close()

		rec, err := snapshots.DecodeRecord(file)
		if err != nil {
			return err
		}

		snapshot, err := container.SnapshotStore.Record(rec)
		if err != nil {
			return err
		}

		log.Info().
			Str("id", snapshot.ID).
			Int("agents", snapshot.Metadata.TotalAgents).
			Int("assigned", snapshot.Metadata.TotalAssigned).
			Msg("Snapshot recorded")
		return nil

	case "report":
		if len(args) < 3 {
			return fmt.Errorf("usage: historyd report <id1> <id2> [agent|office|department|model|overall]")
		}

		var dimArg string
		if len(args) > 3 {
			dimArg = args[3]
		}
		dim, err := comparison.ParseDimension(dimArg)
		if err != nil {
			return err
		}

		report, err := container.ComparisonService.BuildReportByID(args[1], args[2], dim)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := container.ReportSink.Export(ctx, report); err != nil {
			return err
		}

		log.Info().
			Str("report", report.FileName()).
			Int("insights", len(report.Comparison.Insights)).
			Strs("recommendations", report.Recommendations).
			Msg("Report exported")
		return nil

	case "list":
		for _, snapshot := range container.SnapshotStore.List() {
			log.Info().
				Str("id", snapshot.ID).
				Time("timestamp", snapshot.Timestamp).
				Int("agents", snapshot.Metadata.TotalAgents).
				Int("assigned", snapshot.Metadata.TotalAssigned).
				Msg("Snapshot")
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (want record, report or list)", args[0])
	}
}
