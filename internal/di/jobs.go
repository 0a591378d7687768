package di

import (
	"fmt"

	"github.com/aristath/stockroom/internal/config"
	"github.com/aristath/stockroom/internal/reliability"
	"github.com/aristath/stockroom/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the maintenance jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	walCheck := scheduler.NewCheckWALCheckpointsJob(container.HistoryDB)
	walCheck.SetLogger(log)
	if err := container.Scheduler.AddJob(cfg.Schedules.WALCheck, walCheck); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", walCheck.Name(), err)
	}
	instances.WALCheck = walCheck

	stats := scheduler.NewHistoryStatsJob(container.SnapshotStore, container.Registry, log)
	if err := container.Scheduler.AddJob(cfg.Schedules.Stats, stats); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", stats.Name(), err)
	}
	instances.HistoryStats = stats

	maintenance := reliability.NewDailyMaintenanceJob(
		[]reliability.MaintainedDB{container.HistoryDB},
		cfg.DataDir,
		log,
	)
	if err := container.Scheduler.AddJob(cfg.Schedules.Maintenance, maintenance); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", maintenance.Name(), err)
	}
	instances.Maintenance = maintenance

	if container.BackupService != nil {
		backup := reliability.NewBackupJob(container.BackupService, cfg.BackupRetentionDays, log)
		if err := container.Scheduler.AddJob(cfg.Schedules.Backup, backup); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", backup.Name(), err)
		}
		instances.Backup = backup
	}

	log.Info().Int("jobs", container.Scheduler.JobCount()).Msg("Jobs registered")

	return instances, nil
}
