package reliability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/stockroom/internal/database"
	"github.com/rs/zerolog"
)

// MaintainedDB is a database the daily maintenance job looks after
type MaintainedDB interface {
	Name() string
	Path() string
	HealthCheck(ctx context.Context) error
	CheckpointWAL(mode string) (database.WALStatus, error)
}

// Disk space thresholds for the data directory, in GB
const (
	criticalFreeGB = 0.5
	lowFreeGB      = 5.0
)

// DailyMaintenanceJob checks database integrity, truncates the WAL and watches disk space
type DailyMaintenanceJob struct {
	databases []MaintainedDB
	dataDir   string
	timeout   time.Duration
	freeSpace func(dir string) (uint64, error)
	log       zerolog.Logger
}

// NewDailyMaintenanceJob creates the daily maintenance job
func NewDailyMaintenanceJob(databases []MaintainedDB, dataDir string, log zerolog.Logger) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		timeout:   2 * time.Minute,
		freeSpace: availableBytes,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Run executes the daily maintenance job
func (j *DailyMaintenanceJob) Run() error {
	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	// Step 1: Integrity check
	for _, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Str("database", db.Name()).Err(err).Msg("CRITICAL: Database failed health check")
			return fmt.Errorf("CRITICAL: %s failed health check: %w", db.Name(), err)
		}
	}

	// Step 2: WAL checkpoint (not critical)
	for _, db := range j.databases {
		if _, err := db.CheckpointWAL("TRUNCATE"); err != nil {
			j.log.Warn().Str("database", db.Name()).Err(err).Msg("WAL checkpoint failed")
		}
	}

	// Step 3: Disk space
	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	// Step 4: Sizes
	for _, db := range j.databases {
		j.logSize(db)
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Daily maintenance completed successfully")

	return nil
}

// Name returns the job name for scheduler
func (j *DailyMaintenanceJob) Name() string {
	return "daily_maintenance"
}

func (j *DailyMaintenanceJob) checkDiskSpace() error {
	free, err := j.freeSpace(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}
	freeGB := float64(free) / 1e9

	switch {
	case freeGB < criticalFreeGB:
		j.log.Error().Float64("available_gb", freeGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("CRITICAL: only %.2f GB free in %s", freeGB, j.dataDir)
	case freeGB < lowFreeGB:
		j.log.Warn().Float64("available_gb", freeGB).Msg("Disk space running low")
	default:
		j.log.Debug().Float64("available_gb", freeGB).Msg("Disk space check")
	}
	return nil
}

func (j *DailyMaintenanceJob) logSize(db MaintainedDB) {
	info, err := os.Stat(db.Path())
	if err != nil {
		j.log.Warn().Str("database", db.Name()).Err(err).Msg("Failed to stat database file")
		return
	}

	event := j.log.Info().
		Str("database", db.Name()).
		Float64("size_mb", float64(info.Size())/1024/1024)
	if wal, err := os.Stat(db.Path() + "-wal"); err == nil {
		event = event.Float64("wal_size_mb", float64(wal.Size())/1024/1024)
	}
	event.Msg("Database metrics")
}

func availableBytes(dir string) (uint64, error) {
	stat := syscall.Statfs_t{}
	if err := syscall.Statfs(filepath.Clean(dir), &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// BackupJob uploads a fresh backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates the R2 backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       10 * time.Minute,
		log:           log.With().Str("job", "r2_backup").Logger(),
	}
}

// Run executes the backup job. Rotation failures are logged, not returned.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return fmt.Errorf("r2 backup failed: %w", err)
	}

	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Error().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "r2_backup"
}
