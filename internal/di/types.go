// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/stockroom/internal/database"
	"github.com/aristath/stockroom/internal/kvstore"
	"github.com/aristath/stockroom/internal/modules/comparison"
	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/aristath/stockroom/internal/reliability"
	"github.com/aristath/stockroom/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all dependencies for the application.
// It is created by Wire and is the single source of truth for service instances.
type Container struct {
	// Databases
	HistoryDB *database.DB // history.db - snapshot history key-value table

	// Storage
	KVStore kvstore.Store
	Codec   kvstore.Codec

	// Metrics
	Registry *prometheus.Registry

	// Services
	SnapshotStore     *snapshots.Store
	ComparisonCache   comparison.Cache
	ComparisonService *comparison.Service
	ReportSink        comparison.MultiSink

	// Cloud (nil when R2 is not configured)
	R2Client      *reliability.R2Client
	BackupService *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// Close releases the database handles
func (c *Container) Close() error {
	if c.HistoryDB == nil {
		return nil
	}
	return c.HistoryDB.Close()
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	WALCheck     *scheduler.CheckWALCheckpointsJob
	HistoryStats *scheduler.HistoryStatsJob
	Maintenance  *reliability.DailyMaintenanceJob
	Backup       *reliability.BackupJob // nil when R2 is not configured
}
