package di

import (
	"context"
	"fmt"

	"github.com/aristath/stockroom/internal/config"
	"github.com/aristath/stockroom/internal/kvstore"
	"github.com/aristath/stockroom/internal/modules/comparison"
	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/aristath/stockroom/internal/reliability"
	"github.com/aristath/stockroom/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// InitializeServices builds the storage, comparison and backup services on top of the databases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.HistoryDB == nil {
		return fmt.Errorf("container has no history database")
	}

	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(collectors.NewGoCollector())

	// Storage
	codec, err := kvstore.CodecByName(cfg.StoreCodec)
	if err != nil {
		return fmt.Errorf("failed to select store codec: %w", err)
	}
	container.Codec = codec
	container.KVStore = kvstore.NewSQLiteStore(container.HistoryDB.Conn())

	// Snapshot history
	container.SnapshotStore = snapshots.NewStore(container.KVStore, codec, snapshots.StoreConfig{
		Capacity:  cfg.HistoryCapacity,
		Namespace: cfg.HistoryNamespace,
	}, log)
	container.SnapshotStore.SetMetrics(snapshots.NewMetrics(container.Registry))

	// Comparison
	cache, err := comparison.NewCache(cfg.ComparisonCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create comparison cache: %w", err)
	}
	container.ComparisonCache = cache
	container.ComparisonService = comparison.NewService(container.SnapshotStore, cache, log,
		comparison.WithRegisterer(container.Registry))

	container.ReportSink = comparison.MultiSink{comparison.NewJSONFileSink(cfg.ReportDir, log)}

	// Cloudflare R2 (optional)
	if cfg.R2.Enabled() {
		r2Client, err := reliability.NewR2Client(context.Background(), cfg.R2, log)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create R2 client, cloud backups disabled")
		} else {
			container.R2Client = r2Client
			container.BackupService = reliability.NewBackupService(
				r2Client,
				[]reliability.BackupSource{container.HistoryDB},
				cfg.DataDir,
				log,
			)
			container.ReportSink = append(container.ReportSink, reliability.NewReportArchive(r2Client, log))
			log.Info().Str("bucket", cfg.R2.BucketName).Msg("R2 backups and report archive enabled")
		}
	}

	container.Scheduler = scheduler.New(log)

	log.Info().
		Str("codec", codec.Name()).
		Int("capacity", container.SnapshotStore.Capacity()).
		Int("cache_size", cfg.ComparisonCacheSize).
		Msg("Services initialized")

	return nil
}
