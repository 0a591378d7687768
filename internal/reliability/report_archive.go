package reliability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aristath/stockroom/internal/modules/comparison"
	"github.com/rs/zerolog"
)

const reportArchivePrefix = "reports/"

// ReportArchive is a report sink that keeps exported reports in the bucket
type ReportArchive struct {
	store ObjectStore
	log   zerolog.Logger
}

// NewReportArchive creates an archive sink over store
func NewReportArchive(store ObjectStore, log zerolog.Logger) *ReportArchive {
	return &ReportArchive{
		store: store,
		log:   log.With().Str("sink", "r2_report_archive").Logger(),
	}
}

// Export uploads the report as JSON under reports/
func (a *ReportArchive) Export(ctx context.Context, report comparison.Report) error {
	if report.Comparison == nil {
		return fmt.Errorf("failed to archive report: no comparison")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := reportArchivePrefix + report.FileName()
	if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}

	a.log.Info().Str("key", key).Int("bytes", len(data)).Msg("Report archived")
	return nil
}
