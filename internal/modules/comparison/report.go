package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

const (
	reportTitle      = "배정 이력 비교 리포트"
	reportTimeLayout = "2006-01-02 15:04"
)

// Report is a comparison packaged for export
type Report struct {
	Title           string            `json:"title"`
	Subtitle        string            `json:"subtitle"`
	Timestamp       time.Time         `json:"timestamp"`
	Comparison      *ComparisonResult `json:"comparison"`
	Recommendations []string          `json:"recommendations"`
}

// FileName is the export name of the report, unique per (id1, id2, dimension)
func (r Report) FileName() string {
	return fmt.Sprintf("report-%s-%s-%s.json",
		r.Comparison.Snapshot1ID, r.Comparison.Snapshot2ID, r.Comparison.Dimension)
}

// ReportSink exports a report somewhere outside the process
type ReportSink interface {
	Export(ctx context.Context, report Report) error
}

// MultiSink exports to every sink in turn. Every sink is attempted; the
// failures are joined.
type MultiSink []ReportSink

func (m MultiSink) Export(ctx context.Context, report Report) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Export(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildReport compares the snapshots and wraps the result with a title and
// the distinct insight recommendations, in emission order.
func (s *Service) BuildReport(s1, s2 snapshots.Snapshot, dim Dimension) (Report, error) {
	result, err := s.Compare(s1, s2, dim)
	if err != nil {
		return Report{}, fmt.Errorf("failed to build report: %w", err)
	}

	recommendations := []string{}
	seen := make(map[string]bool)
	for _, insight := range result.Insights {
		if seen[insight.Recommendation] {
			continue
		}
		seen[insight.Recommendation] = true
		recommendations = append(recommendations, insight.Recommendation)
	}

	return Report{
		Title: reportTitle,
		Subtitle: fmt.Sprintf("%s → %s (%s)",
			s1.Timestamp.UTC().Format(reportTimeLayout),
			s2.Timestamp.UTC().Format(reportTimeLayout),
			result.Dimension),
		Timestamp:       s.now().UTC(),
		Comparison:      result,
		Recommendations: recommendations,
	}, nil
}

// BuildReportByID looks both snapshots up in the history and builds their report
func (s *Service) BuildReportByID(id1, id2 string, dim Dimension) (Report, error) {
	s1, s2, err := s.lookup(id1, id2)
	if err != nil {
		return Report{}, err
	}
	return s.BuildReport(s1, s2, dim)
}

// JSONFileSink writes reports as indented JSON files into a directory
type JSONFileSink struct {
	dir string
	log zerolog.Logger
}

// NewJSONFileSink creates a sink writing into dir
func NewJSONFileSink(dir string, log zerolog.Logger) *JSONFileSink {
	return &JSONFileSink{
		dir: dir,
		log: log.With().Str("sink", "json_file").Logger(),
	}
}

// Export writes the report to a temp file and renames it into place
func (j *JSONFileSink) Export(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report.Comparison == nil {
		return errors.New("failed to export report: no comparison")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	target := filepath.Join(j.dir, report.FileName())
	tmp, err := os.CreateTemp(j.dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move report into place: %w", err)
	}

	j.log.Info().
		Str("path", target).
		Int("bytes", len(data)).
		Msg("Report exported")

	return nil
}
