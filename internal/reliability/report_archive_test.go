package reliability

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aristath/stockroom/internal/modules/comparison"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportArchive_Export(t *testing.T) {
	bucket := newMemoryBucket()
	archive := NewReportArchive(bucket, zerolog.New(nil).Level(zerolog.Disabled))

	report := comparison.Report{
		Title:           "배정 이력 비교 리포트",
		Comparison:      &comparison.ComparisonResult{Snapshot1ID: "s1", Snapshot2ID: "s2", Dimension: comparison.DimensionModel},
		Recommendations: []string{"현재 배정 비율 설정을 유지하세요"},
	}
	require.NoError(t, archive.Export(context.Background(), report))

	key := "reports/report-s1-s2-model.json"
	assert.Equal(t, []string{key}, bucket.keys())

	var decoded comparison.Report
	require.NoError(t, json.Unmarshal(bucket.objects[key], &decoded))
	assert.Equal(t, report.Title, decoded.Title)
	assert.Equal(t, report.Recommendations, decoded.Recommendations)
}

func TestReportArchive_Errors(t *testing.T) {
	bucket := newMemoryBucket()
	archive := NewReportArchive(bucket, zerolog.New(nil).Level(zerolog.Disabled))

	assert.Error(t, archive.Export(context.Background(), comparison.Report{}))

	bucket.failUpload = true
	err := archive.Export(context.Background(), comparison.Report{Comparison: &comparison.ComparisonResult{}})
	assert.ErrorIs(t, err, errBucketDown)
}

// ReportArchive is usable wherever a comparison report sink is
var _ comparison.ReportSink = (*ReportArchive)(nil)
