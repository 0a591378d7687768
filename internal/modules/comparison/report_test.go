package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	s1, s2 := snapshotPair()
	svc := newTestService(t, nil, nil)

	report, err := svc.BuildReport(s1, s2, DimensionOffice)
	require.NoError(t, err)

	assert.Equal(t, "배정 이력 비교 리포트", report.Title)
	assert.Equal(t, "2026-03-02 09:00 → 2026-03-04 09:00 (office)", report.Subtitle)
	assert.Equal(t, fixedNow, report.Timestamp)
	require.NotNil(t, report.Comparison)
	assert.Equal(t, DimensionOffice, report.Comparison.Dimension)

	expected := []string{}
	for _, insight := range report.Comparison.Insights {
		expected = append(expected, insight.Recommendation)
	}
	assert.Equal(t, expected, report.Recommendations)
	assert.Equal(t, "report-s1-s2-office.json", report.FileName())
}

func TestBuildReport_NoInsightsYieldsEmptyRecommendations(t *testing.T) {
	s1, _ := snapshotPair()
	svc := newTestService(t, nil, nil)

	report, err := svc.BuildReport(s1, s1, DimensionAgent)
	require.NoError(t, err)
	assert.NotNil(t, report.Recommendations)
	assert.Empty(t, report.Recommendations)
}

func TestBuildReportByID_NotFound(t *testing.T) {
	svc := newTestService(t, newHistory(t), nil)

	_, err := svc.BuildReportByID("a", "b", DimensionAgent)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestJSONFileSink_Export(t *testing.T) {
	s1, s2 := snapshotPair()
	svc := newTestService(t, nil, nil)
	report, err := svc.BuildReport(s1, s2, "")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "reports")
	sink := NewJSONFileSink(dir, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, sink.Export(context.Background(), report))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "report-s1-s2-overall.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Title, decoded.Title)
	assert.Equal(t, report.Recommendations, decoded.Recommendations)
	assert.Equal(t, report.Comparison.Summary, decoded.Comparison.Summary)
	assert.Len(t, decoded.Comparison.Details, 4)

	// Exporting again overwrites in place
	require.NoError(t, sink.Export(context.Background(), report))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONFileSink_Errors(t *testing.T) {
	sink := NewJSONFileSink(t.TempDir(), zerolog.New(nil).Level(zerolog.Disabled))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Export(ctx, Report{Comparison: &ComparisonResult{}}), context.Canceled)

	assert.Error(t, sink.Export(context.Background(), Report{}))
}

type recordingSink struct {
	exported []string
	err      error
}

func (r *recordingSink) Export(_ context.Context, report Report) error {
	r.exported = append(r.exported, report.FileName())
	return r.err
}

func TestMultiSink_AttemptsEverySink(t *testing.T) {
	report := Report{Comparison: &ComparisonResult{Snapshot1ID: "a", Snapshot2ID: "b", Dimension: DimensionAgent}}

	failing := &recordingSink{err: errors.New("disk full")}
	ok := &recordingSink{}

	err := MultiSink{failing, ok}.Export(context.Background(), report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"report-a-b-agent.json"}, ok.exported)

	assert.NoError(t, MultiSink{ok}.Export(context.Background(), report))
	assert.NoError(t, MultiSink{}.Export(context.Background(), report))
}
