package reliability

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/stockroom/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMaintainedDB struct {
	mock.Mock
}

func (m *mockMaintainedDB) Name() string { return "history" }
func (m *mockMaintainedDB) Path() string { return "/nonexistent/history.db" }

func (m *mockMaintainedDB) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockMaintainedDB) CheckpointWAL(mode string) (database.WALStatus, error) {
	args := m.Called(mode)
	return args.Get(0).(database.WALStatus), args.Error(1)
}

func plentyOfSpace(string) (uint64, error) { return 100e9, nil }

func TestDailyMaintenanceJob_Run(t *testing.T) {
	dataDir := t.TempDir()
	db := newHistoryDB(t, dataDir)

	job := NewDailyMaintenanceJob([]MaintainedDB{db}, dataDir, zerolog.New(nil).Level(zerolog.Disabled))
	job.freeSpace = plentyOfSpace

	assert.Equal(t, "daily_maintenance", job.Name())
	assert.NoError(t, job.Run())
}

func TestDailyMaintenanceJob_HealthCheckFailureHalts(t *testing.T) {
	db := new(mockMaintainedDB)
	db.On("HealthCheck", mock.Anything).Return(errors.New("integrity check failed"))

	job := NewDailyMaintenanceJob([]MaintainedDB{db}, t.TempDir(), zerolog.New(nil).Level(zerolog.Disabled))
	job.freeSpace = plentyOfSpace

	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRITICAL")
	db.AssertNotCalled(t, "CheckpointWAL", mock.Anything)
}

func TestDailyMaintenanceJob_CheckpointFailureIsNotFatal(t *testing.T) {
	db := new(mockMaintainedDB)
	db.On("HealthCheck", mock.Anything).Return(nil)
	db.On("CheckpointWAL", "TRUNCATE").Return(database.WALStatus{}, errors.New("database is locked"))

	job := NewDailyMaintenanceJob([]MaintainedDB{db}, t.TempDir(), zerolog.New(nil).Level(zerolog.Disabled))
	job.freeSpace = plentyOfSpace

	assert.NoError(t, job.Run())
	db.AssertExpectations(t)
}

func TestDailyMaintenanceJob_DiskSpace(t *testing.T) {
	tests := []struct {
		name    string
		free    func(string) (uint64, error)
		wantErr bool
	}{
		{"plenty", plentyOfSpace, false},
		{"low but usable", func(string) (uint64, error) { return 2e9, nil }, false},
		{"critical", func(string) (uint64, error) { return 100e6, nil }, true},
		{"statfs failure", func(string) (uint64, error) { return 0, errors.New("no such device") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewDailyMaintenanceJob(nil, t.TempDir(), zerolog.New(nil).Level(zerolog.Disabled))
			job.freeSpace = tt.free

			err := job.Run()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackupJob_Run(t *testing.T) {
	dataDir := t.TempDir()
	db := newHistoryDB(t, dataDir)
	bucket := newMemoryBucket()
	service := NewBackupService(bucket, []BackupSource{db}, dataDir, zerolog.New(nil).Level(zerolog.Disabled))

	job := NewBackupJob(service, 30, zerolog.New(nil).Level(zerolog.Disabled))
	assert.Equal(t, "r2_backup", job.Name())
	require.NoError(t, job.Run())
	assert.Len(t, bucket.keys(), 1)

	bucket.failUpload = true
	assert.ErrorIs(t, job.Run(), errBucketDown)
}
