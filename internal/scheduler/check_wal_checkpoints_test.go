package scheduler

import (
	"errors"
	"testing"

	"github.com/aristath/stockroom/internal/database"
	testingpkg "github.com/aristath/stockroom/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCheckpointedDB struct {
	mock.Mock
}

func (m *mockCheckpointedDB) Name() string { return "mock" }

func (m *mockCheckpointedDB) CheckpointWAL(mode string) (database.WALStatus, error) {
	args := m.Called(mode)
	return args.Get(0).(database.WALStatus), args.Error(1)
}

func TestCheckWALCheckpointsJob_Name(t *testing.T) {
	job := NewCheckWALCheckpointsJob()
	assert.Equal(t, "check_wal_checkpoints", job.Name())
}

func TestCheckWALCheckpointsJob_Run_NoDatabases(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	job := NewCheckWALCheckpointsJob(nil)
	job.SetLogger(log)

	err := job.Run()
	assert.NoError(t, err) // Should handle nil databases gracefully
}

func TestCheckWALCheckpointsJob_Run_HistoryDB(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "history")
	defer cleanup()

	job := NewCheckWALCheckpointsJob(db)
	job.SetLogger(zerolog.New(nil).Level(zerolog.Disabled))

	assert.NoError(t, job.Run())
}

func TestCheckWALCheckpointsJob_Run_ChecksEveryDatabase(t *testing.T) {
	large := new(mockCheckpointedDB)
	large.On("CheckpointWAL", "PASSIVE").Return(database.WALStatus{LogFrames: 5000, Checkpointed: 10}, nil)

	failing := new(mockCheckpointedDB)
	failing.On("CheckpointWAL", "PASSIVE").Return(database.WALStatus{}, errors.New("database is locked"))

	job := NewCheckWALCheckpointsJob(large, failing)
	job.SetLogger(zerolog.New(nil).Level(zerolog.Disabled))

	// Failures are logged, never returned
	assert.NoError(t, job.Run())
	large.AssertExpectations(t)
	failing.AssertExpectations(t)
}
