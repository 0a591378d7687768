package snapshots

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/stockroom/internal/database"
	"github.com/aristath/stockroom/internal/kvstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, capacity int) (*Store, *kvstore.MemoryStore) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := NewStore(kv, kvstore.JSONCodec{}, StoreConfig{Capacity: capacity}, log)
	return store, kv
}

func sampleInput() (AssignmentData, Settings, []Agent) {
	data := AssignmentData{Models: map[string]ModelTotals{
		"Galaxy S25": {TotalQuantity: 40, AssignedQuantity: 30},
		"Galaxy A55": {TotalQuantity: 20, AssignedQuantity: 12},
	}}
	settings := Settings{Ratios: Ratios{TurnoverRate: 0.4, StoreCount: 0.3, RemainingInventory: 0.2, SalesVolume: 0.1}}
	agents := []Agent{
		{
			AgentID: "A1", Target: "Kim", Office: "Seoul", Department: "Retail", Quantity: 25,
			Models: map[string]ModelHolding{
				"Galaxy S25": {Quantity: 20, Colors: map[string]int{"Black": 12, "Silver": 8}},
				"Galaxy A55": {Quantity: 5, Colors: map[string]int{"Blue": 5}},
			},
		},
		{
			AgentID: "A2", Target: "Lee", Office: "Busan", Quantity: 17,
			Models: map[string]ModelHolding{
				"Galaxy S25": {Quantity: 10, Colors: map[string]int{"Black": 10}},
				"Galaxy A55": {Quantity: 7},
			},
		},
	}
	return data, settings, agents
}

func savedSnapshot(t *testing.T, store *Store, assigned int, ratios Ratios) Snapshot {
	t.Helper()
	snapshot, err := store.Create(
		AssignmentData{Models: map[string]ModelTotals{"X": {TotalQuantity: assigned, AssignedQuantity: assigned}}},
		Settings{Ratios: ratios},
		[]Agent{{AgentID: "A1", Quantity: assigned}},
		nil,
	)
	require.NoError(t, err)
	require.True(t, store.Save(snapshot))
	return snapshot
}

func TestCreate_ComputesMetadata(t *testing.T) {
	store, _ := newTestStore(t, 0)
	store.SetClock(func() time.Time { return testTime })

	data, settings, agents := sampleInput()
	snapshot, err := store.Create(data, settings, agents, map[string]string{"confirmed_by": "ops"})
	require.NoError(t, err)

	assert.Regexp(t, fmt.Sprintf(`^%d_[0-9a-f-]{36}$`, testTime.UnixMilli()), snapshot.ID)
	assert.True(t, testTime.Equal(snapshot.Timestamp))
	assert.Equal(t, 2, snapshot.Metadata.TotalAgents)
	assert.Equal(t, 2, snapshot.Metadata.TotalModels)
	assert.Equal(t, 42, snapshot.Metadata.TotalAssigned)
	assert.Equal(t, 60, snapshot.Metadata.TotalQuantity)
	assert.Equal(t, "ops", snapshot.Metadata.Extra["confirmed_by"])

	// Absent collections are defaulted
	assert.NotNil(t, snapshot.Agents[1].Models["Galaxy A55"].Colors)
}

func TestCreate_IDsAreUniqueWithinSameInstant(t *testing.T) {
	store, _ := newTestStore(t, 0)
	store.SetClock(func() time.Time { return testTime })

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		snapshot, err := store.Create(AssignmentData{}, Settings{}, nil, nil)
		require.NoError(t, err)
		require.False(t, seen[snapshot.ID], "duplicate id %s", snapshot.ID)
		seen[snapshot.ID] = true
	}
}

func TestCreate_CopiesInput(t *testing.T) {
	store, _ := newTestStore(t, 0)

	data, settings, agents := sampleInput()
	snapshot, err := store.Create(data, settings, agents, nil)
	require.NoError(t, err)

	agents[0].Models["Galaxy S25"].Colors["Black"] = 999
	data.Models["Galaxy S25"] = ModelTotals{}

	assert.Equal(t, 12, snapshot.Agents[0].Models["Galaxy S25"].Colors["Black"])
	assert.Equal(t, 30, snapshot.AssignmentData.Models["Galaxy S25"].AssignedQuantity)
}

func TestCreate_RejectsMalformedInput(t *testing.T) {
	store, _ := newTestStore(t, 0)

	tests := []struct {
		name    string
		agents  []Agent
		data    AssignmentData
		problem string
	}{
		{"empty agent id", []Agent{{Quantity: 1}}, AssignmentData{}, "empty agent_id"},
		{"duplicate agent id", []Agent{{AgentID: "A"}, {AgentID: "A"}}, AssignmentData{}, "duplicates agent_id"},
		{"negative quantity", []Agent{{AgentID: "A", Quantity: -1}}, AssignmentData{}, "negative quantity"},
		{
			"negative color",
			[]Agent{{AgentID: "A", Models: map[string]ModelHolding{"X": {Colors: map[string]int{"Red": -2}}}}},
			AssignmentData{},
			"negative count",
		},
		{
			"negative model total",
			nil,
			AssignmentData{Models: map[string]ModelTotals{"X": {TotalQuantity: -5}}},
			"negative quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(tt.data, Settings{}, tt.agents, nil)
			require.Error(t, err)

			var malformed *MalformedSnapshotError
			require.ErrorAs(t, err, &malformed)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestSave_ListIsMostRecentFirst(t *testing.T) {
	store, _ := newTestStore(t, 0)

	first := savedSnapshot(t, store, 10, Ratios{})
	second := savedSnapshot(t, store, 20, Ratios{})

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestSave_EvictsBeyondCapacity(t *testing.T) {
	store, _ := newTestStore(t, 50)

	var ids []string
	for i := 0; i < 55; i++ {
		ids = append(ids, savedSnapshot(t, store, i, Ratios{}).ID)
	}

	list := store.List()
	require.Len(t, list, 50)

	// Exactly the 50 most recent, most recent first
	for i, snapshot := range list {
		assert.Equal(t, ids[54-i], snapshot.ID)
	}

	// The oldest five are gone
	for _, id := range ids[:5] {
		_, ok := store.Get(id)
		assert.False(t, ok, "snapshot %s should have been evicted", id)
	}
}

func TestSave_EvictionLawForSmallCapacity(t *testing.T) {
	const capacity = 3
	for k := 0; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			store, _ := newTestStore(t, capacity)
			var ids []string
			for i := 0; i < capacity+k; i++ {
				ids = append(ids, savedSnapshot(t, store, i, Ratios{}).ID)
			}

			list := store.List()
			require.Len(t, list, capacity)
			for i, snapshot := range list {
				assert.Equal(t, ids[len(ids)-1-i], snapshot.ID)
			}
		})
	}
}

func TestSave_PersistenceFailureReturnsFalse(t *testing.T) {
	store, kv := newTestStore(t, 0)
	existing := savedSnapshot(t, store, 10, Ratios{})

	kv.FailWrites = true
	snapshot, err := store.Create(AssignmentData{}, Settings{}, nil, nil)
	require.NoError(t, err)
	assert.False(t, store.Save(snapshot))
	assert.False(t, store.Delete(existing.ID))
	assert.False(t, store.Clear())

	kv.FailWrites = false
	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, existing.ID, list[0].ID)
}

func TestList_ReadFailureReturnsEmpty(t *testing.T) {
	store, kv := newTestStore(t, 0)
	savedSnapshot(t, store, 10, Ratios{})

	kv.FailReads = true
	assert.Empty(t, store.List())
	_, ok := store.Get("anything")
	assert.False(t, ok)
	assert.False(t, store.Save(Snapshot{ID: "x"}))
}

func TestList_CorruptHistoryReturnsEmpty(t *testing.T) {
	store, kv := newTestStore(t, 0)
	require.NoError(t, kv.Set(store.key, []byte("{not json")))

	assert.Empty(t, store.List())
}

func TestGet_ReturnsDeepCopy(t *testing.T) {
	store, _ := newTestStore(t, 0)
	data, settings, agents := sampleInput()
	snapshot, err := store.Create(data, settings, agents, nil)
	require.NoError(t, err)
	require.True(t, store.Save(snapshot))

	got, ok := store.Get(snapshot.ID)
	require.True(t, ok)
	got.Agents[0].Models["Galaxy S25"].Colors["Black"] = 0

	again, _ := store.Get(snapshot.ID)
	assert.Equal(t, 12, again.Agents[0].Models["Galaxy S25"].Colors["Black"])
}

func TestDeleteAndClear(t *testing.T) {
	store, _ := newTestStore(t, 0)
	a := savedSnapshot(t, store, 1, Ratios{})
	b := savedSnapshot(t, store, 2, Ratios{})

	assert.True(t, store.Delete(a.ID))
	assert.False(t, store.Delete(a.ID), "deleting twice reports false")

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.True(t, store.Clear())
	assert.Empty(t, store.List())
}

func TestStore_MetricsTrackSavesAndEvictions(t *testing.T) {
	store, kv := newTestStore(t, 2)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	store.SetMetrics(metrics)

	for i := 0; i < 3; i++ {
		savedSnapshot(t, store, i, Ratios{})
	}
	kv.FailWrites = true
	assert.False(t, store.Save(Snapshot{ID: "x"}))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.saved))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.historySize))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestStore_SQLiteBackendWithBothCodecs(t *testing.T) {
	for _, codec := range []kvstore.Codec{kvstore.JSONCodec{}, kvstore.MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			db, err := database.New(database.Config{
				Path: filepath.Join(t.TempDir(), "history.db"),
				Name: "history",
			})
			require.NoError(t, err)
			defer db.Close()
			require.NoError(t, db.Migrate())

			log := zerolog.New(nil).Level(zerolog.Disabled)
			store := NewStore(kvstore.NewSQLiteStore(db.Conn()), codec, StoreConfig{Namespace: "test"}, log)

			data, settings, agents := sampleInput()
			snapshot, err := store.Create(data, settings, agents, map[string]string{"source": "confirm"})
			require.NoError(t, err)
			require.True(t, store.Save(snapshot))

			got, ok := store.Get(snapshot.ID)
			require.True(t, ok)
			assert.True(t, snapshot.Timestamp.Equal(got.Timestamp))
			assert.Equal(t, snapshot.Metadata, got.Metadata)
			assert.Equal(t, snapshot.Settings, got.Settings)
			assert.Equal(t, snapshot.Agents, got.Agents)
			assert.Equal(t, snapshot.AssignmentData, got.AssignmentData)
		})
	}
}

func TestSave_RejectsDuplicateID(t *testing.T) {
	store, _ := newTestStore(t, 0)

	first := savedSnapshot(t, store, 10, Ratios{})
	other := savedSnapshot(t, store, 20, Ratios{})

	again := first.Clone()
	again.Metadata.TotalAssigned = 99
	assert.False(t, store.Save(again))

	history := store.List()
	require.Len(t, history, 2)
	assert.Equal(t, other.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	got, ok := store.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, 10, got.Metadata.TotalAssigned)

	assert.True(t, store.Delete(first.ID))
	assert.Len(t, store.List(), 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(store.metrics.saved))
}
