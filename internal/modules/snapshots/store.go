package snapshots

import (
	"sync"
	"time"

	"github.com/aristath/stockroom/internal/kvstore"
	"github.com/rs/zerolog"
)

// DefaultCapacity is the number of snapshots kept before the oldest are evicted
const DefaultCapacity = 50

// historyKey is the key the ordered list lives under inside the namespace
const historyKey = "assignment_history"

// StoreConfig configures a Store
type StoreConfig struct {
	Capacity  int    // defaults to DefaultCapacity
	Namespace string // key-value namespace, defaults to "stockroom"
}

// Store is the capped, most-recent-first snapshot history.
// Persistence failures are logged and reported as false / empty results,
// never returned as errors, so callers can degrade to a warning.
type Store struct {
	kv       kvstore.Store
	codec    kvstore.Codec
	key      string
	capacity int
	now      func() time.Time
	metrics  *Metrics
	mu       sync.Mutex
	log      zerolog.Logger
}

// NewStore creates a snapshot history over a key-value store
func NewStore(kv kvstore.Store, codec kvstore.Codec, cfg StoreConfig, log zerolog.Logger) *Store {
	if cfg.Capacity < 1 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "stockroom"
	}
	if codec == nil {
		codec = kvstore.JSONCodec{}
	}

	return &Store{
		kv:       kv,
		codec:    codec,
		key:      kvstore.Key(cfg.Namespace, historyKey),
		capacity: cfg.Capacity,
		now:      time.Now,
		metrics:  NewMetrics(nil),
		log:      log.With().Str("repository", "snapshots").Logger(),
	}
}

// SetClock overrides the clock used for snapshot timestamps and ids
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetMetrics replaces the default unregistered collectors
func (s *Store) SetMetrics(m *Metrics) {
	s.metrics = m
}

// Capacity returns the maximum number of snapshots kept
func (s *Store) Capacity() int {
	return s.capacity
}

// Create validates the input and builds a new snapshot stamped with the current time.
// The snapshot is not saved; call Save.
func (s *Store) Create(
	assignmentData AssignmentData,
	settings Settings,
	agents []Agent,
	extraMetadata map[string]string,
) (Snapshot, error) {
	return buildSnapshot(s.now(), assignmentData, settings, agents, extraMetadata)
}

// Save prepends the snapshot and evicts from the tail beyond capacity.
// A snapshot whose id is already in the history is rejected.
func (s *Store) Save(snapshot Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		s.log.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to load history before save")
		return false
	}

	for _, existing := range history {
		if existing.ID == snapshot.ID {
			s.log.Warn().Str("snapshot_id", snapshot.ID).Msg("Snapshot already recorded, not saving again")
			return false
		}
	}

	snapshot = snapshot.Clone()
	snapshot.normalize()

	history = append([]Snapshot{snapshot}, history...)
	evicted := 0
	if len(history) > s.capacity {
		evicted = len(history) - s.capacity
		history = history[:s.capacity]
	}

	if err := s.persist(history); err != nil {
		s.log.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to save snapshot")
		return false
	}

	s.metrics.saved.Inc()
	s.metrics.evicted.Add(float64(evicted))
	s.metrics.historySize.Set(float64(len(history)))

	s.log.Debug().
		Str("snapshot_id", snapshot.ID).
		Int("history_size", len(history)).
		Int("evicted", evicted).
		Msg("Snapshot saved")

	return true
}

// List returns the history, most recent first
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load history")
		return []Snapshot{}
	}
	return history
}

// Get returns the snapshot with the given id
func (s *Store) Get(id string) (Snapshot, bool) {
	for _, snapshot := range s.List() {
		if snapshot.ID == id {
			return snapshot, true
		}
	}
	return Snapshot{}, false
}

// Delete removes the snapshot with the given id.
// Returns false when the id is unknown or the history could not be written.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		s.log.Error().Err(err).Str("snapshot_id", id).Msg("Failed to load history before delete")
		return false
	}

	kept := history[:0]
	for _, snapshot := range history {
		if snapshot.ID != id {
			kept = append(kept, snapshot)
		}
	}
	if len(kept) == len(history) {
		return false
	}

	if err := s.persist(kept); err != nil {
		s.log.Error().Err(err).Str("snapshot_id", id).Msg("Failed to delete snapshot")
		return false
	}

	s.metrics.historySize.Set(float64(len(kept)))
	return true
}

// Clear drops the whole history
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(s.key); err != nil {
		s.metrics.persistFailures.Inc()
		s.log.Error().Err(err).Msg("Failed to clear history")
		return false
	}

	s.metrics.historySize.Set(0)
	s.log.Info().Msg("Snapshot history cleared")
	return true
}

func (s *Store) load() ([]Snapshot, error) {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.metrics.persistFailures.Inc()
		return nil, err
	}
	if !ok {
		return []Snapshot{}, nil
	}

	var history []Snapshot
	if err := s.codec.Unmarshal(data, &history); err != nil {
		s.metrics.persistFailures.Inc()
		return nil, err
	}
	for i := range history {
		history[i].normalize()
	}
	if history == nil {
		history = []Snapshot{}
	}
	return history, nil
}

func (s *Store) persist(history []Snapshot) error {
	data, err := s.codec.Marshal(history)
	if err != nil {
		s.metrics.persistFailures.Inc()
		return err
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.metrics.persistFailures.Inc()
		return err
	}
	return nil
}
