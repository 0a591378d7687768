package comparison

import (
	"fmt"
	"time"

	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// SnapshotReader looks snapshots up by id
type SnapshotReader interface {
	Get(id string) (snapshots.Snapshot, bool)
}

// ComparisonResult is the full comparison of two snapshots.
// Details holds one diff per compared dimension.
type ComparisonResult struct {
	Snapshot1ID string                      `json:"snapshot1_id"`
	Snapshot2ID string                      `json:"snapshot2_id"`
	Dimension   Dimension                   `json:"dimension"`
	Summary     Summary                     `json:"summary"`
	Details     map[Dimension]DimensionDiff `json:"details"`
	Metrics     Metrics                     `json:"metrics"`
	Insights    []Insight                   `json:"insights"`
	Timestamp   time.Time                   `json:"timestamp"`
}

// Clone returns a deep copy of the result
func (r *ComparisonResult) Clone() *ComparisonResult {
	if r == nil {
		return nil
	}
	out := *r

	if r.Details != nil {
		out.Details = make(map[Dimension]DimensionDiff, len(r.Details))
		for dim, diff := range r.Details {
			out.Details[dim] = diff.clone()
		}
	}
	if r.Insights != nil {
		out.Insights = make([]Insight, len(r.Insights))
		copy(out.Insights, r.Insights)
	}

	return &out
}

type serviceMetrics struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	duration    prometheus.Histogram
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	factory := promauto.With(reg)
	return &serviceMetrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_comparison_cache_hits_total",
			Help: "Comparisons served from the cache",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_comparison_cache_misses_total",
			Help: "Comparisons computed because no cached result existed",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockroom_comparison_duration_seconds",
			Help:    "Time spent computing a comparison",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock that stamps results and reports
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRegisterer registers the service collectors on reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(reg) }
}

// Service compares snapshots and memoizes the results
type Service struct {
	store   SnapshotReader
	cache   Cache
	now     func() time.Time
	metrics *serviceMetrics
	log     zerolog.Logger
}

// NewService creates a comparison service. A nil cache disables memoization.
func NewService(store SnapshotReader, cache Cache, log zerolog.Logger, opts ...Option) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	s := &Service{
		store: store,
		cache: cache,
		now:   time.Now,
		log:   log.With().Str("service", "comparison").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newServiceMetrics(nil)
	}
	return s
}

// Compare diffs s2 against s1 along dim. An empty dim compares along every dimension.
// Results are cached by (s1.ID, s2.ID, dim) until ClearCache. Every call
// returns its own copy, so callers may modify the result.
func (s *Service) Compare(s1, s2 snapshots.Snapshot, dim Dimension) (*ComparisonResult, error) {
	dim, err := ParseDimension(string(dim))
	if err != nil {
		return nil, err
	}

	key := CacheKey{Snapshot1ID: s1.ID, Snapshot2ID: s2.ID, Dimension: dim}
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.cacheHits.Inc()
		s.log.Debug().
			Str("snapshot1_id", s1.ID).
			Str("snapshot2_id", s2.ID).
			Str("dimension", string(dim)).
			Msg("Comparison served from cache")
		return cached.Clone(), nil
	}
	s.metrics.cacheMisses.Inc()

	start := time.Now()
	result := s.compute(s1, s2, dim)
	s.metrics.duration.Observe(time.Since(start).Seconds())

	s.cache.Set(key, result)

	s.log.Info().
		Str("snapshot1_id", s1.ID).
		Str("snapshot2_id", s2.ID).
		Str("dimension", string(dim)).
		Int("insights", len(result.Insights)).
		Dur("duration", time.Since(start)).
		Msg("Comparison computed")

	return result.Clone(), nil
}

// CompareByID looks both snapshots up in the history and compares them
func (s *Service) CompareByID(id1, id2 string, dim Dimension) (*ComparisonResult, error) {
	s1, s2, err := s.lookup(id1, id2)
	if err != nil {
		return nil, err
	}
	return s.Compare(s1, s2, dim)
}

// ClearCache drops every memoized result
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.log.Debug().Msg("Comparison cache cleared")
}

func (s *Service) lookup(id1, id2 string) (snapshots.Snapshot, snapshots.Snapshot, error) {
	if s.store == nil {
		return snapshots.Snapshot{}, snapshots.Snapshot{}, fmt.Errorf("%w: no snapshot history configured", ErrSnapshotNotFound)
	}
	s1, ok := s.store.Get(id1)
	if !ok {
		return snapshots.Snapshot{}, snapshots.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id1)
	}
	s2, ok := s.store.Get(id2)
	if !ok {
		return snapshots.Snapshot{}, snapshots.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id2)
	}
	return s1, s2, nil
}

func (s *Service) compute(s1, s2 snapshots.Snapshot, dim Dimension) *ComparisonResult {
	var details map[Dimension]DimensionDiff
	if dim == DimensionOverall {
		details = CompareOverall(s1, s2)
	} else {
		diff, _ := Diff(s1, s2, dim)
		details = map[Dimension]DimensionDiff{dim: diff}
	}

	summary := Summarize(s1, s2)
	metrics := CalculateMetrics(s1, s2)

	return &ComparisonResult{
		Snapshot1ID: s1.ID,
		Snapshot2ID: s2.ID,
		Dimension:   dim,
		Summary:     summary,
		Details:     details,
		Metrics:     metrics,
		Insights:    GenerateInsights(summary, metrics),
		Timestamp:   s.now().UTC(),
	}
}
