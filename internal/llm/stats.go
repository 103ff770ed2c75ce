package llm

import (
	"sort"
	"sync"
	"time"
)

// Stats tracks recent provider call latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	maxAge time.Duration

	times     []time.Time
	durations []int64
}

// Snapshot is a point-in-time aggregate of provider latency samples.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

// Record adds one latency sample in milliseconds.
func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	s.times = append(s.times, now)
	s.durations = append(s.durations, durationMs)
}

// Snapshot aggregates the samples still inside the window.
func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	if len(s.durations) == 0 {
		return Snapshot{}
	}

	values := make([]int64, len(s.durations))
	copy(values, s.durations)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	var sum int64
	for _, v := range values {
		sum += v
	}
	return Snapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
	}
}

func (s *Stats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := 0
	for i, ts := range s.times {
		if !ts.Before(cutoff) {
			s.times[keep] = ts
			s.durations[keep] = s.durations[i]
			keep++
		}
	}
	s.times = s.times[:keep]
	s.durations = s.durations[:keep]
}

// percentile interpolates linearly between the two nearest sorted samples.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	return float64(sorted[lower]) + (float64(sorted[upper])-float64(sorted[lower]))*weight
}
