package extract

import (
	"sort"
	"sync"
	"time"
)

// Stage names an extraction step whose latency is tracked.
type Stage string

const (
	StageText   Stage = "text"
	StageTables Stage = "tables"
	StageImages Stage = "images"
	StageRender Stage = "render"
	StageOCR    Stage = "ocr"
)

type sample struct {
	at time.Time
	ms int64
}

// StatsSnapshot aggregates the samples of one stage.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats keeps a rolling window of stage durations. A nil *Stats discards
// everything.
type Stats struct {
	mu      sync.Mutex
	maxAge  time.Duration
	samples map[Stage][]sample
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		maxAge:  maxAge,
		samples: make(map[Stage][]sample),
	}
}

// Record adds one duration for stage.
func (s *Stats) Record(stage Stage, d time.Duration) {
	if s == nil {
		return
	}
	ms := max(d.Milliseconds(), 0)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[stage] = append(prune(s.samples[stage], now.Add(-s.maxAge)), sample{at: now, ms: ms})
}

// Since records the time elapsed since start. Handy with defer.
func (s *Stats) Since(stage Stage, start time.Time) {
	s.Record(stage, time.Since(start))
}

// Snapshot returns aggregates for every stage that has live samples.
func (s *Stats) Snapshot() map[Stage]StatsSnapshot {
	out := make(map[Stage]StatsSnapshot)
	if s == nil {
		return out
	}
	cutoff := time.Now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	for stage, samples := range s.samples {
		samples = prune(samples, cutoff)
		s.samples[stage] = samples
		if len(samples) > 0 {
			out[stage] = summarize(samples)
		}
	}
	return out
}

// prune drops samples older than cutoff, reusing the backing array.
func prune(samples []sample, cutoff time.Time) []sample {
	kept := samples[:0]
	for _, sm := range samples {
		if !sm.at.Before(cutoff) {
			kept = append(kept, sm)
		}
	}
	return kept
}

func summarize(samples []sample) StatsSnapshot {
	values := make([]int64, len(samples))
	var sum int64
	for i, sm := range samples {
		values[i] = sm.ms
		sum += sm.ms
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
