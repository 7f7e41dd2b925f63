package extract

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(StageOCR, time.Duration(ms)*time.Millisecond)
	}

	snap, ok := stats.Snapshot()[StageOCR]
	if !ok {
		t.Fatal("expected ocr stage in snapshot")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsStagesAreIndependent(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(StageText, 10*time.Millisecond)
	stats.Record(StageTables, 20*time.Millisecond)
	stats.Record(StageTables, 40*time.Millisecond)

	snap := stats.Snapshot()
	if snap[StageText].Count != 1 {
		t.Errorf("expected 1 text sample, got %d", snap[StageText].Count)
	}
	if snap[StageTables].Count != 2 {
		t.Errorf("expected 2 table samples, got %d", snap[StageTables].Count)
	}
	if _, ok := snap[StageImages]; ok {
		t.Error("expected no images entry without samples")
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(StageRender, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := stats.Snapshot()[StageRender]; ok {
		t.Fatal("expected render samples to be pruned")
	}

	stats.Record(StageRender, 200*time.Millisecond)
	snap := stats.Snapshot()[StageRender]
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestStatsClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(StageText, -time.Second)
	snap := stats.Snapshot()[StageText]
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsNilIsSafe(t *testing.T) {
	var stats *Stats
	stats.Record(StageText, time.Second)
	if len(stats.Snapshot()) != 0 {
		t.Error("expected empty snapshot from nil stats")
	}
}
