package analysis

import (
	"testing"
	"time"

	"github.com/mtreilly/MemoryWatch/storage"
)

var t0 = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func sample(minute int, pid, cmd string, rss float64) storage.ProcessSample {
	return storage.ProcessSample{
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
		PID:       pid,
		Command:   cmd,
		RSSMB:     rss,
	}
}

func TestRankGrowthBasic(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "100", "leaky", 50),
		sample(10, "100", "leaky", 80),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	g := got[0]
	if g.PID != "100" || g.Command != "leaky" {
		t.Fatalf("wrong identity: %+v", g)
	}
	if g.GrowthMB != 30 {
		t.Fatalf("growth_mb = %v, want 30", g.GrowthMB)
	}
	if g.GrowthPct != 60 {
		t.Fatalf("growth_pct = %v, want 60", g.GrowthPct)
	}
	if g.FirstRSS != 50 || g.LastRSS != 80 || g.MaxRSS != 80 || g.Samples != 2 {
		t.Fatalf("wrong aggregates: %+v", g)
	}
}

func TestRankGrowthExcludesSingleSample(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "1", "a", 10),
		sample(0, "2", "b", 10),
		sample(5, "2", "b", 20),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].PID != "2" {
		t.Fatalf("single-sample pid not excluded: %+v", got)
	}
}

func TestRankGrowthZeroFirstSample(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "7", "z", 0),
		sample(5, "7", "z", 40),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].GrowthPct != 0 {
		t.Fatalf("growth_pct = %v, want 0 for zero first sample", got[0].GrowthPct)
	}
	if got[0].GrowthMB != 40 {
		t.Fatalf("growth_mb = %v, want 40", got[0].GrowthMB)
	}
}

func TestRankGrowthSortedDescending(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "a", "small", 100),
		sample(10, "a", "small", 110),
		sample(0, "b", "big", 100),
		sample(10, "b", "big", 300),
		sample(0, "c", "shrinking", 100),
		sample(10, "c", "shrinking", 50),
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].GrowthMB < got[i].GrowthMB {
			t.Fatalf("not sorted descending at %d: %v < %v", i, got[i-1].GrowthMB, got[i].GrowthMB)
		}
	}
	if got[0].PID != "b" || got[2].PID != "c" {
		t.Fatalf("wrong order: %q %q %q", got[0].PID, got[1].PID, got[2].PID)
	}
}

func TestRankGrowthTiesKeepInputOrder(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "x", "first-seen", 10),
		sample(10, "x", "first-seen", 20),
		sample(0, "y", "second-seen", 30),
		sample(10, "y", "second-seen", 40),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].PID != "x" || got[1].PID != "y" {
		t.Fatalf("tied growth should keep first-appearance order: %q, %q", got[0].PID, got[1].PID)
	}
}

func TestRankGrowthNameFromChronologicallyLastSample(t *testing.T) {
	// Out-of-order input: the newest sample is not the last one iterated.
	got := RankGrowth([]storage.ProcessSample{
		sample(20, "9", "renamed", 30),
		sample(0, "9", "original", 10),
		sample(10, "9", "middle", 20),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Command != "renamed" {
		t.Fatalf("command = %q, want name from chronologically last sample", got[0].Command)
	}
	if got[0].FirstRSS != 10 || got[0].LastRSS != 30 {
		t.Fatalf("endpoints not chronological: %+v", got[0])
	}
}

func TestRankGrowthMaxTracksPeakNotEndpoint(t *testing.T) {
	got := RankGrowth([]storage.ProcessSample{
		sample(0, "5", "spiky", 10),
		sample(5, "5", "spiky", 500),
		sample(10, "5", "spiky", 20),
	})
	if got[0].MaxRSS != 500 {
		t.Fatalf("max_rss = %v, want 500", got[0].MaxRSS)
	}
	if got[0].GrowthMB != 10 {
		t.Fatalf("growth_mb = %v, want 10", got[0].GrowthMB)
	}
}

func TestRankGrowthEmpty(t *testing.T) {
	if got := RankGrowth(nil); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}
