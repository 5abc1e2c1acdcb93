package analysis

import (
	"testing"
	"time"

	"github.com/mtreilly/MemoryWatch/storage"
)

func swapAt(minute int, used, total, freePct float64) storage.SwapSample {
	return storage.SwapSample{
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
		UsedMB:    used,
		TotalMB:   total,
		FreePct:   freePct,
	}
}

func TestSummarizeSwap(t *testing.T) {
	got := SummarizeSwap([]storage.SwapSample{
		swapAt(0, 200, 2048, 90),
		swapAt(10, 400, 2048, 60),
		swapAt(20, 300, 2048, 75),
	})
	if got == nil {
		t.Fatalf("expected a summary")
	}
	if got.AvgMB != 300 {
		t.Fatalf("avg_swap_mb = %v, want 300", got.AvgMB)
	}
	if got.MaxMB != 400 {
		t.Fatalf("max_swap_mb = %v, want 400", got.MaxMB)
	}
	if got.MinFreePct != 60 {
		t.Fatalf("min_free_pct = %v, want 60", got.MinFreePct)
	}
	if got.EstimatedWritesMB != 900 {
		t.Fatalf("estimated_ssd_writes_mb = %v, want 900", got.EstimatedWritesMB)
	}
	if got.Samples != 3 {
		t.Fatalf("samples = %d, want 3", got.Samples)
	}
}

func TestSummarizeSwapAvgWithinBounds(t *testing.T) {
	got := SummarizeSwap([]storage.SwapSample{
		swapAt(0, 123.5, 1024, 50),
		swapAt(5, 821.25, 1024, 20),
	})
	if got.AvgMB < 123.5 || got.AvgMB > 821.25 {
		t.Fatalf("avg %v outside input bounds", got.AvgMB)
	}
}

func TestSummarizeSwapEmpty(t *testing.T) {
	if got := SummarizeSwap(nil); got != nil {
		t.Fatalf("expected nil summary for no snapshots, got %+v", got)
	}
}
