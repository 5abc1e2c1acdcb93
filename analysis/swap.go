package analysis

import "github.com/mtreilly/MemoryWatch/storage"

// SwapSummary aggregates swap usage over the window. EstimatedWritesMB is
// the cumulative sum of sampled swap usage, a write-volume proxy that
// overestimates real wear; it is not a block-level measurement.
type SwapSummary struct {
	AvgMB             float64
	MaxMB             float64
	MinFreePct        float64
	EstimatedWritesMB float64
	Samples           int
}

// SummarizeSwap computes summary statistics over in-window snapshots.
// It returns nil when no snapshots fall in the window; callers must render
// "no data" rather than zero statistics, since zero is a real value.
func SummarizeSwap(samples []storage.SwapSample) *SwapSummary {
	if len(samples) == 0 {
		return nil
	}

	sum := 0.0
	s := &SwapSummary{
		MaxMB:      samples[0].UsedMB,
		MinFreePct: samples[0].FreePct,
		Samples:    len(samples),
	}
	for _, sample := range samples {
		sum += sample.UsedMB
		if sample.UsedMB > s.MaxMB {
			s.MaxMB = sample.UsedMB
		}
		if sample.FreePct < s.MinFreePct {
			s.MinFreePct = sample.FreePct
		}
	}
	s.AvgMB = sum / float64(len(samples))
	s.EstimatedWritesMB = sum
	return s
}
