package analysis

import (
	"sort"

	"github.com/mtreilly/MemoryWatch/storage"
)

// ProcessGrowth is the growth ranking entry for one process in the window.
type ProcessGrowth struct {
	PID       string
	Command   string
	FirstRSS  float64
	LastRSS   float64
	MaxRSS    float64
	GrowthMB  float64
	GrowthPct float64
	Samples   int
}

// RankGrowth groups samples by pid and ranks processes by resident-memory
// growth between their chronologically first and last sample. Processes with
// fewer than two samples in the window are excluded: growth over a single
// point is undefined. GrowthPct is 0 when the first sample is 0, never
// NaN or Inf. The display name comes from the chronologically last sample.
//
// The result is sorted descending by GrowthMB; ties keep the order in which
// a pid first appeared in the input.
func RankGrowth(samples []storage.ProcessSample) []ProcessGrowth {
	type group struct {
		first  storage.ProcessSample
		last   storage.ProcessSample
		maxRSS float64
		count  int
	}

	byPID := make(map[string]*group)
	var order []string

	for _, s := range samples {
		g, ok := byPID[s.PID]
		if !ok {
			byPID[s.PID] = &group{first: s, last: s, maxRSS: s.RSSMB, count: 1}
			order = append(order, s.PID)
			continue
		}
		g.count++
		if s.Timestamp.Before(g.first.Timestamp) {
			g.first = s
		}
		if !s.Timestamp.Before(g.last.Timestamp) {
			g.last = s
		}
		if s.RSSMB > g.maxRSS {
			g.maxRSS = s.RSSMB
		}
	}

	var out []ProcessGrowth
	for _, pid := range order {
		g := byPID[pid]
		if g.count < 2 {
			continue
		}
		growth := g.last.RSSMB - g.first.RSSMB
		pct := 0.0
		if g.first.RSSMB > 0 {
			pct = growth / g.first.RSSMB * 100
		}
		out = append(out, ProcessGrowth{
			PID:       pid,
			Command:   g.last.Command,
			FirstRSS:  g.first.RSSMB,
			LastRSS:   g.last.RSSMB,
			MaxRSS:    g.maxRSS,
			GrowthMB:  growth,
			GrowthPct: pct,
			Samples:   g.count,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].GrowthMB > out[j].GrowthMB })
	return out
}
