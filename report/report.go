package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtreilly/MemoryWatch/analysis"
	"github.com/mtreilly/MemoryWatch/config"
	"github.com/mtreilly/MemoryWatch/storage"
)

const (
	ruleWidth = 80

	// Per-section display caps; the underlying queries are capped separately.
	trendRows    = 10
	leakRows     = 20
	hintRows     = 15
	systemRows   = 20
	artifactRows = 20

	// A maximum above this triggers the inline high-swap warning block.
	highSwapWarnMB = 1024

	timeLayout = "2006-01-02 15:04:05"
)

// Generate produces the full analysis report for the trailing window of the
// given number of hours. Every section renders its header and a placeholder
// when its data source is empty or degraded; a broken source never drops a
// section or aborts the report. The one record-source session is closed on
// every exit path.
func Generate(ctx context.Context, cfg *config.Config, log *zap.Logger, hours int) string {
	now := time.Now()
	var b strings.Builder

	rule := strings.Repeat("=", ruleWidth)
	dash := strings.Repeat("-", ruleWidth)
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(rule)
	line("Memory Watch Analysis Report - Last %d hours", hours)
	line("Generated: %s", now.Format(timeLayout))
	line(rule)
	line("")

	src := storage.Open(cfg, log)
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("closing record source", zap.Error(err))
		}
	}()

	since := now.Add(-time.Duration(hours) * time.Hour)

	// Memory trends
	line("## Top Memory Growth Processes")
	line(dash)
	samples, err := src.ProcessSamples(ctx, since)
	if err != nil {
		log.Warn("reading process samples", zap.Error(err))
	}
	trends := analysis.RankGrowth(samples)
	if len(trends) > 0 {
		for i, p := range trends {
			if i == trendRows {
				break
			}
			line("%2d. PID %6s | %-30s | Growth: %7.1fMB (%6.1f%%) | Max: %7.1fMB | Samples: %d",
				i+1, p.PID, p.Command, p.GrowthMB, p.GrowthPct, p.MaxRSS, p.Samples)
		}
	} else {
		line("No data available")
	}
	line("")

	// Swap analysis
	line("## Swap Usage Analysis")
	line(dash)
	swaps, err := src.SwapSamples(ctx, since)
	if err != nil {
		log.Warn("reading swap snapshots", zap.Error(err))
	}
	if summary := analysis.SummarizeSwap(swaps); summary != nil {
		line("Average Swap Used:        %.1f MB", summary.AvgMB)
		line("Maximum Swap Used:        %.1f MB", summary.MaxMB)
		line("Minimum Free:             %.1f%%", summary.MinFreePct)
		line("Est. SSD Writes:          %.1f MB", summary.EstimatedWritesMB)
		line("Samples:                  %d", summary.Samples)

		if summary.MaxMB > highSwapWarnMB {
			line("")
			line("⚠️  WARNING: High swap usage detected (>1GB)")
			line("   This can cause SSD wear and system slowdown")
		}
	} else {
		line("No data available")
	}
	line("")

	// Memory leaks
	line("## Potential Memory Leaks")
	line(dash)
	leaks, err := analysis.MemoryLeaks(ctx, src, now)
	if err != nil {
		log.Warn("reading leak alerts", zap.Error(err))
	}
	if len(leaks) > 0 {
		line("Found %d potential leak(s):", len(leaks))
		start := 0
		if len(leaks) > leakRows {
			start = len(leaks) - leakRows
		}
		for _, l := range leaks[start:] {
			line("  %s", formatLeak(l))
		}
	} else {
		line("✓ No memory leaks detected")
	}
	line("")

	// Diagnostic hints
	line("## Diagnostic Suggestions")
	line(dash)
	hints, err := analysis.DiagnosticHints(ctx, src, now)
	if err != nil {
		log.Warn("reading diagnostic hints", zap.Error(err))
	}
	if len(hints) > 0 {
		for i, h := range hints {
			if i == hintRows {
				break
			}
			line("  %s", formatHint(h))
		}
	} else {
		line("No runtime-specific diagnostic hints recorded")
	}
	line("")

	// Notification preferences
	prefs := LoadPreferences(cfg.PreferencesPath)
	line("## Notification Preferences")
	line(dash)
	if prefs != nil {
		if q := prefs.QuietHours; q != nil {
			line("  Quiet hours: %s–%s %s",
				minutesToClock(q.StartMinutes), minutesToClock(q.EndMinutes), q.TimezoneName())
		} else {
			line("  Quiet hours: disabled")
		}
		policy := "hold"
		if prefs.AllowInterruptionsDuringQuietHours {
			policy = "deliver"
		}
		line("  Quiet-hour policy: %s", policy)
		line("  Leak alerts: %s", onOff(prefs.LeakAlertsEnabled()))
		line("  Pressure alerts: %s", onOff(prefs.PressureAlertsEnabled()))
	} else {
		line("  No preference file found (defaults in effect)")
	}
	line("")

	// System alerts
	sysAlerts, err := analysis.SystemAlerts(ctx, src, now)
	if err != nil {
		log.Warn("reading system alerts", zap.Error(err))
	}
	line("## System Alerts")
	line(dash)
	if len(sysAlerts) > 0 {
		for i, a := range sysAlerts {
			if i == systemRows {
				break
			}
			line("  %s", formatSystemAlert(a))
		}
	} else {
		line("No high-pressure or swap alerts recorded")
	}
	line("")

	// Diagnostic artifacts
	artifacts, err := analysis.VerifyArtifacts(ctx, src, now)
	if err != nil {
		log.Warn("verifying artifacts", zap.Error(err))
	}
	line("## Diagnostic Artifacts")
	line(dash)
	if len(artifacts) > 0 {
		for i, a := range artifacts {
			if i == artifactRows {
				break
			}
			status := "✅"
			if !a.Exists {
				status = "⚠️ missing"
			}
			line("  %s %s: %s", status, a.Title, a.Path)
		}
	} else {
		line("No artifacts persisted yet.")
	}
	line("")

	line(rule)
	return strings.TrimSuffix(b.String(), "\n")
}

// Save writes the report next to the telemetry logs, named with the
// generation time, and returns the path.
func Save(cfg *config.Config, text string, now time.Time) (string, error) {
	name := fmt.Sprintf("report_%s.txt", now.Format("20060102_150405"))
	path := filepath.Join(cfg.LogDir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func formatLeak(l analysis.LeakAlert) string {
	if l.Raw != "" {
		return l.Raw
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s", l.Timestamp.Format(timeLayout), l.Type, l.Message)
	if l.PID != "" {
		fmt.Fprintf(&sb, " PID=%s", l.PID)
	}
	if l.ProcessName != "" {
		fmt.Fprintf(&sb, " process=%s", l.ProcessName)
	}
	return sb.String()
}

func formatHint(h analysis.Hint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", h.Timestamp.Format(timeLayout), h.Message)
	if h.PID != "" {
		fmt.Fprintf(&sb, " PID=%s", h.PID)
	}
	if h.ProcessName != "" {
		fmt.Fprintf(&sb, " process=%s", h.ProcessName)
	}
	if h.ArtifactPath != "" {
		fmt.Fprintf(&sb, " artifact=%s", h.ArtifactPath)
	}
	if h.ArtifactMissing {
		sb.WriteString(" (missing)")
	}
	return sb.String()
}

func formatSystemAlert(a analysis.SystemAlert) string {
	s := fmt.Sprintf("[%s] %s: %s", a.Timestamp.Format(timeLayout), a.Type, a.Message)
	var extras []string
	if a.SwapUsed != "" {
		extras = append(extras, "swap="+a.SwapUsed+"MB")
	}
	if a.SwapTotal != "" {
		extras = append(extras, "total="+a.SwapTotal+"MB")
	}
	if a.Pressure != "" {
		extras = append(extras, "pressure="+a.Pressure)
	}
	if len(extras) > 0 {
		s += " (" + strings.Join(extras, ", ") + ")"
	}
	return s
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
