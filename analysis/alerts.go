package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mtreilly/MemoryWatch/storage"
)

// Query windows and caps for the alert table. The caps bound report size and
// favour recency: "most recent N", not "most severe N".
const (
	leakWindow   = 168 * time.Hour
	hintWindow   = 48 * time.Hour
	systemWindow = 72 * time.Hour

	leakCap     = 200
	hintCap     = 50
	systemCap   = 50
	artifactCap = 200
)

// LeakAlert is one leak or rapid-growth alert. Raw carries a legacy leak-log
// line verbatim; when set, the other fields are empty.
type LeakAlert struct {
	Raw         string
	Timestamp   time.Time
	Type        storage.AlertType
	Message     string
	PID         string
	ProcessName string
}

// MemoryLeaks returns the most recent leak and rapid-growth alerts,
// descending by time. A missing alert store yields an empty list.
func MemoryLeaks(ctx context.Context, src storage.Source, now time.Time) ([]LeakAlert, error) {
	alerts, err := src.Alerts(ctx, now.Add(-leakWindow), storage.LeakTypes, leakCap)
	if err != nil {
		return nil, err
	}
	out := make([]LeakAlert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, LeakAlert{
			Raw:         a.Raw,
			Timestamp:   a.Timestamp,
			Type:        a.Type,
			Message:     a.Message,
			PID:         a.PID,
			ProcessName: a.ProcessName,
		})
	}
	return out, nil
}

// Hint is one diagnostic-hint alert. ArtifactMissing reflects what the
// metadata said when the alert fired, not the current filesystem state.
type Hint struct {
	Timestamp       time.Time
	Message         string
	PID             string
	ProcessName     string
	ArtifactPath    string
	ArtifactMissing bool
}

// DiagnosticHints returns recent diagnostic-hint alerts with their artifact
// metadata decoded. Malformed metadata is ignored: the hint is still
// returned without the artifact fields.
func DiagnosticHints(ctx context.Context, src storage.Source, now time.Time) ([]Hint, error) {
	alerts, err := src.Alerts(ctx, now.Add(-hintWindow), storage.HintTypes, hintCap)
	if err != nil {
		return nil, err
	}
	out := make([]Hint, 0, len(alerts))
	for _, a := range alerts {
		meta := decodeMetadata(a.Metadata)
		exists, _ := meta["artifact_exists"].(string)
		path, _ := meta["artifact_path"].(string)
		out = append(out, Hint{
			Timestamp:       a.Timestamp,
			Message:         a.Message,
			PID:             a.PID,
			ProcessName:     a.ProcessName,
			ArtifactPath:    path,
			ArtifactMissing: exists == "false",
		})
	}
	return out, nil
}

// SystemAlert is one pressure, high-swap or datastore alert. The metadata
// values are kept as their literal JSON text; "" means absent or zero.
type SystemAlert struct {
	Timestamp time.Time
	Type      storage.AlertType
	Message   string
	SwapUsed  string
	SwapTotal string
	Pressure  string
}

// SystemAlerts returns recent system-level alerts with per-type metadata
// decoded: high-swap alerts surface swap_used_mb/swap_total_mb when nonzero,
// any type surfaces a pressure field. Unparseable metadata is treated as
// absent.
func SystemAlerts(ctx context.Context, src storage.Source, now time.Time) ([]SystemAlert, error) {
	alerts, err := src.Alerts(ctx, now.Add(-systemWindow), storage.SystemTypes, systemCap)
	if err != nil {
		return nil, err
	}
	out := make([]SystemAlert, 0, len(alerts))
	for _, a := range alerts {
		meta := decodeMetadata(a.Metadata)
		sa := SystemAlert{
			Timestamp: a.Timestamp,
			Type:      a.Type,
			Message:   a.Message,
			Pressure:  truthyText(meta["pressure"]),
		}
		if a.Type == storage.AlertHighSwap {
			sa.SwapUsed = truthyText(meta["swap_used_mb"])
			sa.SwapTotal = truthyText(meta["swap_total_mb"])
		}
		out = append(out, sa)
	}
	return out, nil
}

// decodeMetadata parses an alert's raw metadata blob into a key-value map.
// Numbers keep their literal text via json.Number. Any failure yields an
// empty map so the alert still renders, just without its metadata suffix.
func decodeMetadata(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil
	}
	return m
}

// truthyText renders a metadata value for display, or "" when the value is
// absent, empty, false, or numerically zero.
func truthyText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
