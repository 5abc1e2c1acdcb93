package storage

import "time"

// AlertType classifies an alert row written by the sampler.
type AlertType string

const (
	AlertMemoryLeak       AlertType = "MEMORY_LEAK"
	AlertRapidGrowth      AlertType = "RAPID_GROWTH"
	AlertDiagnosticHint   AlertType = "DIAGNOSTIC_HINT"
	AlertSystemPressure   AlertType = "SYSTEM_PRESSURE"
	AlertHighSwap         AlertType = "HIGH_SWAP"
	AlertDatastoreWarning AlertType = "DATASTORE_WARNING"
)

// Alert type groups as queried by the report sections.
var (
	LeakTypes   = []AlertType{AlertMemoryLeak, AlertRapidGrowth}
	HintTypes   = []AlertType{AlertDiagnosticHint}
	SystemTypes = []AlertType{AlertSystemPressure, AlertHighSwap, AlertDatastoreWarning}
)

// ProcessSample is one resident-memory observation for a single process.
// The pid is kept as text; pids are reused across restarts and the flat
// logs carry them as strings anyway.
type ProcessSample struct {
	Timestamp time.Time
	PID       string
	Command   string
	RSSMB     float64
}

// SwapSample is one system-wide swap observation.
type SwapSample struct {
	Timestamp time.Time
	UsedMB    float64
	TotalMB   float64
	FreePct   float64
}

// Alert is one append-only alert row. Metadata is the raw JSON payload as
// stored ("" when absent); decoding is the consumer's business since the
// schema varies by type. Raw is set only for lines from the legacy leak log
// and is rendered verbatim.
type Alert struct {
	Timestamp   time.Time
	Type        AlertType
	Message     string
	PID         string
	ProcessName string
	Metadata    string
	Raw         string
}
