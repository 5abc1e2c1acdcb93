package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtreilly/MemoryWatch/config"
)

// leakMarker tags leak lines in the legacy free-text log.
const leakMarker = "POTENTIAL LEAK"

// FlatFileSource reads the delimited logs written before the structured
// store existed. Each record kind lives in its own file and degrades
// independently: a missing file yields an empty result, a malformed row is
// skipped. Hints, system alerts and artifact metadata were never written to
// flat files, so those queries return nothing here.
type FlatFileSource struct {
	memoryLog string
	swapLog   string
	leakLog   string
	log       *zap.Logger
}

// NewFlatFiles builds the fallback source from the configured log directory.
func NewFlatFiles(cfg *config.Config, log *zap.Logger) *FlatFileSource {
	return &FlatFileSource{
		memoryLog: cfg.MemoryLogPath(),
		swapLog:   cfg.SwapLogPath(),
		leakLog:   cfg.LeakLogPath(),
		log:       log,
	}
}

// ProcessSamples scans memory_log.csv and returns in-window samples sorted
// ascending by timestamp. File rows are not guaranteed to be in time order.
func (f *FlatFileSource) ProcessSamples(ctx context.Context, since time.Time) ([]ProcessSample, error) {
	var out []ProcessSample
	f.forEachRow(f.memoryLog, func(row map[string]string) {
		ts, err := time.ParseInLocation(TimeFormat, row["timestamp"], time.Local)
		if err != nil || ts.Before(since) {
			return
		}
		rss, err := strconv.ParseFloat(row["rss_mb"], 64)
		if err != nil || row["pid"] == "" {
			return
		}
		out = append(out, ProcessSample{
			Timestamp: ts,
			PID:       row["pid"],
			Command:   row["command"],
			RSSMB:     rss,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// SwapSamples scans swap_history.csv, ascending by timestamp.
func (f *FlatFileSource) SwapSamples(ctx context.Context, since time.Time) ([]SwapSample, error) {
	var out []SwapSample
	f.forEachRow(f.swapLog, func(row map[string]string) {
		ts, err := time.ParseInLocation(TimeFormat, row["timestamp"], time.Local)
		if err != nil || ts.Before(since) {
			return
		}
		used, err1 := strconv.ParseFloat(row["swap_used_mb"], 64)
		total, err2 := strconv.ParseFloat(row["swap_total_mb"], 64)
		freePct, err3 := strconv.ParseFloat(row["free_pct"], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return
		}
		out = append(out, SwapSample{Timestamp: ts, UsedMB: used, TotalMB: total, FreePct: freePct})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Alerts serves leak-type queries from the legacy leak log; lines come back
// verbatim in Alert.Raw, in file order. The legacy log has no timestamps to
// window on; it is append-only, so when more than limit lines match, the
// newest matches at the tail of the file are the ones kept. Other alert
// kinds have no flat-file form.
func (f *FlatFileSource) Alerts(ctx context.Context, since time.Time, types []AlertType, limit int) ([]Alert, error) {
	if !containsLeakType(types) {
		return nil, nil
	}

	file, err := os.Open(f.leakLog)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("cannot open legacy leak log", zap.String("path", f.leakLog), zap.Error(err))
		}
		return nil, nil
	}
	defer file.Close()

	var out []Alert
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, leakMarker) {
			continue
		}
		out = append(out, Alert{Type: AlertMemoryLeak, Raw: line})
	}
	if err := scanner.Err(); err != nil {
		f.log.Warn("reading legacy leak log", zap.String("path", f.leakLog), zap.Error(err))
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Close is a no-op: files are opened and closed per query.
func (f *FlatFileSource) Close() error { return nil }

func containsLeakType(types []AlertType) bool {
	for _, t := range types {
		if t == AlertMemoryLeak || t == AlertRapidGrowth {
			return true
		}
	}
	return false
}

// forEachRow streams a header-keyed CSV file, invoking fn with each row as a
// column-name map. Short rows and a missing file are tolerated; fn decides
// whether a row parses.
func (f *FlatFileSource) forEachRow(path string, fn func(row map[string]string)) {
	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("cannot open telemetry log", zap.String("path", path), zap.Error(err))
		}
		return
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			f.log.Warn("cannot read csv header", zap.String("path", path), zap.Error(err))
		}
		return
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			f.log.Debug("skipping malformed csv row", zap.String("path", path), zap.Error(err))
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		fn(row)
	}
}
