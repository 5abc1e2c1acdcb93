package storage

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mtreilly/MemoryWatch/config"
)

// TimeFormat is the timestamp layout used by the flat telemetry logs
// (local time). The structured store uses epoch seconds instead.
const TimeFormat = "2006-01-02 15:04:05"

// Source is a time-windowed, read-only view over the sampler's records.
//
// Samples and snapshots come back ascending by timestamp; alerts come back
// descending (most recent first) and capped by limit. Queries over different
// record kinds are independent: when the backend is a set of flat files each
// call re-reads its own file, so callers must not assume cross-kind
// consistency. A missing file or table yields an empty result, not an error.
type Source interface {
	ProcessSamples(ctx context.Context, since time.Time) ([]ProcessSample, error)
	SwapSamples(ctx context.Context, since time.Time) ([]SwapSample, error)
	Alerts(ctx context.Context, since time.Time, types []AlertType, limit int) ([]Alert, error)
	Close() error
}

// Open selects a backend for one report run: the structured sqlite store if
// it is present and opens cleanly, otherwise the flat files, each record
// kind degrading independently. The caller owns Close.
func Open(cfg *config.Config, log *zap.Logger) Source {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		src, err := OpenSQLite(cfg.DBPath, log)
		if err == nil {
			return src
		}
		log.Warn("structured store unavailable, falling back to flat files",
			zap.String("path", cfg.DBPath), zap.Error(err))
	}
	return NewFlatFiles(cfg, log)
}
