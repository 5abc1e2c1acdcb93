package analysis

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mtreilly/MemoryWatch/storage"
)

// Artifact is a filesystem path referenced by a diagnostic hint, with its
// existence checked at report time rather than trusted from the alert.
type Artifact struct {
	Title  string
	Path   string
	Exists bool
}

// VerifyArtifacts reconstructs diagnostic artifacts from recent hint alerts:
// each artifact_path is user-expanded, made absolute, and stat'ed live.
// Identity is the (resolved path, existence) pair, so the same path recorded
// both missing and present yields two entries. Hints without a usable
// artifact_path are skipped. The result is sorted ascending by title, which
// defaults to the alert message.
func VerifyArtifacts(ctx context.Context, src storage.Source, now time.Time) ([]Artifact, error) {
	alerts, err := src.Alerts(ctx, now.Add(-hintWindow), storage.HintTypes, artifactCap)
	if err != nil {
		return nil, err
	}

	type identity struct {
		path   string
		exists bool
	}
	seen := make(map[identity]bool)

	var out []Artifact
	for _, a := range alerts {
		meta := decodeMetadata(a.Metadata)
		path, _ := meta["artifact_path"].(string)
		if path == "" {
			continue
		}

		resolved := expandPath(path)
		_, statErr := os.Stat(resolved)
		exists := statErr == nil

		id := identity{resolved, exists}
		if seen[id] {
			continue
		}
		seen[id] = true

		title, _ := meta["title"].(string)
		if title == "" {
			title = a.Message
		}
		out = append(out, Artifact{Title: title, Path: resolved, Exists: exists})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// expandPath resolves a leading ~ or ~user against the matching home
// directory and makes the path absolute. On resolution failure, including an
// unknown user, the path is returned as given.
func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	} else if strings.HasPrefix(p, "~") {
		name, rest, _ := strings.Cut(p[1:], "/")
		if u, err := user.Lookup(name); err == nil && u.HomeDir != "" {
			p = filepath.Join(u.HomeDir, rest)
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
