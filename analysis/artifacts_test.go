package analysis

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mtreilly/MemoryWatch/storage"
)

func hintWithMeta(minute int, msg, metadata string) storage.Alert {
	return alert(minute, storage.AlertDiagnosticHint, msg, "", "", metadata)
}

func TestVerifyArtifacts(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "heap.dump")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	missing := filepath.Join(dir, "gone.dump")

	src := &fakeSource{alerts: []storage.Alert{
		hintWithMeta(0, "newest dump", fmt.Sprintf(`{"artifact_path": %q, "title": "b-heap"}`, present)),
		hintWithMeta(-1, "duplicate dump", fmt.Sprintf(`{"artifact_path": %q, "title": "ignored dup"}`, present)),
		hintWithMeta(-2, "lost dump", fmt.Sprintf(`{"artifact_path": %q, "title": "a-gone"}`, missing)),
		hintWithMeta(-3, "no path", `{"title": "pathless"}`),
		hintWithMeta(-4, "bad metadata", `{{{`),
	}}

	got, err := VerifyArtifacts(context.Background(), src, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.gotLimit != 200 {
		t.Fatalf("artifact query cap = %d, want 200", src.gotLimit)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 artifacts after dedupe, got %d: %+v", len(got), got)
	}
	// Sorted ascending by title.
	if got[0].Title != "a-gone" || got[1].Title != "b-heap" {
		t.Fatalf("not sorted by title: %q, %q", got[0].Title, got[1].Title)
	}
	if got[0].Exists {
		t.Fatalf("missing artifact reported as present: %+v", got[0])
	}
	if !got[1].Exists {
		t.Fatalf("present artifact reported as missing: %+v", got[1])
	}
	if got[1].Path != present {
		t.Fatalf("path = %q, want %q", got[1].Path, present)
	}
}

func TestVerifyArtifactsTitleDefaultsToMessage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "trace.out")
	src := &fakeSource{alerts: []storage.Alert{
		hintWithMeta(0, "collect allocation trace", fmt.Sprintf(`{"artifact_path": %q}`, p)),
	}}
	got, err := VerifyArtifacts(context.Background(), src, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "collect allocation trace" {
		t.Fatalf("title should fall back to the alert message: %+v", got)
	}
}

func TestVerifyArtifactsNoDuplicateIdentity(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{}
	for i := 0; i < 5; i++ {
		src.alerts = append(src.alerts, hintWithMeta(-i, "repeat",
			fmt.Sprintf(`{"artifact_path": %q}`, filepath.Join(dir, "same.bin"))))
	}
	got, err := VerifyArtifacts(context.Background(), src, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("identical (path, existence) pairs must collapse: %+v", got)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got := expandPath("~/dumps/x.bin"); got != filepath.Join(home, "dumps", "x.bin") {
		t.Fatalf("expandPath(~/dumps/x.bin) = %q", got)
	}
	if got := expandPath("~"); got != home {
		t.Fatalf("expandPath(~) = %q", got)
	}
}

func TestExpandPathNamedUser(t *testing.T) {
	u, err := user.Current()
	if err != nil || u.Username == "" || u.HomeDir == "" {
		t.Skipf("no current user: %v", err)
	}
	if got := expandPath("~" + u.Username + "/dumps/x.bin"); got != filepath.Join(u.HomeDir, "dumps", "x.bin") {
		t.Fatalf("expandPath(~%s/dumps/x.bin) = %q", u.Username, got)
	}
	// An unknown account leaves the path alone apart from Abs.
	unknown := "~no-such-account-memwatch/x"
	if got := expandPath(unknown); filepath.Base(got) != "x" || !strings.Contains(got, "no-such-account-memwatch") {
		t.Fatalf("expandPath(%q) = %q", unknown, got)
	}
}
