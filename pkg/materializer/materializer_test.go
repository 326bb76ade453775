package materializer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/blackcoderx/brunomigrate/pkg/storage"
)

// fakeBru writes a shell script that records its arguments and working
// directory, then behaves according to the file name it is given.
func fakeBru(t *testing.T) (script, record string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	dir := t.TempDir()
	record = filepath.Join(dir, "calls.log")
	script = filepath.Join(dir, "bru")
	body := `#!/bin/sh
echo "$(pwd) $*" >> "` + record + `"
case "$3" in
  *warn*) echo "deprecated option" >&2 ;;
  *fail*) echo "boom" >&2; exit 3 ;;
esac
exit 0
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script, record
}

func readCalls(t *testing.T, record string) []string {
	t.Helper()
	data, err := os.ReadFile(record)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestMaterialize_RunsInWorkDir(t *testing.T) {
	script, record := fakeBru(t)
	workDir := filepath.Join(t.TempDir(), "bruno-projects")
	input := filepath.Join(t.TempDir(), "Smoke Tests.json")

	m := New(script, workDir, nil)
	if err := m.Materialize(context.Background(), input); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	calls := readCalls(t, record)
	if len(calls) != 1 {
		t.Fatalf("calls = %v", calls)
	}
	// pwd may resolve symlinks in the temp dir, so compare the suffix.
	want := string(filepath.Separator) + "bruno-projects export --input " + input
	if !strings.HasSuffix(calls[0], want) {
		t.Errorf("call = %q, want suffix %q", calls[0], want)
	}
	if !storage.Exists(workDir) {
		t.Error("work dir should be created")
	}
}

func TestMaterialize_StderrIsWarning(t *testing.T) {
	script, _ := fakeBru(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m := New(script, t.TempDir(), logger)
	if err := m.Materialize(context.Background(), filepath.Join(t.TempDir(), "warn.json")); err != nil {
		t.Fatalf("stderr output must not fail: %v", err)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "deprecated option") {
		t.Errorf("expected warning log, got:\n%s", logs.String())
	}
}

func TestMaterialize_NonZeroExit(t *testing.T) {
	script, _ := fakeBru(t)

	m := New(script, t.TempDir(), nil)
	err := m.Materialize(context.Background(), filepath.Join(t.TempDir(), "fail.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	var exitErr interface{ ExitCode() int }
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("error = %v, want exit code 3", err)
	}
}

func TestMaterialize_MissingCommand(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "no-such-bru"), t.TempDir(), nil)
	if err := m.Materialize(context.Background(), "x.json"); err == nil {
		t.Error("expected exec error")
	}

	if err := New("  ", t.TempDir(), nil).Materialize(context.Background(), "x.json"); !errors.Is(err, ErrNoCommand) {
		t.Errorf("error = %v, want ErrNoCommand", err)
	}
}

func TestMaterializeAll_ContinuesPastFailures(t *testing.T) {
	script, record := fakeBru(t)
	brunoDir := t.TempDir()
	cols := filepath.Join(brunoDir, "Team A", "collections")
	os.MkdirAll(cols, 0o755)
	for _, name := range []string{"a.json", "fail.json", "z.json"} {
		os.WriteFile(filepath.Join(cols, name), []byte("{}"), 0o644)
	}

	m := New(script, t.TempDir(), nil)
	list := storage.WorkspaceList{{ID: "w1", Name: "Team A"}, {ID: "w2", Name: "Never Converted"}}
	done, err := m.MaterializeAll(context.Background(), brunoDir, list)

	if done != 2 {
		t.Errorf("done = %d, want 2", done)
	}
	if err == nil || !strings.Contains(err.Error(), "fail.json") {
		t.Errorf("error = %v, want failure for fail.json", err)
	}
	if calls := readCalls(t, record); len(calls) != 3 {
		t.Errorf("calls = %v, want 3", calls)
	}
}
