package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func startWatcher(t *testing.T, dir string, ignore func(string, fsnotify.Op) bool) *Watcher {
	t.Helper()
	w, err := NewWatcher(20*time.Millisecond, ignore)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lit.hlsl")
	if err := os.WriteFile(file, []byte("// v1\n"), 0o644); err != nil {
		t.Fatalf("failed to create shader: %v", err)
	}

	w := startWatcher(t, dir, nil)

	if err := os.WriteFile(file, []byte("// v2\n"), 0o644); err != nil {
		t.Fatalf("failed to update shader: %v", err)
	}

	select {
	case got := <-w.Changes:
		if got != file {
			t.Errorf("change for %q, want %q", got, file)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.hlsl")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t, dir, nil)
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for removal event")
	}
}

func TestWatcher_IgnoresFilteredAndTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, func(name string, _ fsnotify.Op) bool {
		return filepath.Ext(name) == ".cso"
	})

	for _, name := range []string{"a_CsMain.cso", "header.hpp.tmp", ".swp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %q", change)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_AddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, nil)

	if err := w.Add(dir); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if err := w.Add(dir + string(filepath.Separator)); err != nil {
		t.Fatalf("Add with trailing separator: %v", err)
	}
	if w.Dirs() != 1 {
		t.Errorf("Dirs() = %d, want 1", w.Dirs())
	}
	if err := w.Add(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error adding a missing directory")
	}
}

// Bursts of writes collapse into a single pending notification.
func TestWatcher_Coalesces(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, nil)

	for i := range 5 {
		name := filepath.Join(dir, string(rune('a'+i))+".hlsl")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(300 * time.Millisecond)

	got := 0
	for {
		select {
		case <-w.Changes:
			got++
			continue
		default:
		}
		break
	}
	if got != 1 {
		t.Errorf("received %d notifications, want 1 coalesced", got)
	}
}

func TestWatcher_IgnoreSeesOp(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a_CsMain.cso")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, dir, func(_ string, op fsnotify.Op) bool {
		return !op.Has(fsnotify.Remove)
	})

	if err := os.WriteFile(file, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case change := <-w.Changes:
		t.Fatalf("write should be ignored, got %q", change)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes:
		if got != file {
			t.Errorf("change for %q, want %q", got, file)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for removal event")
	}
}

// A deleted directory is forgotten so that it can be watched again once it
// is recreated.
func TestWatcher_ReaddsDeletedDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "out")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	w := startWatcher(t, dir, nil)
	if err := w.Add(sub); err != nil {
		t.Fatalf("Add(sub): %v", err)
	}
	if w.Dirs() != 2 {
		t.Fatalf("Dirs() = %d, want 2", w.Dirs())
	}

	if err := os.RemoveAll(sub); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for w.Dirs() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Dirs() = %d after delete, want 1", w.Dirs())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(sub); err != nil {
		t.Fatalf("re-Add(sub): %v", err)
	}
	if w.Dirs() != 2 {
		t.Errorf("Dirs() = %d after re-add, want 2", w.Dirs())
	}
}
