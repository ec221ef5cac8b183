package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *pathRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *pathRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestWatcher_AnalyzesSettledFile(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := New(dir, rec.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "alice.txt")
	if err := writeFile(path, "Skills: Go"); err != nil {
		t.Fatal(err)
	}
	// Rewrite immediately; the debounce should collapse both events.
	if err := writeFile(path, "Skills: Go, SQL"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly one callback, got %d: %v", len(got), got)
	}
	if !strings.HasSuffix(got[0], "alice.txt") {
		t.Errorf("unexpected path %q", got[0])
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := New(dir, rec.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "notes.md"), "ignored"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("non-txt file should be ignored, got %v", got)
	}
}

func TestWatcher_RemoveCancelsPending(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := New(dir, rec.record, WithDebounce(500*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "gone.txt")
	if err := writeFile(path, "short lived"); err != nil {
		t.Fatal(err)
	}
	// Give the create event time to arrive, then delete before the debounce fires.
	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	time.Sleep(800 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("deleted file should never reach the handler, got %v", got)
	}
}

func TestWatcher_SyncExisting(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "already.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}

	rec := &pathRecorder{}
	w := New(dir, rec.record)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.SyncExisting()

	got := rec.snapshot()
	if len(got) != 1 || !strings.HasSuffix(got[0], "already.txt") {
		t.Errorf("expected one existing file handed off, got %v", got)
	}
}

func TestWatcher_Start_createsMissingDirectory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "drop", "resumes")

	w := New(dir, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("drop directory should exist after Start: %v", err)
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	w := New(t.TempDir(), nil)
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start should be a no-op, got %v", err)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w := New(t.TempDir(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := New(dir, rec.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	if err := writeFile(filepath.Join(dir, "late.txt"), "too late"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("cancelled watcher should not hand off files, got %v", got)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"/a/b.txt", nil, true},
		{"/a/b.TXT", nil, true},
		{"/a/b.md", nil, false},
		{"/a/b", nil, false},
		{"/a/b.md", []string{".md", ".txt"}, true},
		{"/a/b.pdf", []string{".md", ".txt"}, false},
	}
	for _, tt := range tests {
		opts := []Option{}
		if tt.exts != nil {
			opts = append(opts, WithExtensions(tt.exts...))
		}
		w := New("unused", nil, opts...)
		if got := w.matchExtension(tt.path); got != tt.want {
			t.Errorf("matchExtension(%q) with %v = %v, want %v", tt.path, tt.exts, got, tt.want)
		}
	}
}
