package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartcontext/internal/cache"
	"smartcontext/internal/scan"
)

func newTestWatcher(t *testing.T, root string, cfg Config) (*Watcher, *cache.Store) {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "skeletons.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	w, err := New(root, store, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, store
}

func TestWatcherRefreshesCacheOnWrite(t *testing.T) {
	root := t.TempDir()
	w, store := newTestWatcher(t, root, Config{Debounce: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before producing events.
	time.Sleep(100 * time.Millisecond)

	src := []byte("export function add(a, b) {\n  return a + b;\n}\n")
	if err := os.WriteFile(filepath.Join(root, "a.js"), src, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	hash := cache.Hash(src)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := store.Get(hash); ok {
			if got != "export function add(a, b){}\n" {
				t.Errorf("cached skeleton = %q", got)
			}
			cancel()
			<-done
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("cache never refreshed")
}

func TestWatcherIgnoresNonCandidates(t *testing.T) {
	root := t.TempDir()
	w, store := newTestWatcher(t, root, Config{Debounce: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	src := []byte("# not source\n")
	if err := os.WriteFile(filepath.Join(root, "notes.md"), src, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if _, ok := store.Get(cache.Hash(src)); ok {
		t.Error("non-candidate file was cached")
	}
	cancel()
	<-done
}

func TestCandidateFilter(t *testing.T) {
	root := t.TempDir()
	w, _ := newTestWatcher(t, root, Config{
		Scan: scan.Config{IgnorePatterns: []string{"dist/"}},
	})

	if !w.candidate("src/app.js") {
		t.Error("src/app.js should be a candidate")
	}
	if w.candidate("README.md") {
		t.Error("README.md should not be a candidate")
	}
	if w.candidate("dist/bundle.js") {
		t.Error("ignored path should not be a candidate")
	}
}

func TestRefreshSkipsBinary(t *testing.T) {
	root := t.TempDir()
	w, store := newTestWatcher(t, root, Config{})

	abs := filepath.Join(root, "blob.js")
	data := []byte{0x00, 0x01}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w.refresh("blob.js", abs)
	if _, ok := store.Get(cache.Hash(data)); ok {
		t.Error("binary file was cached")
	}
}
