package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smartcontext/internal/cache"
	"smartcontext/internal/scan"
)

func writeSource(t *testing.T, dir, name, content string) scan.File {
	t.Helper()
	abs := filepath.Join(dir, name)
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return scan.File{RelPath: name, AbsPath: abs, Size: int64(len(content))}
}

func TestBuildSkeletons(t *testing.T) {
	dir := t.TempDir()
	files := []scan.File{
		writeSource(t, dir, "a.js", "class A {\n  go() {\n    work();\n  }\n}\n"),
		writeSource(t, dir, "b.js", "export function add(a, b) {\n  return a + b;\n}\n"),
	}

	out, err := Build(context.Background(), files, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := "a.js\nclass A {\n  go(){}\n}\n\nb.js\nexport function add(a, b){}\n"
	if out != want {
		t.Errorf("Build =\n%q\nwant\n%q", out, want)
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var files []scan.File
	names := []string{"one.js", "two.js", "three.js", "four.js", "five.js"}
	for _, name := range names {
		files = append(files, writeSource(t, dir, name, "export function f() {\n  x();\n}\n"))
	}

	out, err := Build(context.Background(), files, Options{Workers: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	last := -1
	for _, name := range names {
		idx := strings.Index(out, name+"\n")
		if idx == -1 {
			t.Fatalf("missing header for %s", name)
		}
		if idx < last {
			t.Errorf("header %s out of order", name)
		}
		last = idx
	}
}

func TestBuildFullContent(t *testing.T) {
	dir := t.TempDir()
	files := []scan.File{
		writeSource(t, dir, "a.js", "let x = 1;\nconsole.log(x);"),
	}

	out, err := Build(context.Background(), files, Options{FullContent: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := "a.js\nlet x = 1;\nconsole.log(x);\n"
	if out != want {
		t.Errorf("Build = %q, want %q", out, want)
	}
}

func TestBuildSkipsBinaryAndMissing(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "blob.js")
	if err := os.WriteFile(bin, []byte{0x00, 0x01, 0x02}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files := []scan.File{
		{RelPath: "gone.js", AbsPath: filepath.Join(dir, "gone.js")},
		{RelPath: "blob.js", AbsPath: bin},
		writeSource(t, dir, "ok.js", "export function f() {\n}\n"),
	}

	out, err := Build(context.Background(), files, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if strings.Contains(out, "gone.js") || strings.Contains(out, "blob.js") {
		t.Errorf("skipped files leaked into output: %q", out)
	}
	if !strings.Contains(out, "ok.js") {
		t.Errorf("expected ok.js in output: %q", out)
	}
}

func TestBuildUsesCache(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.Open(filepath.Join(dir, "skeletons.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	files := []scan.File{
		writeSource(t, dir, "a.js", "class A {\n  go() {\n    x();\n  }\n}\n"),
	}

	first, err := Build(context.Background(), files, Options{Store: store})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}

	second, err := Build(context.Background(), files, Options{Store: store})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first != second {
		t.Errorf("cached build differs:\n%q\n%q", first, second)
	}
}

func TestBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	files := []scan.File{
		writeSource(t, dir, "a.js", "let x = 1;\n"),
	}

	if _, err := Build(ctx, files, Options{}); err == nil {
		t.Error("expected context error")
	}
}
