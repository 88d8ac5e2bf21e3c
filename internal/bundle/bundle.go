// Package bundle assembles the combined context blob: one relative-path
// header per file followed by that file's skeleton (or raw contents in
// full mode). Files are reduced concurrently but emitted in input
// order.
package bundle

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"smartcontext/internal/cache"
	"smartcontext/internal/logging"
	"smartcontext/internal/scan"
	"smartcontext/internal/skeleton"
)

// DefaultWorkers bounds concurrent file reduction.
const DefaultWorkers = 4

// Options configures a Build call.
type Options struct {
	Workers     int
	FullContent bool         // emit raw file contents instead of skeletons
	Store       *cache.Store // optional skeleton cache
	Logger      *slog.Logger
}

// Build reads and renders every file and concatenates the results in
// the order given. Unreadable and binary files are skipped, not fatal.
func Build(ctx context.Context, files []scan.File, opts Options) (string, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	results := make([]string, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = render(files[i], opts)
			}
		}()
	}

	for i := range files {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return "", err
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var b strings.Builder
	first := true
	for i, text := range results {
		if text == "" {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		b.WriteString(files[i].RelPath)
		b.WriteString("\n")
		b.WriteString(text)
		first = false
	}
	return b.String(), nil
}

// render produces the output text for one file, or "" to skip it.
func render(f scan.File, opts Options) string {
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		opts.Logger.Debug("skipping unreadable file", "path", f.RelPath, "error", err)
		return ""
	}
	if scan.IsBinary(data) {
		opts.Logger.Debug("skipping binary file", "path", f.RelPath)
		return ""
	}

	if opts.FullContent {
		text := string(data)
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text
	}

	if opts.Store != nil {
		hash := cache.Hash(data)
		if cached, ok := opts.Store.Get(hash); ok {
			return cached
		}
		reduced := skeleton.Reduce(string(data))
		if err := opts.Store.Put(hash, f.RelPath, reduced); err != nil {
			opts.Logger.Warn("caching skeleton failed", "path", f.RelPath, "error", err)
		}
		return reduced
	}

	return skeleton.Reduce(string(data))
}
