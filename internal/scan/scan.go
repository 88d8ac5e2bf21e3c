// Package scan enumerates candidate source files under a root
// directory. Candidates are filtered by an extension allowlist,
// gitignore-style patterns and a fixed exclude list of VCS and
// metadata directories.
package scan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxFileSize caps how large a file the collector will hand to
// the reducer. Anything bigger is skipped.
const DefaultMaxFileSize = 512 * 1024

// DefaultExtensions is the brace-delimited C-family allowlist used when
// configuration supplies none.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// excludedDirs are never descended into regardless of ignore patterns.
var excludedDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	".smartcontext": true,
}

// File is one candidate source file, addressed both relative to the
// scanned root (for headers) and absolutely (for reads).
type File struct {
	RelPath string
	AbsPath string
	Size    int64
}

// Config controls which files Collect returns.
type Config struct {
	Extensions     []string // allowlist, defaults to DefaultExtensions
	IgnorePatterns []string // extra gitignore-style patterns
	MaxFileSize    int64    // bytes, defaults to DefaultMaxFileSize
}

// Collect walks root and returns candidate files sorted by relative
// path. Walk errors on individual entries are skipped, not fatal.
func Collect(root string, cfg Config) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	patterns := append(LoadGitignore(absRoot), cfg.IgnorePatterns...)
	matcher := CompileIgnore(patterns)

	var files []File
	err = filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if entry.IsDir() {
			if excludedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasAllowedExt(entry.Name(), exts) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		info, infoErr := entry.Info()
		if infoErr != nil || info.Size() > maxSize {
			return nil
		}

		files = append(files, File{
			RelPath: filepath.ToSlash(rel),
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return files, nil
}

func hasAllowedExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(exts, ext)
}

// LoadGitignore reads the root's .gitignore and returns its patterns.
// A missing file yields no patterns.
func LoadGitignore(root string) []string {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// CompileIgnore compiles gitignore-style patterns into a matcher.
// Returns nil when there is nothing to match.
func CompileIgnore(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// IsBinary reports whether data looks like a binary blob: a NUL byte in
// the first 8 KiB disqualifies it from skeletonizing.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > 8192 {
		sniff = sniff[:8192]
	}
	return bytes.IndexByte(sniff, 0) != -1
}
