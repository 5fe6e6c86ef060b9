package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves source globs to a deterministic file list.
//
// The resolution process:
//  1. Each pattern is expanded relative to base. Patterns support `**`
//     (matching zero or more path segments) via doublestar.
//  2. Paths are normalized to forward slashes.
//  3. Paths are strictly sorted lexicographically and deduplicated.
//
// Directory entries are skipped; only files flow into pipelines. A pattern
// with no glob characters is treated as a literal path when it exists.
// Ordering never depends on OS directory enumeration.
func Expand(base string, globs []string) ([]string, error) {
	pathSet := make(map[string]struct{})

	for _, pattern := range globs {
		expanded, err := expandPattern(base, pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", pattern, err)
		}
		for _, p := range expanded {
			pathSet[p] = struct{}{}
		}
	}

	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadAssets expands globs and reads each matched file into an Asset.
//
// An empty match is not an error; the pipeline simply runs over nothing.
func ReadAssets(base string, globs []string) ([]*Asset, error) {
	paths, err := Expand(base, globs)
	if err != nil {
		return nil, err
	}

	assets := make([]*Asset, 0, len(paths))
	for _, p := range paths {
		contents, err := os.ReadFile(filepath.FromSlash(p))
		if err != nil {
			return nil, fmt.Errorf("reading source %q: %w", p, err)
		}
		assets = append(assets, &Asset{
			Path:     p,
			Base:     filepath.ToSlash(base),
			Contents: contents,
		})
	}
	return assets, nil
}

func expandPattern(base, pattern string) ([]string, error) {
	fullPattern := pattern
	if !filepath.IsAbs(pattern) {
		fullPattern = filepath.Join(base, pattern)
	}

	matches, err := doublestar.FilepathGlob(filepath.ToSlash(fullPattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}

	// A literal path with no matches still counts when the file exists.
	if len(matches) == 0 && !containsGlobChar(pattern) {
		if _, err := os.Stat(fullPattern); err == nil {
			matches = []string{fullPattern}
		}
	}

	normalized := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		normalized = append(normalized, filepath.ToSlash(match))
	}
	return normalized, nil
}

func containsGlobChar(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', ']', '{', '}':
			return true
		}
	}
	return false
}
