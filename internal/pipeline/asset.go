// Package pipeline implements the streaming file-transformation runtime that
// tasks drive: assets are read from source globs, piped through ordered
// stages (autoprefix, minify, concat, sourcemaps), and written to a
// destination directory.
package pipeline

import (
	"path"
	"path/filepath"
	"strings"
)

// Asset is one file flowing through a pipeline, held in memory.
//
// Path identifies the asset by its (slash-normalized) source location; for
// assets produced by stages (concat bundles, sourcemap files) Path is the
// intended output name.
type Asset struct {
	// Path is the slash-normalized source path or output name.
	Path string

	// Base is the directory Rel is computed against.
	Base string

	// Contents is the current file body after all stages applied so far.
	Contents []byte

	// OutPath is the absolute path the asset was written to, set by the
	// destination stage.
	OutPath string

	// Sourcemap tracking, enabled by the sourcemap init stage.
	mapInit bool
	origins []Origin
}

// Origin is one original source that contributed to an asset.
type Origin struct {
	Path     string
	Contents []byte
}

// Name returns the asset's file name.
func (a *Asset) Name() string {
	return path.Base(a.Path)
}

// Ext returns the lowercased file extension, including the dot.
func (a *Asset) Ext() string {
	return strings.ToLower(path.Ext(a.Path))
}

// Rel returns the asset path relative to Base, falling back to Name.
func (a *Asset) Rel() string {
	if a.Base == "" {
		return a.Name()
	}
	rel, err := filepath.Rel(filepath.FromSlash(a.Base), filepath.FromSlash(a.Path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return a.Name()
	}
	return filepath.ToSlash(rel)
}

// Origins returns the original sources tracked for this asset. Empty unless
// the sourcemap init stage ran.
func (a *Asset) Origins() []Origin {
	out := make([]Origin, len(a.origins))
	copy(out, a.origins)
	return out
}
