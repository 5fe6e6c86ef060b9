// Package config holds the process-wide settings every task and ingredient
// reads: project paths, per-category source/output pairs, and feature
// toggles such as sourcemaps and production mode.
//
// Settings are resolved once at startup: built-in defaults, then the TOML
// config file, then ASSETFORGE_* environment overrides. After Load returns,
// the settings are read-only by convention.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrConfig wraps all configuration failures.
var ErrConfig = errors.New("invalid configuration")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// PathPair describes where one category of assets comes from and where its
// built output goes. Paths and globs are relative to Settings.Root unless
// absolute.
type PathPair struct {
	// Src is the list of source globs fed into the pipeline.
	Src []string `toml:"src"`

	// Watch is the list of globs that trigger a re-run on change.
	// Defaults to Src when empty.
	Watch []string `toml:"watch"`

	// Dest is the output directory.
	Dest string `toml:"dest"`

	// Out is the bundle filename for concatenating steps. Optional.
	Out string `toml:"out"`
}

// WatchGlobs returns the effective watch patterns for this pair.
func (p PathPair) WatchGlobs() []string {
	if len(p.Watch) > 0 {
		return p.Watch
	}
	return p.Src
}

// Settings is the process-wide configuration.
type Settings struct {
	// Root is the project directory all relative paths resolve against.
	Root string `toml:"root"`

	// Production enables minification in the built-in ingredients.
	Production bool `toml:"production"`

	// Sourcemaps enables sourcemap init/write steps.
	Sourcemaps bool `toml:"sourcemaps"`

	// Notifications enables desktop notifications for task results.
	Notifications bool `toml:"notifications"`

	// SassBin is the Sass compiler executable to delegate to.
	SassBin string `toml:"sass_bin"`

	// Buildfile is the Lua task declaration script, relative to Root.
	Buildfile string `toml:"buildfile"`

	// DebounceMS is the watch debounce window in milliseconds.
	DebounceMS int `toml:"debounce_ms"`

	// Styles and Scripts are the path pairs of the built-in ingredients.
	Styles  PathPair `toml:"styles"`
	Scripts PathPair `toml:"scripts"`
}

// Defaults returns the baseline settings for a conventional project layout.
func Defaults() Settings {
	return Settings{
		Root:          ".",
		Sourcemaps:    true,
		Notifications: true,
		SassBin:       "sass",
		Buildfile:     "assetforge.lua",
		DebounceMS:    250,
		Styles: PathPair{
			Src:   []string{"assets/scss/*.scss"},
			Watch: []string{"assets/scss/**/*.scss"},
			Dest:  "dist/css",
		},
		Scripts: PathPair{
			Src:  []string{"assets/js/**/*.js"},
			Dest: "dist/js",
			Out:  "app.js",
		},
	}
}

// Validate rejects settings that cannot drive a build.
func (s Settings) Validate() error {
	if s.Root == "" {
		return configErrorf("root is required")
	}
	if s.SassBin == "" {
		return configErrorf("sass_bin is required")
	}
	if s.DebounceMS < 0 {
		return configErrorf("debounce_ms must not be negative (got %d)", s.DebounceMS)
	}
	for name, p := range map[string]PathPair{"styles": s.Styles, "scripts": s.Scripts} {
		if len(p.Src) == 0 {
			return configErrorf("%s.src is required", name)
		}
		if p.Dest == "" {
			return configErrorf("%s.dest is required", name)
		}
	}
	return nil
}

// Abs resolves a configured path against Root.
func (s Settings) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}
