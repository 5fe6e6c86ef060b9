package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_Validate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"), false)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if s.SassBin != "sass" {
		t.Fatalf("expected default sass_bin, got %q", s.SassBin)
	}
	if !s.Sourcemaps {
		t.Fatalf("expected sourcemaps enabled by default")
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), true)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetforge.toml")
	content := `
root = "/srv/site"
production = true
sass_bin = "dart-sass"

[styles]
src = ["web/scss/*.scss"]
dest = "public/css"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	s, err := Load(path, true)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if s.Root != "/srv/site" {
		t.Fatalf("expected root override, got %q", s.Root)
	}
	if !s.Production {
		t.Fatalf("expected production enabled")
	}
	if s.SassBin != "dart-sass" {
		t.Fatalf("expected sass_bin override, got %q", s.SassBin)
	}
	if got := s.Styles.Src; len(got) != 1 || got[0] != "web/scss/*.scss" {
		t.Fatalf("unexpected styles.src: %v", got)
	}
	// Unset sections keep their defaults.
	if s.Scripts.Out != "app.js" {
		t.Fatalf("expected default scripts.out, got %q", s.Scripts.Out)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetforge.toml")
	if err := os.WriteFile(path, []byte("production = false\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("ASSETFORGE_PRODUCTION", "true")
	t.Setenv("ASSETFORGE_SASS_BIN", "/opt/sass/bin/sass")

	s, err := Load(path, true)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !s.Production {
		t.Fatalf("expected env to enable production")
	}
	if s.SassBin != "/opt/sass/bin/sass" {
		t.Fatalf("expected env sass_bin, got %q", s.SassBin)
	}
}

func TestLoad_MalformedBoolEnvIgnored(t *testing.T) {
	t.Setenv("ASSETFORGE_SOURCEMAPS", "sometimes")

	s, err := Load("", false)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !s.Sourcemaps {
		t.Fatalf("malformed env value must not change the default")
	}
}

func TestValidate_RejectsEmptyPaths(t *testing.T) {
	s := Defaults()
	s.Styles.Src = nil
	if err := s.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}

	s = Defaults()
	s.Scripts.Dest = ""
	if err := s.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestPathPair_WatchGlobsFallBackToSrc(t *testing.T) {
	p := PathPair{Src: []string{"a/*.js"}}
	if got := p.WatchGlobs(); len(got) != 1 || got[0] != "a/*.js" {
		t.Fatalf("expected src fallback, got %v", got)
	}

	p.Watch = []string{"a/**/*.js"}
	if got := p.WatchGlobs(); len(got) != 1 || got[0] != "a/**/*.js" {
		t.Fatalf("expected explicit watch globs, got %v", got)
	}
}
