package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"assetforge/internal/obs"
)

// Load resolves settings from defaults, then the TOML file at path, then
// ASSETFORGE_* environment overrides.
//
// A missing file is not an error when path is empty or names the default
// location; an explicitly configured file must exist.
func Load(path string, explicit bool) (Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &s); err != nil {
				return Settings{}, configErrorf("parsing %s: %v", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// Fall through to defaults.
		default:
			return Settings{}, configErrorf("reading %s: %v", path, err)
		}
	}

	applyEnv(&s)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyEnv overlays ASSETFORGE_* environment variables onto s.
func applyEnv(s *Settings) {
	if v, ok := os.LookupEnv("ASSETFORGE_ROOT"); ok {
		s.Root = v
	}
	if v, ok := os.LookupEnv("ASSETFORGE_SASS_BIN"); ok {
		s.SassBin = v
	}
	if v, ok := os.LookupEnv("ASSETFORGE_BUILDFILE"); ok {
		s.Buildfile = v
	}
	if v, ok := lookupBool("ASSETFORGE_PRODUCTION"); ok {
		s.Production = v
	}
	if v, ok := lookupBool("ASSETFORGE_SOURCEMAPS"); ok {
		s.Sourcemaps = v
	}
	if v, ok := lookupBool("ASSETFORGE_NOTIFICATIONS"); ok {
		s.Notifications = v
	}
}

func lookupBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		// Malformed toggle values are ignored rather than fatal; the file
		// and defaults still apply.
		obs.Warn("ignoring malformed boolean env var", map[string]any{"key": key, "value": raw})
		return false, false
	}
	return v, true
}
