package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	logoserrors "github.com/zixiao-technologies/logos/internal/errors"
)

// tomlOverlay is the optional `.logos.toml` shape: every scalar field is a
// pointer and the list fields stay nil when absent, so an absent key leaves
// the KDL-derived value untouched.
type tomlOverlay struct {
	Index *struct {
		MaxFileSize    *int64 `toml:"max_file_size"`
		FollowSymlinks *bool  `toml:"follow_symlinks"`
	} `toml:"index"`
	Watch *struct {
		Enabled    *bool `toml:"enabled"`
		DebounceMs *int  `toml:"debounce_ms"`
	} `toml:"watch"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// ApplyTOMLOverlay reads `.logos.toml` from projectRoot, if present, and
// merges it onto cfg in place. A missing file is not an error.
func ApplyTOMLOverlay(cfg *Config, projectRoot string) error {
	path := filepath.Join(projectRoot, ".logos.toml")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return logoserrors.NewConfigError(path, "", err)
	}

	var overlay tomlOverlay
	if err := toml.Unmarshal(content, &overlay); err != nil {
		return logoserrors.NewConfigError(path, "", err)
	}

	if overlay.Index != nil {
		if overlay.Index.MaxFileSize != nil {
			cfg.Index.MaxFileSize = *overlay.Index.MaxFileSize
		}
		if overlay.Index.FollowSymlinks != nil {
			cfg.Index.FollowSymlinks = *overlay.Index.FollowSymlinks
		}
	}
	if overlay.Watch != nil {
		if overlay.Watch.Enabled != nil {
			cfg.Watch.Enabled = *overlay.Watch.Enabled
		}
		if overlay.Watch.DebounceMs != nil {
			cfg.Watch.DebounceMs = *overlay.Watch.DebounceMs
		}
	}
	if len(overlay.Include) > 0 {
		cfg.Include = append(cfg.Include, overlay.Include...)
	}
	if len(overlay.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, overlay.Exclude...)
	}
	return nil
}

// Load builds the effective Config for projectRoot: KDL defaults/overrides
// followed by an optional TOML overlay.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := ApplyTOMLOverlay(cfg, projectRoot); err != nil {
		return nil, err
	}
	return cfg, nil
}
