package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigPath     = "SORTA_CONFIG"
	defaultConfigPath = "configs/config.toml"
	legacyConfigPath  = "config.toml"
)

// Load decodes the TOML file at path on top of the defaults.
// An empty path falls back to ResolveConfigPath; when nothing is found the
// defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ResolveConfigPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
		}
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveConfigPath finds the config file: env var first, then the default
// path, then the legacy path.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" && fileExists(p) {
		return p
	}
	if fileExists(defaultConfigPath) {
		return defaultConfigPath
	}
	if fileExists(legacyConfigPath) {
		return legacyConfigPath
	}
	return ""
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
