package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	defaultDirName    = ".sorta"
	defaultDBName     = "sorta.db"
	defaultSession    = "session"
)

// Config is the runtime configuration decoded from the TOML file.
type Config struct {
	Database   Database
	Security   Security
	Membership Membership
	Wallets    Wallets
	Log        Log
}

// Database SQLite settings
type Database struct {
	Path string // SQLite database path, ~ is expanded
}

// Security settings for sessions.
type Security struct {
	Seed        string   // seed used to derive the session file key
	SessionTTL  Duration // lifetime of a sign-in
	SessionFile string   // encrypted file holding the current session token
}

// Membership controls how membership sets are reconciled.
type Membership struct {
	Strategy     string // replace | diff
	Atomic       bool   // run delete and insert phases in one transaction
	EnforceOwner bool   // reject groups that belong to another owner
}

// Wallets defaults for wallet forms.
type Wallets struct {
	DefaultChain    string
	StrictAddresses bool
}

type Log struct {
	Level string
}

// Duration wraps time.Duration so it can be written as "720h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Database: Database{Path: filepath.Join("~", defaultDirName, defaultDBName)},
		Security: Security{
			SessionTTL:  Duration{DefaultSessionTTL},
			SessionFile: filepath.Join("~", defaultDirName, defaultSession),
		},
		Membership: Membership{
			Strategy:     "replace",
			Atomic:       true,
			EnforceOwner: true,
		},
		Wallets: Wallets{DefaultChain: "ETH"},
		Log:     Log{Level: "INFO"},
	}
}

// Validate checks values that cannot be fixed up with defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Membership.Strategy) {
	case "replace", "diff":
	default:
		return fmt.Errorf("membership strategy must be replace or diff, got %q", c.Membership.Strategy)
	}
	if c.Security.SessionTTL.Duration <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if strings.TrimSpace(c.Wallets.DefaultChain) == "" {
		return fmt.Errorf("default chain is required")
	}
	return nil
}

// expandPaths expands ~ in every path field.
func (c *Config) expandPaths() {
	c.Database.Path = ExpandPath(c.Database.Path)
	c.Security.SessionFile = ExpandPath(c.Security.SessionFile)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
