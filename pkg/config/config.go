// Package config manages application-wide settings and directory locations.
// It follows XDG specifications for storing configuration and state.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "shea"

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetConfigDir() string
	GetStateDir() string
	GetLogFile() string
	GetPrefsFile() string
	GetUser() string
	GetHostHome() string
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetConfigDir(string)
	SetStateDir(string)
}

// Config holds the base directories and user info for shea.
// Mutable
type Config struct {
	configDir string
	stateDir  string

	logFile   string
	prefsFile string

	user     string
	hostHome string

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetConfigDir() string { return c.configDir }
func (c *Config) GetStateDir() string  { return c.stateDir }
func (c *Config) GetLogFile() string   { return c.logFile }
func (c *Config) GetPrefsFile() string { return c.prefsFile }
func (c *Config) GetUser() string      { return c.user }
func (c *Config) GetHostHome() string  { return c.hostHome }

func (c *Config) SetConfigDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.configDir = s
	c.updateDerived()
}

func (c *Config) SetStateDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.stateDir = s
	c.updateDerived()
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.logFile = filepath.Join(c.stateDir, appName+".log")
	c.prefsFile = filepath.Join(c.configDir, "prefs.json")
}

// Init initializes the configuration using XDG base directories.
func Init() (*Config, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	c := &Config{
		configDir: filepath.Join(xdg.ConfigHome, appName),
		stateDir:  filepath.Join(xdg.StateHome, appName),
		user:      u.Username,
		hostHome:  u.HomeDir,
	}

	c.updateDerived()

	return c, nil
}

// OpenLogFile opens the state log for appending, creating it if needed.
func OpenLogFile(cfg ReadOnly) (*os.File, error) {
	if err := os.MkdirAll(cfg.GetStateDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	f, err := os.OpenFile(cfg.GetLogFile(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(cfg ReadOnly, path string) string {
	if path == "~" {
		return cfg.GetHostHome()
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(cfg.GetHostHome(), path[2:])
	}
	return path
}
