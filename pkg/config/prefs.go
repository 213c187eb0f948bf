package config

import (
	"fmt"

	"shea/pkg/lazyjson"
)

// Preferences are optional user defaults read from prefs.json.
type Preferences struct {
	// ShowHidden makes "shea list" include dot files without --all.
	ShowHidden bool `json:"show_hidden"`
	// TopSort is the initial sort column of "shea top".
	TopSort string `json:"top_sort"`
	// TopLimit is the number of processes shown by "shea top".
	TopLimit int `json:"top_limit"`
	// ScanWorkers bounds concurrent directory walks in the disk browser.
	ScanWorkers int `json:"scan_workers"`
}

// DefaultPreferences returns the built-in defaults.
func DefaultPreferences() *Preferences {
	return &Preferences{
		TopSort:     "cpu",
		TopLimit:    50,
		ScanWorkers: 4,
	}
}

// LoadPreferences reads the preferences file. A missing file yields the
// defaults; the file is never created.
func LoadPreferences(cfg ReadOnly) (*Preferences, error) {
	mgr := lazyjson.New(cfg.GetPrefsFile(), DefaultPreferences)
	p, err := mgr.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if p.TopLimit <= 0 {
		p.TopLimit = 50
	}
	if p.ScanWorkers <= 0 {
		p.ScanWorkers = 4
	}
	if p.TopSort == "" {
		p.TopSort = "cpu"
	}
	return p, nil
}
