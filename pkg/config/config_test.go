package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	c, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	dir := t.TempDir()
	w := c.Checkout()
	w.SetConfigDir(filepath.Join(dir, "config"))
	w.SetStateDir(filepath.Join(dir, "state"))
	c.Freeze()
	return c
}

func TestDerivedPaths(t *testing.T) {
	c := testConfig(t)
	if filepath.Base(c.GetLogFile()) != "shea.log" || filepath.Dir(c.GetLogFile()) != c.GetStateDir() {
		t.Errorf("log file = %s", c.GetLogFile())
	}
	if filepath.Dir(c.GetPrefsFile()) != c.GetConfigDir() {
		t.Errorf("prefs file = %s", c.GetPrefsFile())
	}
}

func TestFrozenConfigPanics(t *testing.T) {
	c := testConfig(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic modifying frozen config")
		}
	}()
	c.SetStateDir("/elsewhere")
}

func TestOpenLogFile(t *testing.T) {
	c := testConfig(t)
	f, err := OpenLogFile(c)
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	f.WriteString("hello\n")
	f.Close()
	data, err := os.ReadFile(c.GetLogFile())
	if err != nil || string(data) != "hello\n" {
		t.Errorf("log contents = %q, %v", data, err)
	}
}

func TestLoadPreferences(t *testing.T) {
	c := testConfig(t)

	p, err := LoadPreferences(c)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if p.TopLimit != 50 || p.TopSort != "cpu" || p.ShowHidden {
		t.Errorf("defaults = %+v", p)
	}
	if _, err := os.Stat(c.GetPrefsFile()); !os.IsNotExist(err) {
		t.Error("prefs file must not be created implicitly")
	}

	os.MkdirAll(c.GetConfigDir(), 0755)
	os.WriteFile(c.GetPrefsFile(), []byte(`{"show_hidden": true, "top_limit": 0, "top_sort": "memory"}`), 0644)
	p, err = LoadPreferences(c)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if !p.ShowHidden || p.TopSort != "memory" || p.TopLimit != 50 {
		t.Errorf("loaded = %+v", p)
	}

	os.WriteFile(c.GetPrefsFile(), []byte(`{not json`), 0644)
	if _, err := LoadPreferences(c); err == nil || !strings.Contains(err.Error(), "preferences") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	c := &Config{hostHome: "/home/u"}
	if got := ExpandHome(c, "~/src"); got != "/home/u/src" {
		t.Errorf("ExpandHome(~/src) = %s", got)
	}
	if got := ExpandHome(c, "~"); got != "/home/u" {
		t.Errorf("ExpandHome(~) = %s", got)
	}
	if got := ExpandHome(c, "/tmp/~x"); got != "/tmp/~x" {
		t.Errorf("ExpandHome(/tmp/~x) = %s", got)
	}
}
