package lazyjson

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func defaults() *doc { return &doc{Name: "default", Count: 1} }

func TestGetMissingFileUsesDefault(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "none.json"), defaults)
	d, err := m.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Name != "default" || d.Count != 1 {
		t.Errorf("got %+v", d)
	}
}

func TestGetMergesOntoDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	os.WriteFile(path, []byte(`{"count": 7}`), 0644)

	m := New(path, defaults)
	d, err := m.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Name != "default" || d.Count != 7 {
		t.Errorf("got %+v", d)
	}

	// cached until Reload
	os.WriteFile(path, []byte(`{"count": 9}`), 0644)
	if d, _ := m.Get(); d.Count != 7 {
		t.Errorf("expected cached value, got %d", d.Count)
	}
	m.Reload()
	if d, _ := m.Get(); d.Count != 9 {
		t.Errorf("expected reloaded value, got %d", d.Count)
	}
}

func TestGetInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{`), 0644)
	m := New[doc](path, nil)
	if _, err := m.Get(); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	os.WriteFile(path, []byte(`{"name": "x"}`), 0644)
	m := New[doc](path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := m.Get()
			if err != nil || d.Name != "x" {
				t.Errorf("Get = %+v, %v", d, err)
			}
		}()
	}
	wg.Wait()
}
