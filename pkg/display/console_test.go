package display

import (
	"bytes"
	"strings"
	"testing"

	"shea/pkg/common"
)

func TestConsoleRenderOutput(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	d := NewWriterDisplay(out, errOut)

	d.RenderOutput(&common.Output{
		Message: "Disk Usage",
		KV:      []common.KV{{Key: "Total", Value: "1.0GB"}},
		Table: &common.Table{
			Header: []string{"Device", "Mount"},
			Rows: [][]string{
				{"/dev/sda1", "/"},
				{"tmpfs", "/run"},
			},
		},
	})

	got := out.String()
	for _, want := range []string{"Disk Usage\n", "Total:       1.0GB\n", "Device     Mount\n", "/dev/sda1  /\n", "tmpfs      /run\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr output: %q", errOut.String())
	}
}

func TestConsoleVerboseLogging(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	d := NewWriterDisplay(out, errOut)

	d.Log("hidden")
	if errOut.Len() != 0 {
		t.Fatalf("debug message logged without verbose: %q", errOut.String())
	}

	d.SetVerbose(true)
	if !d.Verbose() {
		t.Fatal("Verbose() = false after SetVerbose(true)")
	}
	d.Log("shown")
	if !strings.Contains(errOut.String(), "shown") {
		t.Errorf("expected debug message, got %q", errOut.String())
	}

	redirected := &bytes.Buffer{}
	d.RedirectLog(redirected)
	d.Logger().Info("to file")
	if !strings.Contains(redirected.String(), "to file") {
		t.Errorf("redirected log missing message: %q", redirected.String())
	}
	d.Close()
	d.Logger().Info("back")
	if !strings.Contains(errOut.String(), "back") {
		t.Errorf("log not restored to stderr after Close: %q", errOut.String())
	}
}

func TestConsoleErrorf(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	d := NewWriterDisplay(out, errOut)
	d.Errorf("depth must be >= %d", 0)
	if errOut.String() != "shea: depth must be >= 0\n" {
		t.Errorf("Errorf wrote %q", errOut.String())
	}
}
