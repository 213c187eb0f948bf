package monitor

import (
	"strings"
	"testing"
	"time"
)

func TestShortCommand(t *testing.T) {
	long := strings.Repeat("a", 70)
	tests := []struct {
		args []string
		name string
		want string
	}{
		{[]string{"/usr/bin/vim", "main.go"}, "vim", "/usr/bin/vim main.go"},
		{nil, "kworker/0:1", "kworker/0:1"},
		{[]string{long}, "x", strings.Repeat("a", 57) + "..."},
		{[]string{strings.Repeat("a", 60)}, "x", strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		if got := ShortCommand(tt.args, tt.name); got != tt.want {
			t.Errorf("ShortCommand(%v, %q) = %q, want %q", tt.args, tt.name, got, tt.want)
		}
	}
}

func TestShortUser(t *testing.T) {
	tests := map[string]string{
		"root":                     "root",
		`CORP\alice`:               "alice",
		"averyveryverylongusername": "averyveryver",
	}
	for in, want := range tests {
		if got := ShortUser(in); got != want {
			t.Errorf("ShortUser(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShape(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Shape(RawProcess{
		PID:        42,
		Name:       "sleep",
		Username:   "bob",
		CPU:        12.345,
		MemPercent: 1.25,
		RSS:        3 << 20,
		CreateTime: now.Add(-187 * time.Second),
		Cmdline:    []string{"sleep", "600"},
	}, now)

	want := []string{"42", "bob", "12.3%", "1.2% / 3.0MB", "3m7s", "sleep 600"}
	got := p.Row()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Row()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseColumn(t *testing.T) {
	for in, want := range map[string]Column{
		"pid": ColPID, "USER": ColUser, "cpu%": ColCPU, "Mem": ColMemory, "time": ColTime, "cmd": ColCommand,
	} {
		got, err := ParseColumn(in)
		if err != nil || got != want {
			t.Errorf("ParseColumn(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColumn("nice"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func sample() []Process {
	return []Process{
		{PID: 3, User: "bob", CPU: 5, MemBytes: 100, Runtime: time.Minute, Command: "vim"},
		{PID: 1, User: "Alice", CPU: 50, MemBytes: 10, Runtime: time.Hour, Command: "Zsh"},
		{PID: 2, User: "carol", CPU: 0.5, MemBytes: 1000, Runtime: time.Second, Command: "bash"},
	}
}

func pids(procs []Process) []int32 {
	var out []int32
	for _, p := range procs {
		out = append(out, p.PID)
	}
	return out
}

func equal(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortFixedColumnsDescend(t *testing.T) {
	tests := []struct {
		col  Column
		want []int32
	}{
		{ColCPU, []int32{1, 3, 2}},
		{ColMemory, []int32{2, 3, 1}},
		{ColTime, []int32{1, 3, 2}},
	}
	for _, tt := range tests {
		s := NewSort(tt.col)
		s.Select(tt.col) // reselecting never flips these
		procs := sample()
		s.Apply(procs)
		if !s.Desc || !equal(pids(procs), tt.want) {
			t.Errorf("%s: got %v desc=%v, want %v", tt.col, pids(procs), s.Desc, tt.want)
		}
	}
}

func TestSortToggleColumns(t *testing.T) {
	s := NewSort(ColCPU)

	s.Select(ColUser)
	procs := sample()
	s.Apply(procs)
	if s.Desc || !equal(pids(procs), []int32{1, 3, 2}) {
		t.Fatalf("USER asc: got %v desc=%v", pids(procs), s.Desc)
	}

	s.Select(ColUser)
	s.Apply(procs)
	if !s.Desc || !equal(pids(procs), []int32{2, 3, 1}) {
		t.Fatalf("USER desc: got %v desc=%v", pids(procs), s.Desc)
	}

	// a new toggling column starts ascending again
	s.Select(ColCommand)
	s.Apply(procs)
	if s.Desc || !equal(pids(procs), []int32{2, 3, 1}) {
		t.Fatalf("COMMAND asc: got %v desc=%v", pids(procs), s.Desc)
	}

	s.Select(ColPID)
	s.Apply(procs)
	if !equal(pids(procs), []int32{1, 2, 3}) {
		t.Fatalf("PID asc: got %v", pids(procs))
	}

	// coming back to USER after another column resets to ascending
	s.Select(ColUser)
	if s.Desc {
		t.Error("USER should restart ascending")
	}
}
