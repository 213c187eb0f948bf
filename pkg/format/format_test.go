package format

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0B"},
		{0, "0.0B"},
		{512, "512.0B"},
		{1023, "1023.0B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{5 * 1024 * 1024, "5.0MB"},
		{3 << 30, "3.0GB"},
		{1 << 40, "1.0TB"},
		{1 << 50, "1.0PB"},
		{1 << 60, "1024.0PB"},
	}
	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Errorf("Bytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Ubytes(1536); got != "1.5KB" {
		t.Errorf("Ubytes(1536) = %q", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{45 * time.Second, "45s"},
		{3*time.Minute + 7*time.Second, "3m7s"},
		{2*time.Hour + 5*time.Minute + 59*time.Second, "2h5m"},
		{50 * time.Hour, "50h0m"},
	}
	for _, tt := range tests {
		if got := Duration(tt.in); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsageLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want Level
	}{
		{0, LevelNormal},
		{49.9, LevelNormal},
		{50, LevelModerate},
		{70, LevelHigh},
		{89.99, LevelHigh},
		{90, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		if got := UsageLevel(tt.in); got != tt.want {
			t.Errorf("UsageLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if LevelCritical.String() != "red" || LevelNormal.String() != "green" {
		t.Errorf("unexpected level names")
	}
}

func TestBar(t *testing.T) {
	bar := Bar(50, 20)
	if utf8.RuneCountInString(bar) != 20 {
		t.Fatalf("bar width = %d, want 20", utf8.RuneCountInString(bar))
	}
	if strings.Count(bar, barFilled) != 10 {
		t.Errorf("expected 10 filled cells, got %q", bar)
	}
	if got := Bar(150, 4); got != strings.Repeat(barFilled, 4) {
		t.Errorf("overflow not clamped: %q", got)
	}
	if got := Bar(-1, 3); got != strings.Repeat(barEmpty, 3) {
		t.Errorf("underflow not clamped: %q", got)
	}
	if Bar(10, 0) != "" {
		t.Errorf("zero width should be empty")
	}
}
