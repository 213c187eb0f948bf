package format

import "strings"

const (
	barFilled = "█"
	barEmpty  = "░"
)

// Level classifies a usage percentage for coloring.
type Level int

const (
	LevelNormal Level = iota
	LevelModerate
	LevelHigh
	LevelCritical
)

// UsageLevel maps a percentage to its Level: >=90 critical, >=70 high,
// >=50 moderate, anything lower is normal.
func UsageLevel(percent float64) Level {
	switch {
	case percent >= 90:
		return LevelCritical
	case percent >= 70:
		return LevelHigh
	case percent >= 50:
		return LevelModerate
	default:
		return LevelNormal
	}
}

// String returns the color name conventionally associated with the level.
func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "red"
	case LevelHigh:
		return "yellow"
	case LevelModerate:
		return "cyan"
	default:
		return "green"
	}
}

// Bar draws a fixed-width meter for percent (clamped to 0..100).
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}
