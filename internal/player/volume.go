package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the output level (0.0 to 1.0). The level is kept across
// sources and applied when output starts.
func (e *StreamEngine) SetVolume(level float64) {
	level = max(0, min(level, 1))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = level
	if e.volume != nil {
		speaker.Lock()
		e.volume.Volume = levelToVolume(level)
		e.volume.Silent = level <= 0
		speaker.Unlock()
	}
}

// Volume returns the current output level.
func (e *StreamEngine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale where Volume is in "decibels" with base 2.
// Volume = 0 means no change, -1 = half volume, -2 = quarter, etc.
// We map: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (essentially silent)
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
