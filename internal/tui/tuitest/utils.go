package tuitest

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes all ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// ContainsInOrder checks if the output contains all specified strings in order.
func ContainsInOrder(output string, expected ...string) bool {
	lastIndex := 0
	for _, exp := range expected {
		index := strings.Index(output[lastIndex:], exp)
		if index == -1 {
			return false
		}
		lastIndex += index + len(exp)
	}
	return true
}

// Clock provides deterministic time for testing time-based behaviors.
type Clock struct {
	current time.Time
}

// NewClock creates a clock with a fixed starting time.
func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

// Now returns the current controlled time.
func (c *Clock) Now() time.Time {
	return c.current
}

// Advance advances the controlled time by the specified duration.
func (c *Clock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
