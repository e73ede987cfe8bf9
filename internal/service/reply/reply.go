// Package reply selects the simulated counterparty's canned answers.
package reply

import (
	"math/rand/v2"
	"time"
	"unicode/utf16"
)

// Canned is the ordered response set replies are drawn from.
var Canned = []string{
	"Got it!",
	"Sounds good.",
	"Let me check and get back to you.",
	"Thanks for the update!",
	"Interesting? tell me more.",
	"??",
}

const (
	DefaultMinDelay = 600 * time.Millisecond
	DefaultMaxDelay = 1600 * time.Millisecond
)

// Reply picks a canned response for the given outgoing text and contact
// name. Identical inputs always select the same response.
func Reply(userText, contactName string) string {
	return Canned[Index(userText+contactName, len(Canned))]
}

// Index reduces the hash of s to [0, n).
func Index(s string, n int) int {
	h := int64(HashCode(s))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

// HashCode is the 32-bit multiply-by-31 string hash over UTF-16 code units,
// wrapping on overflow.
func HashCode(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return h
}

// Window bounds the randomized delay before a synthetic reply is delivered.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// DefaultWindow is the 600-1600ms delay range.
func DefaultWindow() Window {
	return Window{Min: DefaultMinDelay, Max: DefaultMaxDelay}
}

// Delay returns a uniformly distributed duration in [Min, Max).
func (w Window) Delay() time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + rand.N(w.Max-w.Min)
}
