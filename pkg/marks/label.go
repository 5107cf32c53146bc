package marks

import (
	"encoding/json"
	"fmt"
)

// Label is the classification of a single handwritten mark.
type Label int

const (
	Cross Label = iota
	Check
)

func (l Label) String() string {
	if l == Check {
		return "check"
	}
	return "cross"
}

// Symbol returns the glyph shown to users and written to exported sheets.
func (l Label) Symbol() string {
	if l == Check {
		return "✓"
	}
	return "✗"
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "check", "✓":
		*l = Check
	case "cross", "✗":
		*l = Cross
	default:
		return fmt.Errorf("unknown mark label %q", s)
	}
	return nil
}

// Symbols maps labels to their display glyphs, preserving order.
func Symbols(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Symbol()
	}
	return out
}

// CountChecks returns how many labels are Check.
func CountChecks(labels []Label) int {
	n := 0
	for _, l := range labels {
		if l == Check {
			n++
		}
	}
	return n
}
