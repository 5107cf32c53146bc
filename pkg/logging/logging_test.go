package logging

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"debug", "release", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		if l == nil {
			t.Fatalf("mode %q: nil logger", mode)
		}
	}
	if l := Must("release"); l == nil {
		t.Fatalf("Must returned nil")
	}
}
