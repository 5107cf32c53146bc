package marks

import (
	"encoding/json"
	"errors"
	"testing"
)

type fakeShape struct {
	area      float64
	perimeter float64
	vertices  int
	gotEps    float64
}

func (f *fakeShape) Area() float64      { return f.area }
func (f *fakeShape) Perimeter() float64 { return f.perimeter }
func (f *fakeShape) SimplifiedVertices(eps float64) int {
	f.gotEps = eps
	return f.vertices
}

func revised(t *testing.T) Config {
	t.Helper()
	cfg, err := Preset(PresetRevised)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	return cfg
}

func TestClassifyScenarios(t *testing.T) {
	cfg := revised(t)
	cases := []struct {
		name  string
		shape *fakeShape
		want  Label
	}{
		{"inside band four vertices", &fakeShape{area: 300, perimeter: 80, vertices: 4}, Check},
		{"inside band two vertices", &fakeShape{area: 300, perimeter: 80, vertices: 2}, Cross},
		{"above band overrides shape", &fakeShape{area: 5000, perimeter: 300, vertices: 6}, Cross},
		{"at min bound", &fakeShape{area: 100, perimeter: 40, vertices: 5}, Cross},
		{"at max bound", &fakeShape{area: 1000, perimeter: 120, vertices: 5}, Cross},
		{"zero perimeter", &fakeShape{area: 300, perimeter: 0, vertices: 5}, Cross},
		{"three vertices", &fakeShape{area: 101, perimeter: 50, vertices: 3}, Check},
	}
	for _, tc := range cases {
		got := ClassifyOne(tc.shape, cfg)
		if got != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestClassifyToleranceIsFactorTimesPerimeter(t *testing.T) {
	cfg := revised(t)
	s := &fakeShape{area: 300, perimeter: 150, vertices: 3}
	ClassifyOne(s, cfg)
	if s.gotEps != 3 {
		t.Fatalf("expected epsilon 3 got %v", s.gotEps)
	}
}

func TestClassifyOutsideBandSkipsSimplification(t *testing.T) {
	cfg := revised(t)
	s := &fakeShape{area: 20, perimeter: 150, vertices: 9, gotEps: -1}
	ClassifyOne(s, cfg)
	if s.gotEps != -1 {
		t.Fatalf("simplification should not run for out-of-band regions, eps=%v", s.gotEps)
	}
}

func TestClassifyEmpty(t *testing.T) {
	got := Classify(nil, revised(t))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result got %#v", got)
	}
}

func TestClassifyPreservesOrderAndIsIdempotent(t *testing.T) {
	cfg := revised(t)
	shapes := []Shape{
		&fakeShape{area: 300, perimeter: 80, vertices: 4},
		&fakeShape{area: 5000, perimeter: 80, vertices: 4},
		&fakeShape{area: 300, perimeter: 80, vertices: 1},
		&fakeShape{area: 999, perimeter: 80, vertices: 3},
	}
	want := []Label{Check, Cross, Cross, Check}
	first := Classify(shapes, cfg)
	second := Classify(shapes, cfg)
	if len(first) != len(shapes) {
		t.Fatalf("expected %d labels got %d", len(shapes), len(first))
	}
	for i := range want {
		if first[i] != want[i] || second[i] != want[i] {
			t.Fatalf("index %d: expected %v got %v / %v", i, want[i], first[i], second[i])
		}
	}
}

func TestPresets(t *testing.T) {
	orig, err := Preset(PresetOriginal)
	if err != nil {
		t.Fatalf("original preset: %v", err)
	}
	if orig.MinArea != 50 || orig.MaxArea != 500 || orig.SimplifyToleranceFactor != 0.02 {
		t.Fatalf("unexpected original preset %+v", orig)
	}
	if _, err := Preset("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset got %v", err)
	}
	names := PresetNames()
	if len(names) != 2 || names[0] != PresetOriginal || names[1] != PresetRevised {
		t.Fatalf("unexpected preset names %v", names)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{MinArea: 100, MaxArea: 1000, SimplifyToleranceFactor: 0.02}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := []Config{
		{MinArea: 500, MaxArea: 500},
		{MinArea: -1, MaxArea: 10},
		{MinArea: 1, MaxArea: 10, SimplifyToleranceFactor: -0.1},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}

func TestLabelJSON(t *testing.T) {
	b, err := json.Marshal([]Label{Check, Cross})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["check","cross"]` {
		t.Fatalf("unexpected json %s", b)
	}
	var back []Label
	if err := json.Unmarshal([]byte(`["✓","cross"]`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0] != Check || back[1] != Cross {
		t.Fatalf("unexpected labels %v", back)
	}
	if got := Symbols([]Label{Check, Cross}); got[0] != "✓" || got[1] != "✗" {
		t.Fatalf("unexpected symbols %v", got)
	}
	if CountChecks([]Label{Check, Cross, Check}) != 2 {
		t.Fatalf("expected 2 checks")
	}
}
