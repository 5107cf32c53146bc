package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"picklist/pkg/marks"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != ":8080" {
		t.Fatalf("expected :8080 got %q", cfg.Server.Port)
	}
	if cfg.Marks.Preset != marks.PresetRevised || cfg.Marks.Threshold != 180 {
		t.Fatalf("unexpected marks defaults %+v", cfg.Marks)
	}
	if cfg.Redis.Enabled || cfg.Redis.TTL != 24*time.Hour {
		t.Fatalf("unexpected redis defaults %+v", cfg.Redis)
	}
	mc, err := cfg.MarksConfig()
	if err != nil {
		t.Fatalf("marks config: %v", err)
	}
	if mc != (marks.Config{MinArea: 100, MaxArea: 1000, SimplifyToleranceFactor: 0.02}) {
		t.Fatalf("unexpected resolved config %+v", mc)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	p := writeConfig(t, `
server:
  port: ":9090"
marks:
  preset: original
  max_area: 800
ocr:
  provider: none
  timeout: 5s
redis:
  enabled: true
`)
	t.Setenv("PICKLIST_SERVER_MODE", "release")
	t.Setenv("PICKLIST_REDIS_ADDR", "cache:6380")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != ":9090" || cfg.Server.Mode != "release" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.OCR.Provider != "none" || cfg.OCR.Timeout != 5*time.Second {
		t.Fatalf("unexpected ocr config %+v", cfg.OCR)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6380" {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	mc, err := cfg.MarksConfig()
	if err != nil {
		t.Fatalf("marks config: %v", err)
	}
	if mc.MinArea != 50 || mc.MaxArea != 800 || mc.SimplifyToleranceFactor != 0.02 {
		t.Fatalf("expected original preset with max_area override, got %+v", mc)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	for _, v := range []string{"300", "0", "-1"} {
		p := writeConfig(t, "marks:\n  threshold: "+v+"\n")
		if _, err := Load(p); err == nil {
			t.Fatalf("expected error for threshold %s", v)
		}
	}
	p := writeConfig(t, "marks:\n  threshold: 1\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Marks.Threshold != 1 {
		t.Fatalf("expected threshold 1 got %d", cfg.Marks.Threshold)
	}
}

func TestResolve(t *testing.T) {
	m := MarksConfig{Preset: marks.PresetRevised}
	if _, err := m.Resolve("bogus"); !errors.Is(err, marks.ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset got %v", err)
	}
	c, err := m.Resolve(marks.PresetOriginal)
	if err != nil || c.MinArea != 50 {
		t.Fatalf("expected original preset, got %+v %v", c, err)
	}
	tuned := MarksConfig{Preset: marks.PresetRevised, MaxArea: 800}
	c, err = tuned.Resolve("")
	if err != nil || c.MinArea != 100 || c.MaxArea != 800 {
		t.Fatalf("expected revised preset with max_area 800, got %+v %v", c, err)
	}
	c, err = tuned.Resolve(marks.PresetOriginal)
	if err != nil || c.MinArea != 50 || c.MaxArea != 500 || c.SimplifyToleranceFactor != 0.02 {
		t.Fatalf("expected untouched original preset, got %+v %v", c, err)
	}
	bad := MarksConfig{Preset: marks.PresetOriginal, MinArea: 600}
	if _, err := bad.Resolve(""); err == nil {
		t.Fatalf("expected validation error when min_area exceeds max_area")
	}
}
