package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefaultIsSane(t *testing.T) {
	c := Default()
	if c.MinPxPerSec <= 0 || c.MaxPxPerSec <= c.MinPxPerSec {
		t.Fatalf("zoom bounds invalid: [%v, %v]", c.MinPxPerSec, c.MaxPxPerSec)
	}
	if c.ZoomStep <= 1 {
		t.Fatalf("zoom step must exceed 1, got %v", c.ZoomStep)
	}
	if c.MinEffectDuration <= 0 {
		t.Fatalf("minimum effect duration must be positive, got %v", c.MinEffectDuration)
	}
	if c.DefaultEffectDuration < c.MinEffectDuration {
		t.Fatal("default effect duration shorter than the minimum")
	}
}

func TestSanitizedClampsOverrides(t *testing.T) {
	c := EditorConfig{
		MinPxPerSec:       -1,
		MaxPxPerSec:       -5,
		ZoomStep:          0.5,
		MinEffectDuration: 0,
	}.sanitized()
	if c.MinPxPerSec <= 0 {
		t.Errorf("MinPxPerSec not clamped: %v", c.MinPxPerSec)
	}
	if c.MaxPxPerSec < c.MinPxPerSec {
		t.Errorf("MaxPxPerSec below MinPxPerSec after sanitize: %v < %v", c.MaxPxPerSec, c.MinPxPerSec)
	}
	if c.ZoomStep <= 1 {
		t.Errorf("ZoomStep not clamped: %v", c.ZoomStep)
	}
	if c.MinEffectDuration <= 0 {
		t.Errorf("MinEffectDuration not clamped: %v", c.MinEffectDuration)
	}
}

func TestTomlRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.toml")

	want := Default()
	want.LaneUnitHeight = 40
	want.DragThresholdPx = 9

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := toml.NewEncoder(f).Encode(want); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := Default()
	if err := toml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.LaneUnitHeight != 40 || got.DragThresholdPx != 9 {
		t.Fatalf("round trip lost overrides: %+v", got)
	}
}
