// Package config holds the editor's tunable policy values: zoom bounds,
// lane geometry, drag thresholds and waveform resolution. None of these are
// invariants; users can override them via editor.toml in the data directory.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"

	"lumina/storage"
)

// ConfigFileName is the override file looked up in the data directory.
const ConfigFileName = "editor.toml"

// EditorConfig collects all timeline policy values.
type EditorConfig struct {
	// Zoom
	MinPxPerSec float64 `toml:"min_px_per_sec"`
	MaxPxPerSec float64 `toml:"max_px_per_sec"`
	ZoomStep    float64 `toml:"zoom_step"` // multiply/divide factor per zoom step

	// Row geometry (logical pixels)
	LaneUnitHeight int `toml:"lane_unit_height"`
	RowPadding     int `toml:"row_padding"`
	MinRowHeight   int `toml:"min_row_height"`
	RulerHeight    int `toml:"ruler_height"`
	FixtureLabelW  int `toml:"fixture_label_width"`

	// Pointer behavior
	DragThresholdPx   int     `toml:"drag_threshold_px"`
	ResizeHandleWidth int     `toml:"resize_handle_width"`
	DoubleClickMillis int     `toml:"double_click_millis"`
	MinEffectDuration float64 `toml:"min_effect_duration"` // seconds

	// Placement defaults
	DefaultEffectDuration float64 `toml:"default_effect_duration"` // seconds

	// Waveform backdrop
	WaveformPeaks      int     `toml:"waveform_peaks"`
	WaveformVisibility float64 `toml:"waveform_visibility"` // skip bars below this amplitude
}

// Default returns the compiled-in policy values.
func Default() EditorConfig {
	return EditorConfig{
		MinPxPerSec:           4,
		MaxPxPerSec:           400,
		ZoomStep:              1.25,
		LaneUnitHeight:        26,
		RowPadding:            4,
		MinRowHeight:          34,
		RulerHeight:           28,
		FixtureLabelW:         140,
		DragThresholdPx:       4,
		ResizeHandleWidth:     6,
		DoubleClickMillis:     350,
		MinEffectDuration:     0.05,
		DefaultEffectDuration: 2.0,
		WaveformPeaks:         2048,
		WaveformVisibility:    0.01,
	}
}

// Load reads editor.toml from the data directory over the defaults. A missing
// file is not an error; a malformed file logs and falls back to defaults so a
// bad edit never prevents startup.
func Load() EditorConfig {
	cfg := Default()
	data, err := storage.ReadDataFile(ConfigFileName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: could not read %s: %v", ConfigFileName, err)
		}
		return cfg
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		log.Printf("config: malformed %s, using defaults: %v", ConfigFileName, err)
		return Default()
	}
	return cfg.sanitized()
}

// sanitized clamps nonsensical overrides back into usable ranges.
func (c EditorConfig) sanitized() EditorConfig {
	d := Default()
	if c.MinPxPerSec <= 0 {
		c.MinPxPerSec = d.MinPxPerSec
	}
	if c.MaxPxPerSec < c.MinPxPerSec {
		c.MaxPxPerSec = c.MinPxPerSec
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	if c.LaneUnitHeight <= 0 {
		c.LaneUnitHeight = d.LaneUnitHeight
	}
	if c.RowPadding < 0 {
		c.RowPadding = d.RowPadding
	}
	if c.MinRowHeight <= 0 {
		c.MinRowHeight = d.MinRowHeight
	}
	if c.RulerHeight <= 0 {
		c.RulerHeight = d.RulerHeight
	}
	if c.FixtureLabelW <= 0 {
		c.FixtureLabelW = d.FixtureLabelW
	}
	if c.DragThresholdPx < 0 {
		c.DragThresholdPx = d.DragThresholdPx
	}
	if c.ResizeHandleWidth <= 0 {
		c.ResizeHandleWidth = d.ResizeHandleWidth
	}
	if c.DoubleClickMillis <= 0 {
		c.DoubleClickMillis = d.DoubleClickMillis
	}
	if c.MinEffectDuration <= 0 {
		c.MinEffectDuration = d.MinEffectDuration
	}
	if c.DefaultEffectDuration < c.MinEffectDuration {
		c.DefaultEffectDuration = d.DefaultEffectDuration
	}
	if c.WaveformPeaks <= 0 {
		c.WaveformPeaks = d.WaveformPeaks
	}
	if c.WaveformVisibility < 0 {
		c.WaveformVisibility = d.WaveformVisibility
	}
	return c
}

// Save writes the config back to the data directory, creating a template the
// user can edit.
func (c EditorConfig) Save() error {
	f, err := os.Create(storage.DataFile(ConfigFileName))
	if err != nil {
		return fmt.Errorf("config: create %s: %w", ConfigFileName, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
