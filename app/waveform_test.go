package app

import (
	"math"
	"testing"

	"lumina/typedef"
)

func TestDownsamplePeaksEmptyInput(t *testing.T) {
	out := downsamplePeaks(nil, 8)
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("bucket %d = %g, want 0", i, v)
		}
	}
	if got := downsamplePeaks([]float64{1}, 0); got != nil {
		t.Fatalf("zero target returned %v", got)
	}
}

func TestDownsamplePeaksShortInputCopied(t *testing.T) {
	out := downsamplePeaks([]float64{0.5, -0.25}, 4)
	want := []float64{0.5, 0.25, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestDownsamplePeaksMaxAbs(t *testing.T) {
	// 8 samples into 2 buckets: each bucket keeps its max |amplitude|.
	samples := []float64{0.1, -0.9, 0.2, 0.3, 0.05, 0.4, -0.6, 0.1}
	out := downsamplePeaks(samples, 2)
	if out[0] != 0.9 {
		t.Errorf("bucket 0 = %g, want 0.9", out[0])
	}
	if out[1] != 0.6 {
		t.Errorf("bucket 1 = %g, want 0.6", out[1])
	}
}

func TestDownsamplePeaksBucketCount(t *testing.T) {
	samples := make([]float64, 10007)
	for i := range samples {
		samples[i] = math.Sin(float64(i) / 100)
	}
	out := downsamplePeaks(samples, 2048)
	if len(out) != 2048 {
		t.Fatalf("len = %d, want 2048", len(out))
	}
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Fatalf("bucket %d = %g outside [0,1]", i, v)
		}
	}
}

func TestPeakAt(t *testing.T) {
	w := typedef.WaveformData{
		Peaks:    []float64{0.1, 0.2, 0.3, 0.4},
		Duration: 4,
	}
	cases := []struct {
		t    float64
		want float64
	}{
		{0, 0.1},
		{0.99, 0.1},
		{1, 0.2},
		{3.5, 0.4},
		{-1, 0},
		{4, 0},  // duration is exclusive
		{99, 0},
	}
	for _, c := range cases {
		if got := peakAt(w, c.t); got != c.want {
			t.Errorf("peakAt(%g) = %g, want %g", c.t, got, c.want)
		}
	}

	if got := peakAt(typedef.WaveformData{}, 1); got != 0 {
		t.Errorf("empty waveform peakAt = %g, want 0", got)
	}
}
