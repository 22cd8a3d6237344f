package app

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"lumina/typedef"
)

// downsamplePeaks reduces raw amplitudes to a fixed-size peak envelope. Each
// output bucket is the maximum absolute amplitude over its proportional span
// of the input: peak, not RMS, so short transients stay visible at any zoom.
// Input shorter than the target is copied positionally, leaving the tail
// zero; empty input yields an all-zero envelope.
func downsamplePeaks(samples []float64, target int) []float64 {
	if target <= 0 {
		return nil
	}
	out := make([]float64, target)
	if len(samples) == 0 {
		return out
	}
	if len(samples) <= target {
		for i, s := range samples {
			out[i] = math.Abs(s)
		}
		return out
	}

	for i := 0; i < target; i++ {
		lo := i * len(samples) / target
		hi := (i + 1) * len(samples) / target
		if hi <= lo {
			hi = lo + 1
		}
		peak := 0.0
		for _, s := range samples[lo:hi] {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
		out[i] = peak
	}
	return out
}

// peakAt returns the envelope bucket for a time within the audio, indexed
// proportionally into the source duration. Out-of-range times return 0.
func peakAt(w typedef.WaveformData, t float64) float64 {
	if len(w.Peaks) == 0 || w.Duration <= 0 || t < 0 || t >= w.Duration {
		return 0
	}
	idx := int(t / w.Duration * float64(len(w.Peaks)))
	if idx >= len(w.Peaks) {
		idx = len(w.Peaks) - 1
	}
	return w.Peaks[idx]
}

// waveformBackdrop rasterizes the peak envelope into an offscreen image the
// timeline blits behind effect rows. Rendered at device-pixel resolution and
// cached; the view invalidates it on zoom, height or data changes.
type waveformBackdrop struct {
	img *ebiten.Image

	// cache key
	pxPerSec    float64
	startTime   float64
	widthPx     int
	heightPx    int
	deviceScale float64
	peakCount   int
}

// render returns a backdrop image for the visible span [startTime, +width).
// visibility is the amplitude below which bars are skipped entirely.
func (b *waveformBackdrop) render(w typedef.WaveformData, axis timeAxis, startTime float64, widthPx, heightPx int, deviceScale, visibility float64) *ebiten.Image {
	if widthPx <= 0 || heightPx <= 0 {
		return nil
	}
	if deviceScale <= 0 {
		deviceScale = 1
	}

	if b.img != nil &&
		b.pxPerSec == axis.pxPerSec &&
		b.startTime == startTime &&
		b.widthPx == widthPx && b.heightPx == heightPx &&
		b.deviceScale == deviceScale &&
		b.peakCount == len(w.Peaks) {
		return b.img
	}

	dw := int(float64(widthPx) * deviceScale)
	dh := int(float64(heightPx) * deviceScale)
	if b.img == nil || b.img.Bounds().Dx() != dw || b.img.Bounds().Dy() != dh {
		b.img = ebiten.NewImage(max(dw, 1), max(dh, 1))
	} else {
		b.img.Clear()
	}

	mid := float64(dh) / 2
	barColor := color.RGBA{R: 70, G: 90, B: 110, A: 110}
	for px := 0; px < dw; px++ {
		t := startTime + axis.pixelToTimeUnclamped(float64(px)/deviceScale)
		peak := peakAt(w, t)
		if peak < visibility {
			continue
		}
		half := float32(peak * mid)
		// Vertically mirrored bar around the row band's midline.
		vector.DrawFilledRect(b.img, float32(px), float32(mid)-half, 1, half*2, barColor, false)
	}

	b.pxPerSec = axis.pxPerSec
	b.startTime = startTime
	b.widthPx = widthPx
	b.heightPx = heightPx
	b.deviceScale = deviceScale
	b.peakCount = len(w.Peaks)
	return b.img
}

// invalidate drops the cache so the next render redraws.
func (b *waveformBackdrop) invalidate() {
	b.pxPerSec = -1
}
