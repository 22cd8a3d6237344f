package app

import (
	"lumina/config"
)

// timeAxis maps between sequence time and horizontal pixels at the current
// zoom. Pure value type; the view recomputes derived geometry from it every
// frame.
type timeAxis struct {
	pxPerSec float64
	duration float64

	minPxPerSec float64
	maxPxPerSec float64
	zoomStep    float64
}

func newTimeAxis(cfg config.EditorConfig, duration float64) timeAxis {
	a := timeAxis{
		minPxPerSec: cfg.MinPxPerSec,
		maxPxPerSec: cfg.MaxPxPerSec,
		zoomStep:    cfg.ZoomStep,
		duration:    duration,
	}
	a.setPxPerSec(40)
	return a
}

func (a *timeAxis) setPxPerSec(v float64) {
	if v < a.minPxPerSec {
		v = a.minPxPerSec
	}
	if v > a.maxPxPerSec {
		v = a.maxPxPerSec
	}
	a.pxPerSec = v
}

func (a *timeAxis) setDuration(d float64) {
	if d < 0 {
		d = 0
	}
	a.duration = d
}

func (a timeAxis) timeToPixel(t float64) float64 {
	return t * a.pxPerSec
}

// pixelToTime inverts timeToPixel, clamped to [0, duration]. A zero pxPerSec
// cannot occur after setPxPerSec, but guard anyway so a malformed config can
// never divide by zero.
func (a timeAxis) pixelToTime(x float64) float64 {
	if a.pxPerSec <= 0 {
		return 0
	}
	t := x / a.pxPerSec
	if t < 0 {
		return 0
	}
	if t > a.duration {
		return a.duration
	}
	return t
}

// pixelToTimeUnclamped converts a pixel span to seconds without clamping,
// for offsets relative to an arbitrary start time.
func (a timeAxis) pixelToTimeUnclamped(x float64) float64 {
	if a.pxPerSec <= 0 {
		return 0
	}
	return x / a.pxPerSec
}

func (a *timeAxis) zoomIn() {
	a.setPxPerSec(a.pxPerSec * a.zoomStep)
}

func (a *timeAxis) zoomOut() {
	a.setPxPerSec(a.pxPerSec / a.zoomStep)
}

// zoomToFit chooses the zoom that shows the whole sequence in the given
// width, clamped to the configured bounds.
func (a *timeAxis) zoomToFit(visibleWidth float64) {
	if a.duration <= 0 || visibleWidth <= 0 {
		a.setPxPerSec(a.minPxPerSec)
		return
	}
	a.setPxPerSec(visibleWidth / a.duration)
}

// contentWidth is the full pixel width of the sequence at the current zoom.
func (a timeAxis) contentWidth() float64 {
	return a.timeToPixel(a.duration)
}

// viewMetrics corrects pointer coordinates for ancestor-level visual scaling.
// When the host scales the window contents (device scale, page zoom), the
// bounding width in visual pixels diverges from the layout width; dividing
// pointer offsets by the ratio recovers layout-space coordinates. Omitting
// the correction produces an error that grows with distance from the origin.
type viewMetrics struct {
	boundingWidth float64
	layoutWidth   float64
}

func (v viewMetrics) zoomRatio() float64 {
	if v.layoutWidth <= 0 || v.boundingWidth <= 0 {
		return 1
	}
	return v.boundingWidth / v.layoutWidth
}

// toLocal converts a viewport coordinate to element-local layout coordinates
// given the element's viewport origin.
func (v viewMetrics) toLocal(client, origin float64) float64 {
	return (client - origin) / v.zoomRatio()
}

// rowAtY finds the stacked row whose [top, bottom) band contains the
// corrected vertical offset (ruler already subtracted, scroll already added).
// Pointers above the first row clamp to it, below the last row clamp to the
// last; ok is false only when there are no rows at all.
func rowAtY(rows []StackedRow, y float64) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	if y < 0 {
		return 0, true
	}
	top := 0.0
	for i := range rows {
		bottom := top + float64(rows[i].Height)
		if y >= top && y < bottom {
			return i, true
		}
		top = bottom
	}
	return len(rows) - 1, true
}

// rowTop returns the cumulative top offset of a row index.
func rowTop(rows []StackedRow, idx int) float64 {
	top := 0.0
	for i := 0; i < idx && i < len(rows); i++ {
		top += float64(rows[i].Height)
	}
	return top
}

// rowsHeight is the total stacked height of all rows.
func rowsHeight(rows []StackedRow) float64 {
	h := 0.0
	for i := range rows {
		h += float64(rows[i].Height)
	}
	return h
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
