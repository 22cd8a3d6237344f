package app

import (
	"log"
	"math"

	"lumina/config"
	"lumina/typedef"
)

// effectRef identifies one placed effect by its owning (track, effect) pair.
type effectRef struct {
	Track  int
	Effect int
}

// mutator is the external mutation interface drag commits go through. The
// production implementation forwards to seqruntime; tests substitute a fake.
type mutator interface {
	UpdateEffectTimeRange(seqIdx, trackIdx, effectIdx int, start, end float64) error
	MoveEffect(seqIdx, trackIdx, effectIdx int, target typedef.FixtureID, start, end float64) error
}

type dragKind int

const (
	dragResizeLeft dragKind = iota
	dragResizeRight
	dragMove
)

// dragState is the single active pointer interaction. Exactly one exists
// from pointer-down to pointer-up; both variants share the struct with the
// kind tag selecting which fields matter.
type dragState struct {
	kind dragKind

	seqIdx int
	ref    effectRef

	original      typedef.TimeRange
	originFixture typedef.FixtureID // move only

	pressX, pressY int // screen position at pointer-down
	didDrag        bool
}

// dragPreview is the live, uncommitted interval shown while a drag is
// active. It exists if and only if a dragState has produced an update.
type dragPreview struct {
	Ref           effectRef
	Range         typedef.TimeRange
	TargetFixture typedef.FixtureID
	IsMove        bool
}

// dragController owns the drag lifecycle: press starts a state, moves update
// the preview, release commits through the mutator or resolves to a click.
type dragController struct {
	cfg config.EditorConfig
	mut mutator

	state   *dragState
	preview *dragPreview
}

func newDragController(cfg config.EditorConfig, mut mutator) *dragController {
	return &dragController{cfg: cfg, mut: mut}
}

func (d *dragController) active() bool { return d.state != nil }

// Preview returns the live preview, nil when no drag has produced one.
func (d *dragController) Preview() *dragPreview { return d.preview }

// beginResize starts a resize drag on one edge of a selected effect.
// A press while another drag is active defensively ends the prior one
// without committing.
func (d *dragController) beginResize(seqIdx int, ref effectRef, original typedef.TimeRange, leftEdge bool, screenX, screenY int) {
	if d.state != nil {
		log.Printf("[TIMELINE] Pointer-down during active drag; dropping stale drag state")
		d.reset()
	}
	kind := dragResizeRight
	if leftEdge {
		kind = dragResizeLeft
	}
	d.state = &dragState{
		kind:     kind,
		seqIdx:   seqIdx,
		ref:      ref,
		original: original,
		pressX:   screenX,
		pressY:   screenY,
	}
}

// beginMove starts a move drag (or click candidate) on an effect body.
func (d *dragController) beginMove(seqIdx int, ref effectRef, original typedef.TimeRange, origin typedef.FixtureID, screenX, screenY int) {
	if d.state != nil {
		log.Printf("[TIMELINE] Pointer-down during active drag; dropping stale drag state")
		d.reset()
	}
	d.state = &dragState{
		kind:          dragMove,
		seqIdx:        seqIdx,
		ref:           ref,
		original:      original,
		originFixture: origin,
		pressX:        screenX,
		pressY:        screenY,
	}
}

// pointerMoved advances the drag. deltaXLocal is the layout-space horizontal
// displacement since pointer-down (already corrected for ancestor scaling);
// screenX/screenY are raw screen coordinates used only for the drag
// threshold; hoverRow is the row hit-test result for the current pointer
// position (ok=false when there are no rows).
func (d *dragController) pointerMoved(axis timeAxis, deltaXLocal float64, screenX, screenY int, hoverFixture typedef.FixtureID, hoverOK bool) {
	if d.state == nil {
		return
	}
	st := d.state
	deltaSec := 0.0
	if axis.pxPerSec > 0 {
		deltaSec = deltaXLocal / axis.pxPerSec
	}

	switch st.kind {
	case dragResizeLeft, dragResizeRight:
		d.preview = &dragPreview{
			Ref:   st.ref,
			Range: d.resizedRange(axis, deltaSec),
		}

	case dragMove:
		if !st.didDrag {
			dx := screenX - st.pressX
			dy := screenY - st.pressY
			if dx*dx+dy*dy < d.cfg.DragThresholdPx*d.cfg.DragThresholdPx {
				return // still a click candidate
			}
			st.didDrag = true
		}
		target := st.originFixture
		if hoverOK {
			target = hoverFixture
		}
		d.preview = &dragPreview{
			Ref:           st.ref,
			Range:         d.movedRange(axis, deltaSec),
			TargetFixture: target,
			IsMove:        true,
		}
	}
}

// resizedRange applies deltaSec to the dragged edge only, clamped to the
// sequence bounds. When the result would undercut the minimum duration the
// opposite edge is pulled inward so the interval is exactly the minimum.
func (d *dragController) resizedRange(axis timeAxis, deltaSec float64) typedef.TimeRange {
	st := d.state
	minDur := d.cfg.MinEffectDuration
	r := st.original

	if st.kind == dragResizeLeft {
		r.Start = clampFloat(st.original.Start+deltaSec, 0, axis.duration)
		if r.End-r.Start < minDur {
			r.End = r.Start + minDur
			if r.End > axis.duration {
				r.End = axis.duration
				r.Start = r.End - minDur
			}
		}
	} else {
		r.End = clampFloat(st.original.End+deltaSec, 0, axis.duration)
		if r.End-r.Start < minDur {
			r.Start = r.End - minDur
			if r.Start < 0 {
				r.Start = 0
				r.End = minDur
			}
		}
	}
	return r
}

// movedRange shifts the original interval by deltaSec at constant duration,
// clamped so it stays within [0, duration].
func (d *dragController) movedRange(axis timeAxis, deltaSec float64) typedef.TimeRange {
	st := d.state
	dur := st.original.Duration()
	maxStart := axis.duration - dur
	if maxStart < 0 {
		maxStart = 0
	}
	start := clampFloat(st.original.Start+deltaSec, 0, maxStart)
	return typedef.TimeRange{Start: start, End: start + dur}
}

// clickResult reports how a pointer-up resolved.
type clickResult int

const (
	dragNone      clickResult = iota // no drag was active
	dragClicked                      // below threshold: selection toggle, no mutation
	dragCommitted                    // mutation sent
	dragFailed                       // mutation rejected; preview discarded
)

// pointerUp ends the drag. Commits use the identity captured at
// pointer-down, so an in-flight external edit is resolved by the store, not
// silently overwritten with stale indices. Every exit path clears the state
// and preview.
func (d *dragController) pointerUp() (clickResult, effectRef) {
	if d.state == nil {
		return dragNone, effectRef{}
	}
	st := d.state
	preview := d.preview
	defer d.reset()

	switch st.kind {
	case dragResizeLeft, dragResizeRight:
		if preview == nil {
			return dragClicked, st.ref // press-release without movement
		}
		if err := d.mut.UpdateEffectTimeRange(st.seqIdx, st.ref.Track, st.ref.Effect, preview.Range.Start, preview.Range.End); err != nil {
			log.Printf("[TIMELINE] Resize commit rejected: %v", err)
			return dragFailed, st.ref
		}
		return dragCommitted, st.ref

	case dragMove:
		if !st.didDrag || preview == nil {
			return dragClicked, st.ref
		}
		if err := d.mut.MoveEffect(st.seqIdx, st.ref.Track, st.ref.Effect, preview.TargetFixture, preview.Range.Start, preview.Range.End); err != nil {
			log.Printf("[TIMELINE] Move commit rejected: %v", err)
			return dragFailed, st.ref
		}
		return dragCommitted, st.ref
	}
	return dragNone, effectRef{}
}

// reset destroys the drag state and preview unconditionally; called on every
// pointer-up path and when input focus is lost so no dangling preview leaks.
func (d *dragController) reset() {
	d.state = nil
	d.preview = nil
}

// cancel aborts any active drag without committing.
func (d *dragController) cancel() {
	if d.state != nil {
		d.reset()
	}
}

// displacement is the screen-space distance from pointer-down, used by
// callers that need the raw threshold metric.
func (d *dragController) displacement(screenX, screenY int) float64 {
	if d.state == nil {
		return 0
	}
	dx := float64(screenX - d.state.pressX)
	dy := float64(screenY - d.state.pressY)
	return math.Hypot(dx, dy)
}
