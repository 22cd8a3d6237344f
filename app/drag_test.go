package app

import (
	"errors"
	"testing"

	"lumina/config"
	"lumina/typedef"
)

// fakeMutator records commits; fail makes every commit return an error.
type fakeMutator struct {
	fail bool

	resizes []resizeCall
	moves   []moveCall
}

type resizeCall struct {
	seq, track, effect int
	start, end         float64
}

type moveCall struct {
	seq, track, effect int
	target             typedef.FixtureID
	start, end         float64
}

func (f *fakeMutator) UpdateEffectTimeRange(seqIdx, trackIdx, effectIdx int, start, end float64) error {
	if f.fail {
		return errors.New("rejected")
	}
	f.resizes = append(f.resizes, resizeCall{seqIdx, trackIdx, effectIdx, start, end})
	return nil
}

func (f *fakeMutator) MoveEffect(seqIdx, trackIdx, effectIdx int, target typedef.FixtureID, start, end float64) error {
	if f.fail {
		return errors.New("rejected")
	}
	f.moves = append(f.moves, moveCall{seqIdx, trackIdx, effectIdx, target, start, end})
	return nil
}

func dragFixture(t *testing.T) (*dragController, *fakeMutator, timeAxis) {
	t.Helper()
	cfg := config.Default()
	mut := &fakeMutator{}
	return newDragController(cfg, mut), mut, newTimeAxis(cfg, 30)
}

func TestResizeRightCommitsDraggedEdge(t *testing.T) {
	d, mut, axis := dragFixture(t)
	ref := effectRef{Track: 0, Effect: 0}
	d.beginResize(0, ref, typedef.TimeRange{Start: 2, End: 10}, false, 300, 50)

	// 200px left at 40 px/s is -5s: end 10 -> 5.
	d.pointerMoved(axis, -200, 100, 50, 0, false)
	result, got := d.pointerUp()

	if result != dragCommitted {
		t.Fatalf("result = %v, want committed", result)
	}
	if got != ref {
		t.Fatalf("ref = %v, want %v", got, ref)
	}
	if len(mut.resizes) != 1 {
		t.Fatalf("resize calls = %d, want 1", len(mut.resizes))
	}
	call := mut.resizes[0]
	if call.start != 2 || call.end != 5 {
		t.Fatalf("committed [%g,%g), want [2,5)", call.start, call.end)
	}
	if d.active() || d.Preview() != nil {
		t.Fatal("drag state survived pointer-up")
	}
}

func TestResizeMinDurationPullsOppositeEdge(t *testing.T) {
	d, mut, axis := dragFixture(t)
	minDur := config.Default().MinEffectDuration
	d.beginResize(0, effectRef{}, typedef.TimeRange{Start: 2, End: 10}, false, 300, 50)

	// Drag the right edge far past the left edge.
	d.pointerMoved(axis, -400, 0, 50, 0, false)
	if result, _ := d.pointerUp(); result != dragCommitted {
		t.Fatalf("result = %v, want committed", result)
	}
	call := mut.resizes[0]
	if got := call.end - call.start; got != minDur {
		t.Fatalf("duration = %g, want minimum %g", got, minDur)
	}
	if call.end != call.start+minDur {
		t.Fatalf("opposite edge not pulled: [%g,%g)", call.start, call.end)
	}
}

func TestResizeLeftClampsToSequenceStart(t *testing.T) {
	d, mut, axis := dragFixture(t)
	d.beginResize(0, effectRef{}, typedef.TimeRange{Start: 2, End: 10}, true, 300, 50)

	// 400px left at 40 px/s would put the start at -8s.
	d.pointerMoved(axis, -400, 0, 50, 0, false)
	d.pointerUp()

	call := mut.resizes[0]
	if call.start != 0 || call.end != 10 {
		t.Fatalf("committed [%g,%g), want [0,10)", call.start, call.end)
	}
}

func TestSubThresholdMoveIsClick(t *testing.T) {
	d, mut, axis := dragFixture(t)
	ref := effectRef{Track: 1, Effect: 2}
	d.beginMove(0, ref, typedef.TimeRange{Start: 4, End: 8}, 0, 100, 100)

	// 2px of travel is under the threshold: still a click candidate.
	d.pointerMoved(axis, 2, 102, 100, 0, true)
	result, got := d.pointerUp()

	if result != dragClicked {
		t.Fatalf("result = %v, want clicked", result)
	}
	if got != ref {
		t.Fatalf("ref = %v, want %v", got, ref)
	}
	if len(mut.moves) != 0 || len(mut.resizes) != 0 {
		t.Fatal("click candidate produced a mutation")
	}
}

func TestMoveAcrossRowsCommitsHoverTarget(t *testing.T) {
	d, mut, axis := dragFixture(t)
	d.beginMove(0, effectRef{Track: 0, Effect: 1}, typedef.TimeRange{Start: 4, End: 8}, 1, 100, 100)

	// 80px right at 40 px/s shifts +2s; pointer now hovers fixture 3.
	d.pointerMoved(axis, 80, 180, 160, 3, true)
	pv := d.Preview()
	if pv == nil || !pv.IsMove {
		t.Fatal("no move preview after threshold crossed")
	}
	if pv.TargetFixture != 3 {
		t.Fatalf("preview target = %d, want 3", pv.TargetFixture)
	}
	if pv.Range.Start != 6 || pv.Range.End != 10 {
		t.Fatalf("preview range [%g,%g), want [6,10)", pv.Range.Start, pv.Range.End)
	}

	if result, _ := d.pointerUp(); result != dragCommitted {
		t.Fatalf("result = %v, want committed", result)
	}
	call := mut.moves[0]
	if call.target != 3 || call.start != 6 || call.end != 10 {
		t.Fatalf("committed move %+v", call)
	}
}

func TestMoveOffRowsKeepsOriginFixture(t *testing.T) {
	d, _, axis := dragFixture(t)
	d.beginMove(0, effectRef{}, typedef.TimeRange{Start: 4, End: 8}, 2, 100, 100)

	d.pointerMoved(axis, 80, 180, -40, 0, false)
	pv := d.Preview()
	if pv == nil || pv.TargetFixture != 2 {
		t.Fatalf("preview target = %v, want origin fixture 2", pv)
	}
}

func TestMoveClampsWithinSequence(t *testing.T) {
	d, mut, axis := dragFixture(t)
	d.beginMove(0, effectRef{}, typedef.TimeRange{Start: 26, End: 29}, 0, 100, 100)

	// +10s would push the end past the 30s sequence; duration is preserved.
	d.pointerMoved(axis, 400, 500, 100, 0, true)
	d.pointerUp()

	call := mut.moves[0]
	if call.start != 27 || call.end != 30 {
		t.Fatalf("committed [%g,%g), want [27,30)", call.start, call.end)
	}
}

func TestRejectedCommitReportsFailure(t *testing.T) {
	d, mut, axis := dragFixture(t)
	mut.fail = true
	d.beginResize(0, effectRef{}, typedef.TimeRange{Start: 2, End: 10}, false, 300, 50)
	d.pointerMoved(axis, -200, 100, 50, 0, false)

	if result, _ := d.pointerUp(); result != dragFailed {
		t.Fatalf("result = %v, want failed", result)
	}
	if d.active() || d.Preview() != nil {
		t.Fatal("failed commit left drag state behind")
	}
}

func TestPressDuringActiveDragResets(t *testing.T) {
	d, mut, axis := dragFixture(t)
	d.beginMove(0, effectRef{Track: 0, Effect: 0}, typedef.TimeRange{Start: 4, End: 8}, 0, 100, 100)
	d.pointerMoved(axis, 80, 180, 100, 0, true)

	// Second press without a release: prior drag is dropped uncommitted.
	d.beginMove(0, effectRef{Track: 1, Effect: 0}, typedef.TimeRange{Start: 0, End: 2}, 1, 200, 100)
	if len(mut.moves) != 0 {
		t.Fatal("stale drag committed on replacement")
	}
	if d.Preview() != nil {
		t.Fatal("stale preview survived replacement")
	}
}

func TestCancelDiscardsDrag(t *testing.T) {
	d, mut, axis := dragFixture(t)
	d.beginResize(0, effectRef{}, typedef.TimeRange{Start: 2, End: 10}, false, 300, 50)
	d.pointerMoved(axis, -200, 100, 50, 0, false)

	d.cancel()
	if result, _ := d.pointerUp(); result != dragNone {
		t.Fatalf("pointer-up after cancel = %v, want none", result)
	}
	if len(mut.resizes) != 0 {
		t.Fatal("cancelled drag committed")
	}
}
