package app

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"lumina/config"
	"lumina/seqruntime"
	"lumina/typedef"
)

// TimelineView is the interactive timeline: ruler, waveform backdrop,
// fixture rows with lane-stacked effect blocks, playhead, selection and drag
// previews. It reads snapshots from seqruntime and commits edits through the
// mutator; all derived layout is recomputed when the snapshot changes.
type TimelineView struct {
	cfg config.EditorConfig

	show  typedef.Show
	seq   typedef.Sequence
	seqOK bool

	axis timeAxis
	rows []StackedRow

	scrollX float64
	scrollY float64

	drag *dragController
	sel  *selectionSet
	wave waveformBackdrop

	metrics     viewMetrics
	deviceScale float64
	bounds      image.Rectangle

	font      font.Face
	smallFont font.Face

	// press bookkeeping for click/drag resolution
	pressHit      hitResult
	pressClient   image.Point
	rulerScrub    bool
	lastClickAt   time.Time
	lastClickPos  image.Point
	clipboardOK   bool
	layoutDirty   bool
	playbackCache typedef.PlaybackInfo
}

// runtimeMutator forwards drag commits to the seqruntime command API.
type runtimeMutator struct{}

func (runtimeMutator) UpdateEffectTimeRange(seqIdx, trackIdx, effectIdx int, start, end float64) error {
	return seqruntime.UpdateEffectTimeRange(seqIdx, trackIdx, effectIdx, start, end)
}

func (runtimeMutator) MoveEffect(seqIdx, trackIdx, effectIdx int, target typedef.FixtureID, start, end float64) error {
	_, _, err := seqruntime.MoveEffect(seqIdx, trackIdx, effectIdx, target, start, end)
	return err
}

// NewTimelineView builds the timeline and subscribes to store changes.
func NewTimelineView(cfg config.EditorConfig, clipboardOK bool) *TimelineView {
	v := &TimelineView{
		cfg:         cfg,
		drag:        newDragController(cfg, runtimeMutator{}),
		sel:         newSelectionSet(),
		deviceScale: 1,
		font:        loadFontFace(14),
		smallFont:   loadFontFace(11),
		clipboardOK: clipboardOK,
		layoutDirty: true,
	}
	seqruntime.SetStateChangeCallback(func() { v.layoutDirty = true })
	return v
}

// refreshLayout re-reads the snapshot and rebuilds all derived structures.
// Cheap enough to run on any state change; holds no incremental state.
func (v *TimelineView) refreshLayout() {
	v.show = seqruntime.GetShow()
	v.seq, v.seqOK = seqruntime.ActiveSequence()

	duration := 0.0
	if v.seqOK {
		duration = v.seq.Duration
	}
	if v.axis.pxPerSec == 0 {
		v.axis = newTimeAxis(v.cfg, duration)
	} else {
		v.axis.setDuration(duration)
	}

	if v.seqOK {
		v.rows = buildStackedRows(v.show, v.seq, v.cfg)
		v.sel.prune(v.seq)
	} else {
		// Malformed snapshot: no rows, pointer edits become no-ops.
		v.rows = nil
		v.sel.clear()
	}
	v.wave.invalidate()
	v.layoutDirty = false
}

// geometry helpers; all in screen coordinates.

func (v *TimelineView) contentOrigin() image.Point {
	return image.Pt(v.bounds.Min.X+v.cfg.FixtureLabelW, v.bounds.Min.Y+v.cfg.RulerHeight)
}

func (v *TimelineView) contentWidth() int {
	w := v.bounds.Dx() - v.cfg.FixtureLabelW
	if w < 0 {
		w = 0
	}
	return w
}

// pointerTimeX converts a pointer's viewport X into timeline-space pixels
// (scroll included), applying the ancestor-scale correction.
func (v *TimelineView) pointerTimeX(clientX int) float64 {
	return v.metrics.toLocal(float64(clientX), float64(v.contentOrigin().X)) + v.scrollX
}

// pointerRowY converts a pointer's viewport Y into stacked-row space.
func (v *TimelineView) pointerRowY(clientY int) float64 {
	return v.metrics.toLocal(float64(clientY), float64(v.contentOrigin().Y)) + v.scrollY
}

type hitZone int

const (
	hitOutside hitZone = iota
	hitRuler
	hitRowEmpty
	hitEffectBody
	hitEffectLeftEdge
	hitEffectRightEdge
)

type hitResult struct {
	zone   hitZone
	rowIdx int
	placed PlacedEffect
	time   float64
}

// hitTest resolves what lives under a viewport point.
func (v *TimelineView) hitTest(pt image.Point) hitResult {
	if !pt.In(v.bounds) || !v.seqOK {
		return hitResult{zone: hitOutside}
	}
	t := v.axis.pixelToTime(v.pointerTimeX(pt.X))

	if pt.Y < v.bounds.Min.Y+v.cfg.RulerHeight {
		return hitResult{zone: hitRuler, time: t}
	}
	if pt.X < v.bounds.Min.X+v.cfg.FixtureLabelW {
		return hitResult{zone: hitOutside, time: t}
	}

	rowIdx, ok := rowAtY(v.rows, v.pointerRowY(pt.Y))
	if !ok {
		return hitResult{zone: hitOutside, time: t}
	}

	// Walk effects topmost-lane-last so the visually top block wins.
	timeX := v.pointerTimeX(pt.X)
	row := &v.rows[rowIdx]
	handle := float64(v.cfg.ResizeHandleWidth)
	for i := len(row.Effects) - 1; i >= 0; i-- {
		p := row.Effects[i]
		x0 := v.axis.timeToPixel(p.Start)
		x1 := v.axis.timeToPixel(p.End)
		if timeX < x0 || timeX >= x1 {
			continue
		}
		laneTop := rowTop(v.rows, rowIdx) + float64(v.cfg.RowPadding+p.Lane*v.cfg.LaneUnitHeight)
		y := v.pointerRowY(pt.Y)
		if y < laneTop || y >= laneTop+float64(v.cfg.LaneUnitHeight) {
			continue
		}
		ref := effectRef{Track: p.TrackIndex, Effect: p.EffectIndex}
		// Resize affordances only exist on selected effects.
		if v.sel.contains(ref) {
			if timeX-x0 < handle {
				return hitResult{zone: hitEffectLeftEdge, rowIdx: rowIdx, placed: p, time: t}
			}
			if x1-timeX < handle {
				return hitResult{zone: hitEffectRightEdge, rowIdx: rowIdx, placed: p, time: t}
			}
		}
		return hitResult{zone: hitEffectBody, rowIdx: rowIdx, placed: p, time: t}
	}
	return hitResult{zone: hitRowEmpty, rowIdx: rowIdx, time: t}
}

// Update processes one frame of input. bounds is the view's screen region;
// deviceScale feeds the waveform raster density and the pointer correction.
func (v *TimelineView) Update(bounds image.Rectangle, deviceScale float64, pointer *pointerInput) {
	v.bounds = bounds
	v.deviceScale = deviceScale
	// Pointer coordinates arrive in layout space, so bounding and layout
	// widths agree here; the ratio diverges from 1 only when the view is
	// embedded under an outer visual scale.
	v.metrics = viewMetrics{
		boundingWidth: float64(bounds.Dx()) * deviceScale,
		layoutWidth:   float64(bounds.Dx()) * deviceScale,
	}

	if v.layoutDirty {
		v.refreshLayout()
	}

	seqruntime.Tick()
	v.playbackCache = seqruntime.GetPlayback()
	v.handleKeys()
	v.handleWheel()

	for _, ev := range pointer.Events() {
		switch ev.Type {
		case pointerDown:
			v.onPointerDown(ev)
		case pointerMove:
			v.onPointerMove(ev)
		case pointerUp:
			v.onPointerUp(ev)
		case pointerPinch:
			v.zoomAt(ev.Position.X, ev.Scale)
		}
	}

	v.clampScroll()
}

func (v *TimelineView) onPointerDown(ev pointerEvent) {
	hit := v.hitTest(ev.Position)
	v.pressHit = hit
	v.pressClient = ev.Position

	switch hit.zone {
	case hitRuler:
		v.rulerScrub = true
		seqruntime.Seek(hit.time)
	case hitEffectLeftEdge, hitEffectRightEdge:
		original := typedef.TimeRange{Start: hit.placed.Start, End: hit.placed.End}
		ref := effectRef{Track: hit.placed.TrackIndex, Effect: hit.placed.EffectIndex}
		v.drag.beginResize(v.playbackCache.SequenceIndex, ref, original, hit.zone == hitEffectLeftEdge, ev.Position.X, ev.Position.Y)
	case hitEffectBody:
		original := typedef.TimeRange{Start: hit.placed.Start, End: hit.placed.End}
		ref := effectRef{Track: hit.placed.TrackIndex, Effect: hit.placed.EffectIndex}
		v.drag.beginMove(v.playbackCache.SequenceIndex, ref, original, v.rows[hit.rowIdx].Fixture.ID, ev.Position.X, ev.Position.Y)
	}
}

func (v *TimelineView) onPointerMove(ev pointerEvent) {
	if v.rulerScrub {
		t := v.axis.pixelToTime(v.pointerTimeX(ev.Position.X))
		seqruntime.Seek(t)
		return
	}
	if !v.drag.active() {
		return
	}
	deltaXLocal := v.metrics.toLocal(float64(ev.Position.X), float64(v.pressClient.X))
	rowIdx, ok := rowAtY(v.rows, v.pointerRowY(ev.Position.Y))
	var fixture typedef.FixtureID
	if ok {
		fixture = v.rows[rowIdx].Fixture.ID
	}
	v.drag.pointerMoved(v.axis, deltaXLocal, ev.Position.X, ev.Position.Y, fixture, ok)
}

func (v *TimelineView) onPointerUp(ev pointerEvent) {
	if v.rulerScrub {
		v.rulerScrub = false
		return
	}

	result, ref := v.drag.pointerUp()
	switch result {
	case dragClicked:
		if ev.Shift {
			v.sel.toggle(ref)
		} else {
			v.sel.replace(ref)
		}
	case dragCommitted:
		v.layoutDirty = true
	case dragNone:
		v.onBackgroundClick(ev)
	}
}

// onBackgroundClick handles releases that never had a drag state: empty-row
// and dead-space clicks. A double-click on an empty row band adds an effect
// there; a single click seeks.
func (v *TimelineView) onBackgroundClick(ev pointerEvent) {
	hit := v.pressHit
	now := ev.Time

	isDouble := now.Sub(v.lastClickAt) < time.Duration(v.cfg.DoubleClickMillis)*time.Millisecond &&
		absInt(ev.Position.X-v.lastClickPos.X) < v.cfg.DragThresholdPx*2 &&
		absInt(ev.Position.Y-v.lastClickPos.Y) < v.cfg.DragThresholdPx*2
	v.lastClickAt = now
	v.lastClickPos = ev.Position

	switch hit.zone {
	case hitRowEmpty:
		if isDouble {
			v.addEffectAt(hit)
			return
		}
		v.sel.clear()
		seqruntime.Seek(hit.time)
	case hitOutside:
		// Dead space inside the panel still seeks when below the rows.
		if hit.time > 0 {
			seqruntime.Seek(hit.time)
		}
	}
}

// addEffectAt delegates interactive placement to the store: a default-length
// default-kind effect lands at the clicked time on the clicked fixture.
func (v *TimelineView) addEffectAt(hit hitResult) {
	if hit.rowIdx < 0 || hit.rowIdx >= len(v.rows) {
		return
	}
	start := hit.time
	end := start + v.cfg.DefaultEffectDuration
	if v.seqOK && end > v.seq.Duration {
		end = v.seq.Duration
		start = end - v.cfg.DefaultEffectDuration
		if start < 0 {
			start = 0
		}
	}
	fixture := v.rows[hit.rowIdx].Fixture.ID
	if _, _, err := seqruntime.AddEffectForFixture(v.playbackCache.SequenceIndex, fixture, typedef.EffectSolid, start, end); err != nil {
		log.Printf("[TIMELINE] Add effect rejected: %v", err)
	}
}

func (v *TimelineView) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		seqruntime.TogglePlayback()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		v.axis.zoomIn()
		v.wave.invalidate()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		v.axis.zoomOut()
		v.wave.invalidate()
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		v.axis.zoomToFit(float64(v.contentWidth()))
		v.scrollX = 0
		v.wave.invalidate()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.drag.cancel()
		v.sel.clear()
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		v.deleteSelection()
	case inpututil.IsKeyJustPressed(ebiten.KeyC) && ebiten.IsKeyPressed(ebiten.KeyControl):
		if v.clipboardOK && v.seqOK {
			v.sel.copyToClipboard(v.seq)
		}
	}
}

func (v *TimelineView) deleteSelection() {
	if v.sel.count() == 0 {
		return
	}
	var targets [][2]int
	for _, r := range v.sel.ordered() {
		targets = append(targets, [2]int{r.Track, r.Effect})
	}
	if err := seqruntime.DeleteEffects(v.playbackCache.SequenceIndex, targets); err != nil {
		log.Printf("[TIMELINE] Delete rejected: %v", err)
		return
	}
	v.sel.clear()
}

func (v *TimelineView) handleWheel() {
	dx, dy := ebiten.Wheel()
	if dx == 0 && dy == 0 {
		return
	}
	mx, _ := ebiten.CursorPosition()
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	switch {
	case ctrl:
		if dy > 0 {
			v.zoomAt(mx, v.cfg.ZoomStep)
		} else if dy < 0 {
			v.zoomAt(mx, 1/v.cfg.ZoomStep)
		}
	case shift:
		v.scrollX -= dy * 40
	default:
		v.scrollX += dx * 40
		v.scrollY -= dy * 24
	}
}

// zoomAt scales pxPerSec by factor, keeping the time under the cursor fixed
// so zooming feels anchored.
func (v *TimelineView) zoomAt(clientX int, factor float64) {
	anchor := v.axis.pixelToTime(v.pointerTimeX(clientX))
	v.axis.setPxPerSec(v.axis.pxPerSec * factor)
	// Re-solve scrollX so anchor maps back to the same screen position.
	local := v.metrics.toLocal(float64(clientX), float64(v.contentOrigin().X))
	v.scrollX = v.axis.timeToPixel(anchor) - local
	v.wave.invalidate()
	v.clampScroll()
}

func (v *TimelineView) clampScroll() {
	maxX := v.axis.contentWidth() - float64(v.contentWidth())
	if maxX < 0 {
		maxX = 0
	}
	v.scrollX = clampFloat(v.scrollX, 0, maxX)

	visibleH := float64(v.bounds.Dy() - v.cfg.RulerHeight)
	maxY := rowsHeight(v.rows) - visibleH
	if maxY < 0 {
		maxY = 0
	}
	v.scrollY = clampFloat(v.scrollY, 0, maxY)
}

// ── drawing ─────────────────────────────────────────────────────────

var (
	colBackground  = color.RGBA{R: 24, G: 26, B: 30, A: 255}
	colGutter      = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	colRulerBg     = color.RGBA{R: 38, G: 40, B: 48, A: 255}
	colRowLine     = color.RGBA{R: 52, G: 54, B: 62, A: 255}
	colTick        = color.RGBA{R: 110, G: 114, B: 126, A: 255}
	colTickLabel   = color.RGBA{R: 170, G: 174, B: 186, A: 255}
	colPlayhead    = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	colSelection   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colPreview     = color.RGBA{R: 255, G: 255, B: 255, A: 90}
	colFixtureName = color.RGBA{R: 200, G: 204, B: 214, A: 255}
	colBeatMarker  = color.RGBA{R: 90, G: 140, B: 200, A: 90}
)

// Draw renders the timeline into its bounds on screen.
func (v *TimelineView) Draw(screen *ebiten.Image) {
	root := newScissorContext(screen)
	ctx, ok := root.Push(v.bounds)
	if !ok {
		return
	}
	ctx.Image.Fill(colBackground)

	v.drawWaveform(ctx)
	v.drawRows(ctx)
	v.drawRuler(ctx)
	v.drawGutter(ctx)
	v.drawPlayhead(ctx)
}

func (v *TimelineView) drawRuler(ctx scissorContext) {
	origin := v.contentOrigin()
	rx, ry := ctx.LocalPoint(origin.X, v.bounds.Min.Y)
	w := v.contentWidth()
	vector.DrawFilledRect(ctx.Image, float32(rx), float32(ry), float32(w), float32(v.cfg.RulerHeight), colRulerBg, false)

	if !v.seqOK {
		return
	}

	step := tickStep(v.axis.pxPerSec)
	first := math.Floor(v.axis.pixelToTime(v.scrollX)/step) * step
	for t := first; t <= v.seq.Duration; t += step {
		x := rx + int(v.axis.timeToPixel(t)-v.scrollX)
		if x < rx || x > rx+w {
			continue
		}
		vector.StrokeLine(ctx.Image, float32(x), float32(ry+v.cfg.RulerHeight-8), float32(x), float32(ry+v.cfg.RulerHeight), 1, colTick, false)
		label := formatTick(t)
		text.Draw(ctx.Image, label, v.smallFont, x+3, ry+v.cfg.RulerHeight-10, colTickLabel)
	}

	// Beat markers from the analysis pipeline, drawn as faint full-height
	// lines under the ruler.
	if analysis, ok := seqruntime.GetAnalysis(); ok {
		for _, bt := range analysis.BeatTimes {
			x := rx + int(v.axis.timeToPixel(bt)-v.scrollX)
			if x < rx || x > rx+w {
				continue
			}
			vector.StrokeLine(ctx.Image, float32(x), float32(ry+v.cfg.RulerHeight), float32(x), float32(ry+v.bounds.Dy()), 1, colBeatMarker, false)
		}
	}
}

func (v *TimelineView) drawGutter(ctx scissorContext) {
	gx, gy := ctx.LocalPoint(v.bounds.Min.X, v.contentOrigin().Y)
	vector.DrawFilledRect(ctx.Image, float32(gx), float32(gy-v.cfg.RulerHeight), float32(v.cfg.FixtureLabelW), float32(v.bounds.Dy()), colGutter, false)

	y := float64(gy) - v.scrollY
	for i := range v.rows {
		row := &v.rows[i]
		baseline := int(y) + row.Height/2 + 4
		text.Draw(ctx.Image, row.Fixture.Name, v.font, gx+8, baseline, colFixtureName)
		pixels := fmt.Sprintf("%dpx", row.Fixture.PixelCount)
		text.Draw(ctx.Image, pixels, v.smallFont, gx+8, baseline+13, colTick)
		y += float64(row.Height)
	}
}

func (v *TimelineView) drawWaveform(ctx scissorContext) {
	wave, ok := seqruntime.GetWaveform()
	if !ok || !v.seqOK {
		return
	}
	origin := v.contentOrigin()
	w := v.contentWidth()
	h := v.bounds.Dy() - v.cfg.RulerHeight
	startTime := v.axis.pixelToTime(v.scrollX)
	img := v.wave.render(wave, v.axis, startTime, w, h, v.deviceScale, v.cfg.WaveformVisibility)
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/v.deviceScale, 1/v.deviceScale)
	lx, ly := ctx.LocalPoint(origin.X, origin.Y)
	op.GeoM.Translate(float64(lx), float64(ly))
	ctx.Image.DrawImage(img, op)
}

func (v *TimelineView) drawRows(ctx scissorContext) {
	if !v.seqOK {
		return
	}
	origin := v.contentOrigin()
	contentRect := image.Rect(origin.X, origin.Y, v.bounds.Max.X, v.bounds.Max.Y)
	rowsCtx, ok := ctx.Push(contentRect)
	if !ok {
		return
	}

	preview := v.drag.Preview()

	y := -v.scrollY
	for i := range v.rows {
		row := &v.rows[i]
		rowY := y
		// Row separator
		lx, ly := rowsCtx.LocalPoint(origin.X, origin.Y+int(rowY)+row.Height)
		vector.StrokeLine(rowsCtx.Image, float32(lx), float32(ly), float32(lx+v.contentWidth()), float32(ly), 1, colRowLine, false)

		for _, p := range row.Effects {
			start, end := p.Start, p.End
			ghost := false
			if preview != nil && preview.Ref.Track == p.TrackIndex && preview.Ref.Effect == p.EffectIndex {
				if preview.IsMove && preview.TargetFixture != row.Fixture.ID {
					// Block is being dragged to another row; dim it here.
					ghost = true
				} else {
					start, end = preview.Range.Start, preview.Range.End
				}
			}
			v.drawEffectBlock(rowsCtx, row, rowY, p, start, end, ghost)
		}

		// Cross-row move preview: render the live block on the target row.
		if preview != nil && preview.IsMove && preview.TargetFixture == row.Fixture.ID {
			if _, found := findPlaced([]StackedRow{*row}, row.Fixture.ID, preview.Ref.Track, preview.Ref.Effect); !found {
				v.drawPreviewBlock(rowsCtx, rowY, row.Height, preview.Range)
			}
		}
		y += float64(row.Height)
	}
}

func (v *TimelineView) drawEffectBlock(ctx scissorContext, row *StackedRow, rowY float64, p PlacedEffect, start, end float64, ghost bool) {
	origin := v.contentOrigin()
	x0 := v.axis.timeToPixel(start) - v.scrollX
	x1 := v.axis.timeToPixel(end) - v.scrollX
	if x1 < 0 || x0 > float64(v.contentWidth()) {
		return
	}
	laneY := rowY + float64(v.cfg.RowPadding+p.Lane*v.cfg.LaneUnitHeight)
	lx, ly := ctx.LocalPoint(origin.X+int(x0), origin.Y+int(laneY))
	w := float32(x1 - x0)
	h := float32(v.cfg.LaneUnitHeight - 2)

	col := p.Kind.DisplayColor()
	if ghost {
		col.A = 70
	}
	vector.DrawFilledRect(ctx.Image, float32(lx), float32(ly), w, h, col, false)

	ref := effectRef{Track: p.TrackIndex, Effect: p.EffectIndex}
	if v.sel.contains(ref) {
		vector.StrokeRect(ctx.Image, float32(lx), float32(ly), w, h, 2, colSelection, false)
		// Resize affordances on the selected block's edges.
		hw := float32(v.cfg.ResizeHandleWidth)
		vector.DrawFilledRect(ctx.Image, float32(lx), float32(ly), hw, h, colSelection, false)
		vector.DrawFilledRect(ctx.Image, float32(lx)+w-hw, float32(ly), hw, h, colSelection, false)
	}

	if w > 40 && !ghost {
		text.Draw(ctx.Image, p.Kind.String(), v.smallFont, lx+v.cfg.ResizeHandleWidth+2, ly+int(h)-6, color.RGBA{R: 10, G: 10, B: 14, A: 230})
	}
}

func (v *TimelineView) drawPreviewBlock(ctx scissorContext, rowY float64, rowHeight int, r typedef.TimeRange) {
	origin := v.contentOrigin()
	x0 := v.axis.timeToPixel(r.Start) - v.scrollX
	x1 := v.axis.timeToPixel(r.End) - v.scrollX
	lx, ly := ctx.LocalPoint(origin.X+int(x0), origin.Y+int(rowY)+v.cfg.RowPadding)
	vector.DrawFilledRect(ctx.Image, float32(lx), float32(ly), float32(x1-x0), float32(rowHeight-v.cfg.RowPadding*2), colPreview, false)
}

func (v *TimelineView) drawPlayhead(ctx scissorContext) {
	if !v.seqOK {
		return
	}
	origin := v.contentOrigin()
	x := v.axis.timeToPixel(v.playbackCache.CurrentTime) - v.scrollX
	if x < 0 || x > float64(v.contentWidth()) {
		return
	}
	lx, ly := ctx.LocalPoint(origin.X+int(x), v.bounds.Min.Y)
	vector.StrokeLine(ctx.Image, float32(lx), float32(ly), float32(lx), float32(ly+v.bounds.Dy()), 2, colPlayhead, false)
	// Grab handle in the ruler band.
	vector.DrawFilledRect(ctx.Image, float32(lx-4), float32(ly), 8, 8, colPlayhead, false)
}

// tickStep picks a ruler tick interval that keeps labels readable at the
// current zoom.
func tickStep(pxPerSec float64) float64 {
	steps := []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}
	for _, s := range steps {
		if s*pxPerSec >= 60 {
			return s
		}
	}
	return 600
}

func formatTick(t float64) string {
	if t >= 60 {
		m := int(t) / 60
		s := t - float64(m*60)
		return fmt.Sprintf("%d:%04.1f", m, s)
	}
	return fmt.Sprintf("%.4gs", t)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
