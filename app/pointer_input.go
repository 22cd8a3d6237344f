package app

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// pointerEventType enumerates normalized pointer actions.
type pointerEventType int

const (
	pointerDown pointerEventType = iota
	pointerUp
	pointerMove
	pointerPinch // Scale > 1 zooms in, < 1 zooms out
)

// pointerEvent unifies mouse and touch input so the timeline handles one
// stream regardless of device.
type pointerEvent struct {
	Type     pointerEventType
	Position image.Point
	Scale    float64 // pinch only
	Shift    bool    // modifier state at event time
	Time     time.Time
}

type trackedTouch struct {
	last image.Point
}

type pinchTracker struct {
	id1, id2 ebiten.TouchID
	lastDist float64
}

// pointerInput polls ebiten each frame and emits normalized pointer events.
// Primary-button mouse and single-touch map to down/move/up; two touches map
// to pinch.
type pointerInput struct {
	events    []pointerEvent
	touches   map[ebiten.TouchID]*trackedTouch
	mouseDown bool
	mouseLast image.Point
	pinch     pinchTracker
}

func newPointerInput() *pointerInput {
	return &pointerInput{touches: make(map[ebiten.TouchID]*trackedTouch)}
}

// Events returns the events collected by the last Update call.
func (p *pointerInput) Events() []pointerEvent { return p.events }

// Update polls input state. Call exactly once per frame before consuming
// Events.
func (p *pointerInput) Update() {
	now := time.Now()
	p.events = p.events[:0]

	// Losing window focus mid-drag would otherwise leave a stuck button.
	if !ebiten.IsFocused() {
		p.reset()
		return
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	mx, my := ebiten.CursorPosition()
	pos := image.Pt(mx, my)
	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	switch {
	case down && !p.mouseDown:
		p.mouseDown = true
		p.mouseLast = pos
		p.events = append(p.events, pointerEvent{Type: pointerDown, Position: pos, Shift: shift, Time: now})
	case down && p.mouseDown:
		if pos != p.mouseLast {
			p.events = append(p.events, pointerEvent{Type: pointerMove, Position: pos, Shift: shift, Time: now})
			p.mouseLast = pos
		}
	case !down && p.mouseDown:
		p.mouseDown = false
		p.events = append(p.events, pointerEvent{Type: pointerUp, Position: pos, Shift: shift, Time: now})
	}

	touchIDs := ebiten.TouchIDs()
	active := make(map[ebiten.TouchID]bool, len(touchIDs))
	for _, id := range touchIDs {
		active[id] = true
		tx, ty := ebiten.TouchPosition(id)
		tpos := image.Pt(tx, ty)
		st, ok := p.touches[id]
		if !ok {
			p.touches[id] = &trackedTouch{last: tpos}
			if len(p.touches) == 1 {
				p.events = append(p.events, pointerEvent{Type: pointerDown, Position: tpos, Shift: shift, Time: now})
			}
			continue
		}
		if tpos != st.last {
			if len(p.touches) == 1 {
				p.events = append(p.events, pointerEvent{Type: pointerMove, Position: tpos, Shift: shift, Time: now})
			}
			st.last = tpos
		}
	}
	for id, st := range p.touches {
		if !active[id] {
			if len(p.touches) == 1 {
				p.events = append(p.events, pointerEvent{Type: pointerUp, Position: st.last, Shift: shift, Time: now})
			}
			delete(p.touches, id)
		}
	}

	// Two-finger pinch: emit scale relative to the previous frame's spread.
	if len(touchIDs) >= 2 {
		id1, id2 := touchIDs[0], touchIDs[1]
		x1, y1 := ebiten.TouchPosition(id1)
		x2, y2 := ebiten.TouchPosition(id2)
		dist := math.Hypot(float64(x2-x1), float64(y2-y1))
		switch {
		case p.pinch.id1 != id1 || p.pinch.id2 != id2:
			p.pinch = pinchTracker{id1: id1, id2: id2, lastDist: dist}
		case dist > 0 && p.pinch.lastDist > 0 && math.Abs(dist-p.pinch.lastDist) > 0.5:
			mid := image.Pt((x1+x2)/2, (y1+y2)/2)
			p.events = append(p.events, pointerEvent{Type: pointerPinch, Position: mid, Scale: dist / p.pinch.lastDist, Time: now})
			p.pinch.lastDist = dist
		default:
			p.pinch.lastDist = dist
		}
	} else {
		p.pinch = pinchTracker{}
	}
}

func (p *pointerInput) reset() {
	// A synthetic up lets an in-flight drag end cleanly instead of sticking.
	if p.mouseDown {
		p.events = append(p.events, pointerEvent{Type: pointerUp, Position: p.mouseLast, Time: time.Now()})
	}
	p.mouseDown = false
	p.pinch = pinchTracker{}
	for id := range p.touches {
		delete(p.touches, id)
	}
}
