package app

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"lumina/config"
)

// Game is the top-level ebiten game: it owns the timeline view, the pointer
// normalizer and the performance overlay, and routes per-frame input between
// them.
type Game struct {
	cfg     config.EditorConfig
	view    *TimelineView
	pointer *pointerInput
	perf    *perfOverlay

	width  int
	height int
}

// New builds the game shell. clipboardOK reports whether the system
// clipboard initialized; copy shortcuts are disabled without it.
func New(cfg config.EditorConfig, clipboardOK bool) *Game {
	return &Game{
		cfg:     cfg,
		view:    NewTimelineView(cfg, clipboardOK),
		pointer: newPointerInput(),
		perf:    newPerfOverlay(),
	}
}

func (g *Game) Update() error {
	g.pointer.Update()
	g.perf.Update()

	bounds := image.Rect(0, 0, g.width, g.height)
	g.view.Update(bounds, ebiten.DeviceScaleFactor(), g.pointer)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.view.Draw(screen)
	g.perf.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < 640 {
		outsideWidth = 640
	}
	if outsideHeight < 360 {
		outsideHeight = 360
	}
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
