package app

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// scissorContext tracks the current drawing target and its origin relative
// to the root screen, so nested clipped regions can keep drawing in global
// coordinates.
type scissorContext struct {
	Image  *ebiten.Image
	Origin image.Point
}

func newScissorContext(img *ebiten.Image) scissorContext {
	return scissorContext{Image: img}
}

// Push returns a context clipped to rect, given in root coordinates. ok is
// false when the clip is empty. Sub-images share the parent's coordinate
// space, so the origin carries through unchanged.
func (c scissorContext) Push(rect image.Rectangle) (scissorContext, bool) {
	rel := rect.Sub(c.Origin)
	clip := rel.Intersect(c.Image.Bounds())
	if clip.Empty() {
		return scissorContext{}, false
	}
	sub := c.Image.SubImage(clip).(*ebiten.Image)
	return scissorContext{
		Image:  sub,
		Origin: c.Origin,
	}, true
}

// LocalPoint converts a global point into this context's coordinate space.
func (c scissorContext) LocalPoint(x, y int) (int, int) {
	return x - c.Origin.X, y - c.Origin.Y
}
