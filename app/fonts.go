package app

import (
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font cache keyed by point size so faces are built once per size.
var (
	fontCache     = make(map[float64]font.Face)
	fontCacheMux  sync.RWMutex
	parsedFont    *opentype.Font
	fontLoadOnce  sync.Once
	fontLoadError error
)

func initFont() {
	parsedFont, fontLoadError = opentype.Parse(goregular.TTF)
	if fontLoadError != nil {
		log.Printf("[APP] Failed to parse bundled font: %v, using bitmap fallback", fontLoadError)
	}
}

// loadFontFace returns a cached face for size, falling back to the bitmap
// face when the TTF cannot be parsed.
func loadFontFace(size float64) font.Face {
	fontLoadOnce.Do(initFont)

	fontCacheMux.RLock()
	if cached, exists := fontCache[size]; exists {
		fontCacheMux.RUnlock()
		return cached
	}
	fontCacheMux.RUnlock()

	if fontLoadError != nil || parsedFont == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[APP] Failed to create font face at %.1fpt: %v", size, err)
		return basicfont.Face7x13
	}

	fontCacheMux.Lock()
	fontCache[size] = face
	fontCacheMux.Unlock()
	return face
}
