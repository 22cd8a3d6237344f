package app

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/shirou/gopsutil/v3/process"
)

// perfOverlay is the F3 diagnostics panel: frame rates plus process CPU and
// memory sampled from the OS once per second.
type perfOverlay struct {
	visible bool
	proc    *process.Process

	lastSample time.Time
	cpuPercent float64
	memMB      float64
}

func newPerfOverlay() *perfOverlay {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		p = nil
	}
	return &perfOverlay{proc: p}
}

func (o *perfOverlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		o.visible = !o.visible
	}
	if !o.visible || o.proc == nil {
		return
	}
	if time.Since(o.lastSample) < time.Second {
		return
	}
	o.lastSample = time.Now()
	if cpu, err := o.proc.CPUPercent(); err == nil {
		o.cpuPercent = cpu
	}
	if mem, err := o.proc.MemoryInfo(); err == nil && mem != nil {
		o.memMB = float64(mem.RSS) / (1024 * 1024)
	}
}

func (o *perfOverlay) Draw(screen *ebiten.Image) {
	if !o.visible {
		return
	}
	lines := []string{
		fmt.Sprintf("FPS %.0f  TPS %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("CPU %.1f%%", o.cpuPercent),
		fmt.Sprintf("MEM %.1f MB", o.memMB),
	}
	face := loadFontFace(12)
	w, h := float32(150), float32(18*len(lines)+10)
	x := float32(screen.Bounds().Dx()) - w - 8
	vector.DrawFilledRect(screen, x, 8, w, h, color.RGBA{A: 180}, false)
	for i, ln := range lines {
		text.Draw(screen, ln, face, int(x)+8, 26+18*i, color.RGBA{R: 120, G: 230, B: 120, A: 255})
	}
}
