package flowfield

import (
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Viewer owns the active field and visualization mode and implements
// [ebiten.Game]. All state changes (formula, mode, options) happen
// synchronously between ticks, so a field swap never races an in-flight
// sample or trace.
type Viewer struct {
	dim      int
	field    *Field
	mode     Mode
	modeType ModeType
	cfg      Config
	formula  string
	lastErr  error

	width, height int
	yaw, pitch    float64 // 3D view angles
	spin          bool    // slow automatic yaw for 3D fields
	cam           camera

	// ClearColor is the background fill color.
	ClearColor Color
	// ScreenshotDir is where queued screenshots are written as PNG files.
	ScreenshotDir string

	showFPS         bool
	debug           bool
	screenshotQueue []string
	testRunner      *TestRunner
}

// NewViewer creates a viewer for the given dimension (2 or 3; anything else
// is treated as 2). No field is active until SetFormula succeeds.
func NewViewer(dim int) *Viewer {
	if dim != 3 {
		dim = 2
	}
	return &Viewer{
		dim:        dim,
		modeType:   ModeArrows,
		cfg:        DefaultConfig(ModeArrows),
		width:      800,
		height:     600,
		yaw:        math.Pi / 5,
		pitch:      math.Pi / 7,
		spin:          dim == 3,
		cam:           newCamera(),
		ClearColor:    Color{R: 0.04, G: 0.04, B: 0.07, A: 1},
		ScreenshotDir: "screenshots",
	}
}

// Dim returns the viewer's dimension.
func (v *Viewer) Dim() int {
	return v.dim
}

// Field returns the active field, or nil before the first successful
// SetFormula.
func (v *Viewer) Field() *Field {
	return v.field
}

// Formula returns the formula text of the active field.
func (v *Viewer) Formula() string {
	return v.formula
}

// Err returns the error from the most recent SetFormula attempt, or nil.
func (v *Viewer) Err() error {
	return v.lastErr
}

// SetFormula compiles src and, on success, replaces the active field
// wholesale and re-renders the current mode. On a compile or self-test
// failure the previously active field stays in effect and the error is
// returned (also available via Err), so a bad edit never blanks the view.
func (v *Viewer) SetFormula(src string) error {
	compiled, _, err := Compile(src, v.dim)
	if err == nil {
		err = compiled.SelfTest()
	}
	v.lastErr = err
	if err != nil {
		if v.debug {
			log.Printf("flowfield: formula rejected: %v", err)
		}
		return err
	}

	v.field = NewField(compiled)
	v.formula = src
	v.rebuildMode()
	return nil
}

// SetMode switches the visualization mode. The old mode is disposed and the
// new one re-enters Idle then Rendered, resetting its config to the mode's
// defaults.
func (v *Viewer) SetMode(t ModeType) {
	v.modeType = t
	v.cfg = DefaultConfig(t)
	v.rebuildMode()
}

// Mode returns the active mode, or nil before the first successful
// SetFormula.
func (v *Viewer) Mode() Mode {
	return v.mode
}

// SetDimension switches the viewer between 2D and 3D. The active formula is
// recompiled for the new dimension; when it no longer fits (component count
// mismatch, z in a 2D field) the field is dropped and the error recorded in
// Err, as if the formula had just been typed in.
func (v *Viewer) SetDimension(dim int) {
	if dim != 3 {
		dim = 2
	}
	if dim == v.dim {
		return
	}
	v.dim = dim
	v.spin = dim == 3
	if v.mode != nil {
		v.mode.Dispose()
		v.mode = nil
	}
	v.field = nil
	if src := v.formula; src != "" {
		v.formula = ""
		_ = v.SetFormula(src)
	}
}

// Configure merges display options into the active mode's config and
// re-renders. Recognized keys are "color", "scale", "density", and
// "opacity"; unrecognized keys are ignored and missing keys keep prior
// values.
func (v *Viewer) Configure(opts map[string]any) {
	v.cfg.Apply(opts)
	v.rebuildMode()
}

// SetParameters replaces the active field's parameter bindings and
// re-renders. A no-op before the first successful SetFormula.
func (v *Viewer) SetParameters(params map[string]float64) {
	if v.field == nil {
		return
	}
	v.field.SetParameters(params)
	v.rebuildMode()
}

// SetViewAngles sets the fixed 3D projection angles and disables the slow
// automatic spin. Ignored for 2D viewers.
func (v *Viewer) SetViewAngles(yaw, pitch float64) {
	v.yaw = yaw
	v.pitch = pitch
	v.spin = false
}

// Zoom returns the current view zoom factor.
func (v *Viewer) Zoom() float64 {
	return v.cam.zoom
}

// SetZoom snaps the view zoom, cancelling any running zoom animation.
// Non-positive values are ignored.
func (v *Viewer) SetZoom(zoom float64) {
	v.cam.set(zoom)
}

// ZoomTo eases the view zoom toward the target over duration seconds.
// A non-positive duration snaps immediately.
func (v *Viewer) ZoomTo(zoom float64, duration float32) {
	v.cam.animateTo(zoom, duration)
}

// SetShowFPS toggles the FPS overlay.
func (v *Viewer) SetShowFPS(show bool) {
	v.showFPS = show
}

// SetDebugMode enables logging of rejected formulas and render stats.
func (v *Viewer) SetDebugMode(enabled bool) {
	v.debug = enabled
}

// rebuildMode disposes the current mode and builds a fresh one over the
// active field.
func (v *Viewer) rebuildMode() {
	if v.mode != nil {
		v.mode.Dispose()
		v.mode = nil
	}
	if v.field == nil {
		return
	}
	mode := NewMode(v.modeType, v.field, v.cfg)
	mode.Render()
	v.mode = mode
	if v.debug {
		log.Printf("flowfield: mode %s rendered (%s)", v.modeType, v.formula)
	}
}

// Update advances the active mode by one tick. Part of [ebiten.Game].
func (v *Viewer) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	if v.testRunner != nil {
		v.testRunner.step(v)
	}
	if v.spin {
		v.yaw += dt * 0.25
	}
	v.cam.update(dt)
	if v.mode != nil {
		v.mode.Update(dt)
	}
	return nil
}

// Draw renders the active mode's geometry to the screen.
// Part of [ebiten.Game].
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.ClearColor.rgba(1))
	if v.mode == nil || v.field == nil {
		if v.showFPS {
			drawFPSOverlay(screen, v.lastErr)
		}
		v.flushScreenshots(screen)
		return
	}
	if v.debug {
		debugCheckDisposed(v.mode, "Draw")
	}

	pr := newProjection(v.width, v.height, v.field.Bounds(), v.dim, v.yaw, v.pitch, v.cam.zoom)
	cfg := *v.mode.Config()
	alpha := cfg.Opacity * v.mode.Alpha()

	var stats frameStats
	start := time.Now()
	switch m := v.mode.(type) {
	case *arrowMode:
		v.drawArrows(screen, pr, m.Arrows(), cfg, alpha)
		stats.arrows = len(m.Arrows())
	case *streamlineMode:
		v.drawStreamlines(screen, pr, m.Lines(), cfg, alpha)
		for _, path := range m.Lines() {
			stats.segments += len(path) - 1
		}
	case *particleMode:
		v.drawParticles(screen, pr, m.Particles(), cfg, alpha)
		stats.particles = len(m.Particles())
	case *heatmapMode:
		v.drawHeatmap(screen, pr, m, cfg, alpha)
		stats.cells = len(m.Cells())
	}
	stats.drawTime = time.Since(start)
	v.debugLog(stats)

	if v.showFPS {
		drawFPSOverlay(screen, v.lastErr)
	}
	v.flushScreenshots(screen)
}

// Layout reports the logical screen size. Part of [ebiten.Game].
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width = outsideWidth
	v.height = outsideHeight
	return outsideWidth, outsideHeight
}

func (v *Viewer) drawArrows(dst *ebiten.Image, pr projection, arrows []Arrow, cfg Config, alpha float64) {
	c := cfg.Color.rgba(alpha)
	for _, a := range arrows {
		x0, y0 := pr.point(a.Position)
		tip := a.Position
		for i := 0; i < v.dim; i++ {
			tip = tip.SetAxis(i, tip.Axis(i)+a.Direction.Axis(i)*a.Length)
		}
		x1, y1 := pr.point(tip)
		drawLine(dst, x0, y0, x1, y1, 1, c)
		drawArrowHead(dst, x1, y1, x1-x0, y1-y0, math.Min(pr.length(a.Length)*0.3, 6), c)
	}
}

func (v *Viewer) drawStreamlines(dst *ebiten.Image, pr projection, lines [][]Vec, cfg Config, alpha float64) {
	c := cfg.Color.rgba(alpha)
	for _, path := range lines {
		px, py := pr.point(path[0])
		for _, p := range path[1:] {
			x, y := pr.point(p)
			drawLine(dst, px, py, x, y, 1, c)
			px, py = x, y
		}
	}
}

func (v *Viewer) drawParticles(dst *ebiten.Image, pr projection, particles []Vec, cfg Config, alpha float64) {
	size := math.Max(2, pr.length(0.04*cfg.Scale))
	for _, p := range particles {
		x, y := pr.point(p)
		drawQuad(dst, x-size/2, y-size/2, size, size, cfg.Color, alpha)
	}
}

func (v *Viewer) drawHeatmap(dst *ebiten.Image, pr projection, m *heatmapMode, cfg Config, alpha float64) {
	res := m.Resolution()
	if res == 0 {
		return
	}
	cellW := pr.length(v.field.Bounds().Size(0) / float64(res))
	cellH := pr.length(v.field.Bounds().Size(1) / float64(res))
	for _, cell := range m.Cells() {
		x, y := pr.point(cell.Position)
		drawQuad(dst, x-cellW/2, y-cellH/2, cellW+0.5, cellH+0.5, heatColor(cell.T, cfg.Color), alpha)
	}
}

// RunConfig holds the window settings for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the window dimensions in pixels.
	// Zero values default to 800x600.
	Width, Height int
	// ShowFPS enables the FPS overlay.
	ShowFPS bool
}

// Run opens a window and drives the viewer's game loop until the window is
// closed. For custom loops, use the viewer directly as an [ebiten.Game].
func Run(v *Viewer, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	v.width, v.height = w, h
	v.showFPS = cfg.ShowFPS

	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	return ebiten.RunGame(v)
}

var _ ebiten.Game = (*Viewer)(nil)
