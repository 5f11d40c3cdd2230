package flowfield

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ModeType selects a visualization mode. Modes are a closed set dispatched
// by tag; there is no runtime subclassing.
type ModeType uint8

const (
	ModeArrows      ModeType = iota // grid of magnitude-scaled arrows
	ModeStreamlines                 // RK4-traced field lines
	ModeParticles                   // animated tracer particles
	ModeHeatmap                     // magnitude heatmap cells
)

// String returns the mode name for debug output.
func (t ModeType) String() string {
	switch t {
	case ModeArrows:
		return "arrows"
	case ModeStreamlines:
		return "streamlines"
	case ModeParticles:
		return "particles"
	case ModeHeatmap:
		return "heatmap"
	default:
		return "unknown"
	}
}

// ModeState tracks where a mode is in its lifecycle:
// Idle -> Rendered -> (Updating <-> Rendered) -> Disposed.
type ModeState uint8

const (
	StateIdle     ModeState = iota // created, no geometry yet
	StateRendered                  // geometry computed and available
	StateUpdating                  // inside a time-dependent update
	StateDisposed                  // geometry released; mode unusable
)

// Base sample resolutions per dimension, before the Density multiplier.
const (
	baseArrowRes2D   = 15
	baseArrowRes3D   = 8
	baseHeatmapRes   = 48
	baseTraceCount   = 16
	baseParticleHead = 300
)

// fadeDuration is how long a mode takes to fade in after (re)rendering.
const fadeDuration = 0.25

// Mode is the capability surface every visualization mode implements.
// Render (re)computes geometry from scratch; Update advances time-dependent
// state (meaningful only for particles, a no-op beyond fading elsewhere);
// Dispose releases all geometry, after which the mode must not be used.
type Mode interface {
	Type() ModeType
	Render()
	Update(dt float64)
	Dispose()
	State() ModeState
	// Alpha is the current fade-in alpha in [0, 1]. Renderers multiply it
	// with Config.Opacity.
	Alpha() float64
	Config() *Config
}

// DefaultConfig returns the starting display options for a mode type.
func DefaultConfig(t ModeType) Config {
	switch t {
	case ModeStreamlines:
		return Config{Color: Color{0.35, 0.85, 1, 1}, Scale: 1, Density: 1, Opacity: 0.9}
	case ModeParticles:
		return Config{Color: Color{1, 0.9, 0.4, 1}, Scale: 1, Density: 1, Opacity: 1}
	case ModeHeatmap:
		return Config{Color: Color{1, 0.3, 0.2, 1}, Scale: 1, Density: 1, Opacity: 0.85}
	default:
		return Config{Color: Color{0.55, 1, 0.6, 1}, Scale: 1, Density: 1, Opacity: 1}
	}
}

// NewMode creates a mode of the given type over the field. The mode starts
// in StateIdle; call Render to compute geometry.
func NewMode(t ModeType, f *Field, cfg Config) Mode {
	core := modeCore{typ: t, field: f, cfg: cfg}
	switch t {
	case ModeStreamlines:
		return &streamlineMode{modeCore: core}
	case ModeParticles:
		return &particleMode{modeCore: core}
	case ModeHeatmap:
		return &heatmapMode{modeCore: core}
	default:
		return &arrowMode{modeCore: core}
	}
}

// modeCore carries the state shared by every mode variant.
type modeCore struct {
	typ   ModeType
	field *Field
	cfg   Config
	state ModeState
	fade  *gween.Tween
	alpha float64
}

func (m *modeCore) Type() ModeType   { return m.typ }
func (m *modeCore) State() ModeState { return m.state }
func (m *modeCore) Alpha() float64   { return m.alpha }
func (m *modeCore) Config() *Config  { return &m.cfg }

// beginRender resets the fade and marks the mode rendered.
func (m *modeCore) beginRender() {
	m.fade = gween.New(0, 1, fadeDuration, ease.OutQuad)
	m.alpha = 0
	m.state = StateRendered
}

// advanceFade steps the fade-in tween by dt seconds.
func (m *modeCore) advanceFade(dt float64) {
	if m.fade == nil {
		return
	}
	v, done := m.fade.Update(float32(dt))
	m.alpha = float64(v)
	if done {
		m.fade = nil
	}
}

func (m *modeCore) dispose() {
	m.state = StateDisposed
	m.fade = nil
	m.alpha = 0
}

// --- Arrows ----------------------------------------------------------------

type arrowMode struct {
	modeCore
	arrows []Arrow
}

// Arrows returns the computed arrow geometry. Valid after Render.
func (m *arrowMode) Arrows() []Arrow { return m.arrows }

func (m *arrowMode) Render() {
	if m.state == StateDisposed {
		return
	}
	baseRes := baseArrowRes2D
	if m.field.Dim() == 3 {
		baseRes = baseArrowRes3D
	}
	m.arrows = ArrowLayout(m.field, baseRes, m.cfg)
	m.beginRender()
}

func (m *arrowMode) Update(dt float64) {
	if m.state != StateRendered {
		return
	}
	m.advanceFade(dt)
}

func (m *arrowMode) Dispose() {
	m.arrows = nil
	m.dispose()
}

// --- Streamlines -----------------------------------------------------------

type streamlineMode struct {
	modeCore
	lines [][]Vec
}

// Lines returns the traced paths. Individual paths may be shorter than the
// requested step count when tracing left the field's valid region.
func (m *streamlineMode) Lines() [][]Vec { return m.lines }

func (m *streamlineMode) Render() {
	if m.state == StateDisposed {
		return
	}
	count := int(math.Ceil(baseTraceCount * m.cfg.Density))
	seeds := StreamlineSeeds(m.field.Bounds(), m.field.Dim(), count)
	m.lines = m.lines[:0]
	for _, seed := range seeds {
		path := m.field.IntegrateRK4(seed, DefaultTraceSteps, DefaultTraceDT, nil)
		if len(path) < 2 {
			continue
		}
		m.lines = append(m.lines, path)
	}
	m.beginRender()
}

func (m *streamlineMode) Update(dt float64) {
	if m.state != StateRendered {
		return
	}
	m.advanceFade(dt)
}

func (m *streamlineMode) Dispose() {
	m.lines = nil
	m.dispose()
}

// --- Particles -------------------------------------------------------------

type particleMode struct {
	modeCore
	system *AdvectionSystem
}

// Particles returns the tracer positions. Valid after Render.
func (m *particleMode) Particles() []Vec {
	if m.system == nil {
		return nil
	}
	return m.system.Particles()
}

func (m *particleMode) Render() {
	if m.state == StateDisposed {
		return
	}
	count := int(math.Ceil(baseParticleHead * m.cfg.Density))
	m.system = NewAdvectionSystem(m.field, count, m.cfg.Scale)
	m.beginRender()
}

func (m *particleMode) Update(dt float64) {
	if m.state != StateRendered || m.system == nil {
		return
	}
	m.state = StateUpdating
	m.system.Step(dt)
	m.advanceFade(dt)
	m.state = StateRendered
}

func (m *particleMode) Dispose() {
	m.system = nil
	m.dispose()
}

// --- Heatmap ---------------------------------------------------------------

// HeatCell is one heatmap grid cell. T is the magnitude normalized to [0, 1]
// against the sampled maximum; invalid cells are omitted entirely.
type HeatCell struct {
	Position Vec
	T        float64
}

type heatmapMode struct {
	modeCore
	cells []HeatCell
	res   int
}

// Cells returns the heatmap cells. Valid after Render.
func (m *heatmapMode) Cells() []HeatCell { return m.cells }

// Resolution returns the cells-per-axis count used by the last Render.
func (m *heatmapMode) Resolution() int { return m.res }

func (m *heatmapMode) Render() {
	if m.state == StateDisposed {
		return
	}
	res := int(math.Ceil(baseHeatmapRes * m.cfg.Density))
	if res < 2 {
		res = 2
	}
	m.res = res

	// The heatmap is always a 2D slice; for 3D fields it samples the mid-z
	// plane of the bounds.
	b := m.field.Bounds()
	z := 0.0
	if m.field.Dim() == 3 {
		z = b.Center(2)
	}

	m.cells = m.cells[:0]
	maxMag := 0.0
	for yi := 0; yi < res; yi++ {
		y := lerp(b.Min.Y, b.Max.Y, (float64(yi)+0.5)/float64(res))
		for xi := 0; xi < res; xi++ {
			x := lerp(b.Min.X, b.Max.X, (float64(xi)+0.5)/float64(res))
			p := Vec{X: x, Y: y, Z: z}
			v, ok := m.field.EvaluateAt(p)
			if !ok {
				continue
			}
			mag := v.Norm(m.field.Dim())
			if mag > maxMag {
				maxMag = mag
			}
			m.cells = append(m.cells, HeatCell{Position: p, T: mag})
		}
	}
	if maxMag > 0 {
		for i := range m.cells {
			m.cells[i].T /= maxMag
		}
	}
	m.beginRender()
}

func (m *heatmapMode) Update(dt float64) {
	if m.state != StateRendered {
		return
	}
	m.advanceFade(dt)
}

func (m *heatmapMode) Dispose() {
	m.cells = nil
	m.dispose()
}
