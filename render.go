package flowfield

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// projection maps world coordinates inside a bounds box onto screen pixels.
// 2D fields get a direct fit-to-screen mapping with Y flipped (world Y up,
// screen Y down). 3D fields are rotated by a fixed yaw/pitch first; orbit
// controls stay outside the core.
type projection struct {
	dim        int
	cx, cy     float64 // screen center in pixels
	wx, wy, wz float64 // world center
	ppu        float64 // pixels per world unit
	yaw, pitch float64
}

// projectionMargin keeps geometry off the window edges.
const projectionMargin = 0.9

func newProjection(w, h int, b Bounds, dim int, yaw, pitch, zoom float64) projection {
	span := math.Max(b.Size(0), b.Size(1))
	if dim == 3 {
		// A rotated box needs headroom along every axis.
		span = math.Max(span, b.Size(2)) * math.Sqrt2
	}
	if span <= 0 {
		span = 1
	}
	if zoom <= 0 {
		zoom = 1
	}
	ppu := zoom * projectionMargin * math.Min(float64(w), float64(h)) / span
	return projection{
		dim: dim,
		cx:  float64(w) / 2, cy: float64(h) / 2,
		wx: b.Center(0), wy: b.Center(1), wz: b.Center(2),
		ppu: ppu,
		yaw: yaw, pitch: pitch,
	}
}

// point maps a world position to screen pixels.
func (pr projection) point(p Vec) (float64, float64) {
	x := p.X - pr.wx
	y := p.Y - pr.wy
	if pr.dim == 2 {
		return pr.cx + x*pr.ppu, pr.cy - y*pr.ppu
	}
	z := p.Z - pr.wz
	sinYaw, cosYaw := math.Sincos(pr.yaw)
	rx := x*cosYaw + z*sinYaw
	rz := -x*sinYaw + z*cosYaw
	sinPitch, cosPitch := math.Sincos(pr.pitch)
	ry := y*cosPitch - rz*sinPitch
	return pr.cx + rx*pr.ppu, pr.cy - ry*pr.ppu
}

// length converts a world-space length to pixels.
func (pr projection) length(l float64) float64 {
	return l * pr.ppu
}

// rgba converts a Color plus an extra alpha factor to a color.RGBA.
func (c Color) rgba(alpha float64) color.RGBA {
	a := clamp01(c.A * alpha)
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(a * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// heatColor maps a normalized magnitude t to the heatmap ramp: cold blue at
// 0 blending into the mode's base color at 1.
func heatColor(t float64, hot Color) Color {
	cold := Color{R: 0.08, G: 0.15, B: 0.7, A: hot.A}
	t = clamp01(t)
	return Color{
		R: lerp(cold.R, hot.R, t),
		G: lerp(cold.G, hot.G, t),
		B: lerp(cold.B, hot.B, t),
		A: hot.A,
	}
}

// --- White pixel singleton (flowfield is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// for particle quads and heatmap cells.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// drawLine strokes one antialiased line segment.
func drawLine(dst *ebiten.Image, x0, y0, x1, y1, width float64, c color.RGBA) {
	vector.StrokeLine(dst,
		float32(x0), float32(y0), float32(x1), float32(y1),
		float32(width), c, true)
}

// drawArrowHead strokes the two barbs of an arrow ending at (x1, y1) coming
// from direction (dx, dy) (screen space, not necessarily normalized).
func drawArrowHead(dst *ebiten.Image, x1, y1, dx, dy, size float64, c color.RGBA) {
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return
	}
	ux, uy := dx/l, dy/l
	// Barbs at ±150 degrees from the shaft direction.
	const barb = 5 * math.Pi / 6
	sinB, cosB := math.Sincos(barb)
	bx1 := ux*cosB - uy*sinB
	by1 := ux*sinB + uy*cosB
	bx2 := ux*cosB + uy*sinB
	by2 := -ux*sinB + uy*cosB
	drawLine(dst, x1, y1, x1+bx1*size, y1+by1*size, 1, c)
	drawLine(dst, x1, y1, x1+bx2*size, y1+by2*size, 1, c)
}

// drawQuad fills an axis-aligned rectangle via the white pixel image.
func drawQuad(dst *ebiten.Image, x, y, w, h float64, c Color, alpha float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.rgba(alpha))
	dst.DrawImage(ensureWhitePixel(), op)
}
