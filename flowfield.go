package flowfield

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec is a position or field vector with up to three axes. Code operating on
// a 2D field reads and writes only X and Y; Z passes through unchanged.
type Vec struct {
	X, Y, Z float64
}

// Axis returns the i-th component (0=X, 1=Y, 2=Z).
func (v Vec) Axis(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// SetAxis returns a copy of v with the i-th component replaced.
func (v Vec) SetAxis(i int, val float64) Vec {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// Norm returns the Euclidean norm over the first dim components.
func (v Vec) Norm(dim int) float64 {
	if dim == 2 {
		return math.Hypot(v.X, v.Y)
	}
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// finite reports whether the first dim components are all finite.
func (v Vec) finite(dim int) bool {
	for i := 0; i < dim; i++ {
		c := v.Axis(i)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Bounds is the axis-aligned box limiting sampling and particle wraparound.
// Min[i] <= Max[i] must hold for every axis the field uses.
type Bounds struct {
	Min, Max Vec
}

// DefaultBounds returns the default domain box for a dimension:
// ±10 per axis for 2D, ±5 per axis for 3D.
func DefaultBounds(dim int) Bounds {
	e := 10.0
	if dim == 3 {
		e = 5.0
	}
	return Bounds{Min: Vec{-e, -e, -e}, Max: Vec{e, e, e}}
}

// Size returns the extent of the box along axis i.
func (b Bounds) Size(i int) float64 {
	return b.Max.Axis(i) - b.Min.Axis(i)
}

// Center returns the midpoint of the box along axis i.
func (b Bounds) Center(i int) float64 {
	return (b.Min.Axis(i) + b.Max.Axis(i)) / 2
}

// Sample is one grid point paired with the field vector evaluated there.
type Sample struct {
	Position Vec
	Vector   Vec
}

// Arrow is one normalized arrow in a grid layout. Direction is the unit
// field direction; Length is the display length after normalization against
// the sampled maximum magnitude.
type Arrow struct {
	Position  Vec
	Direction Vec
	Length    float64
	Magnitude float64
}

// Config holds the display options shared by all visualization modes.
// Zero values are never used directly; obtain a starting point from
// DefaultConfig and adjust.
type Config struct {
	// Color is the base tint for geometry produced by the mode.
	Color Color
	// Scale is the display scale; no arrow is drawn longer than Scale*0.8
	// world units.
	Scale float64
	// Density multiplies the base sample resolution (arrows, heatmap cells)
	// or trace/particle counts.
	Density float64
	// Opacity is the overall alpha applied when rendering, in [0, 1].
	Opacity float64
}

// Apply merges recognized options into the config. Unrecognized keys are
// ignored; keys that are absent keep their prior values.
func (c *Config) Apply(opts map[string]any) {
	for key, val := range opts {
		switch key {
		case "color":
			if col, ok := val.(Color); ok {
				c.Color = col
			}
		case "scale":
			if f, ok := toFloat(val); ok {
				c.Scale = f
			}
		case "density":
			if f, ok := toFloat(val); ok {
				c.Density = f
			}
		case "opacity":
			if f, ok := toFloat(val); ok {
				c.Opacity = f
			}
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
