package flowfield

import (
	"math"
	"math/rand/v2"
)

// magnitudeEpsilon is the cutoff below which a sampled vector is treated as
// zero and skipped by the arrow layout.
const magnitudeEpsilon = 1e-6

// advectionRate scales particle advection speed relative to field magnitude.
// Particles use explicit Euler rather than RK4: lower fidelity is intentional
// for real-time animation.
const advectionRate = 0.1

// ArrowLayout lays out a square grid of display arrows over the field's
// bounds. The effective resolution is ceil(baseRes * cfg.Density) per axis.
//
// Arrow lengths are normalized linearly against the maximum sampled
// magnitude and clamped so no arrow exceeds cfg.Scale*0.8; the sample at the
// maximum gets exactly cfg.Scale*0.8. Samples with magnitude below 1e-6 are
// skipped entirely.
func ArrowLayout(f *Field, baseRes int, cfg Config) []Arrow {
	res := int(math.Ceil(float64(baseRes) * cfg.Density))
	if res < 2 {
		res = 2
	}
	samples := f.SampleGrid(res)
	maxMag := maxMagnitude(samples, f.Dim())
	if maxMag < magnitudeEpsilon {
		return nil
	}

	maxLen := cfg.Scale * 0.8
	arrows := make([]Arrow, 0, len(samples))
	for _, s := range samples {
		mag := s.Vector.Norm(f.Dim())
		if mag < magnitudeEpsilon {
			continue
		}
		length := math.Min(maxLen*(mag/maxMag), maxLen)
		var dir Vec
		for i := 0; i < f.Dim(); i++ {
			dir = dir.SetAxis(i, s.Vector.Axis(i)/mag)
		}
		arrows = append(arrows, Arrow{
			Position:  s.Position,
			Direction: dir,
			Length:    length,
			Magnitude: mag,
		})
	}
	return arrows
}

// StreamlineSeeds places trace starting points on a uniform n x n sub-grid
// over the bounds, where n = ceil(sqrt(count)). Seeds sit at cell centers
// ((i+0.5)/n along each axis) rather than on edges, and the list is
// truncated to exactly count. For 3D fields the seeds lie on the mid-z
// plane of the bounds.
func StreamlineSeeds(b Bounds, dim, count int) []Vec {
	if count <= 0 {
		return nil
	}
	n := int(math.Ceil(math.Sqrt(float64(count))))

	seeds := make([]Vec, 0, count)
	z := 0.0
	if dim == 3 {
		z = b.Center(2)
	}
	for yi := 0; yi < n && len(seeds) < count; yi++ {
		fy := (float64(yi) + 0.5) / float64(n)
		for xi := 0; xi < n && len(seeds) < count; xi++ {
			fx := (float64(xi) + 0.5) / float64(n)
			seeds = append(seeds, Vec{
				X: lerp(b.Min.X, b.Max.X, fx),
				Y: lerp(b.Min.Y, b.Max.Y, fy),
				Z: z,
			})
		}
	}
	return seeds
}

// AdvectionSystem moves a preallocated pool of tracer particles along the
// field with explicit Euler steps. The domain is toroidal: a coordinate
// leaving the bounds on one side re-enters from the opposite bound,
// independently per axis, with Z wrapping only for 3D fields.
type AdvectionSystem struct {
	field     *Field
	particles []Vec
	speed     float64
}

// NewAdvectionSystem creates a pool of count particles at uniformly random
// positions inside the field's bounds. speed scales the advection rate.
func NewAdvectionSystem(f *Field, count int, speed float64) *AdvectionSystem {
	if count <= 0 {
		count = 256
	}
	sys := &AdvectionSystem{
		field:     f,
		particles: make([]Vec, count),
		speed:     speed,
	}
	sys.Reset()
	return sys
}

// Reset rescatters every particle to a fresh random position in the bounds.
func (a *AdvectionSystem) Reset() {
	b := a.field.Bounds()
	dim := a.field.Dim()
	for i := range a.particles {
		p := Vec{
			X: lerp(b.Min.X, b.Max.X, rand.Float64()),
			Y: lerp(b.Min.Y, b.Max.Y, rand.Float64()),
		}
		if dim == 3 {
			p.Z = lerp(b.Min.Z, b.Max.Z, rand.Float64())
		}
		a.particles[i] = p
	}
}

// Particles returns the current particle positions. The returned slice MUST
// NOT be mutated; it is reused across Step calls.
func (a *AdvectionSystem) Particles() []Vec {
	return a.particles
}

// Step advances every particle by dt seconds. Particles at invalid field
// points stay where they are this tick; they are not culled, since the field
// may be valid there after a parameter change.
func (a *AdvectionSystem) Step(dt float64) {
	b := a.field.Bounds()
	dim := a.field.Dim()
	k := dt * a.speed * advectionRate

	for i := range a.particles {
		p := a.particles[i]
		v, ok := a.field.EvaluateAt(p)
		if !ok {
			continue
		}
		for ax := 0; ax < dim; ax++ {
			c := p.Axis(ax) + v.Axis(ax)*k
			lo, hi := b.Min.Axis(ax), b.Max.Axis(ax)
			if c > hi {
				c = lo
			} else if c < lo {
				c = hi
			}
			p = p.SetAxis(ax, c)
		}
		a.particles[i] = p
	}
}
