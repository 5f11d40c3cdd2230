package flowfield

// Field owns a compiled vector field together with its domain bounds and
// named scalar parameters. It is the single consumer of a CompiledField;
// replacing a formula replaces the whole Field, so in-flight geometry built
// from the old field is simply dropped.
//
// All methods are synchronous and bounded. Evaluation failures are soft:
// they surface as ok == false, never as panics or errors.
type Field struct {
	dim      int
	compiled *CompiledField
	bounds   Bounds
	params   map[string]float64
}

// NewField wraps a compiled field with default bounds for its dimension.
func NewField(c *CompiledField) *Field {
	return &Field{
		dim:      c.Dim(),
		compiled: c,
		bounds:   DefaultBounds(c.Dim()),
	}
}

// Dim returns the field's dimension (2 or 3).
func (f *Field) Dim() int {
	return f.dim
}

// Bounds returns a copy of the current domain box.
func (f *Field) Bounds() Bounds {
	return f.bounds
}

// SetBounds replaces the domain box. Axes with min > max are swapped so the
// invariant min <= max always holds afterwards.
func (f *Field) SetBounds(b Bounds) {
	for i := 0; i < 3; i++ {
		if b.Min.Axis(i) > b.Max.Axis(i) {
			lo, hi := b.Max.Axis(i), b.Min.Axis(i)
			b.Min = b.Min.SetAxis(i, lo)
			b.Max = b.Max.SetAxis(i, hi)
		}
	}
	f.bounds = b
}

// SetParameters atomically replaces the parameter map. The map is copied, so
// later caller-side mutation does not leak into the field.
func (f *Field) SetParameters(params map[string]float64) {
	if len(params) == 0 {
		f.params = nil
		return
	}
	next := make(map[string]float64, len(params))
	for k, v := range params {
		next[k] = v
	}
	f.params = next
}

// Parameters returns the current parameter bindings. The returned map MUST
// NOT be mutated; use SetParameters to change values.
func (f *Field) Parameters() map[string]float64 {
	return f.params
}

// EvaluateAt evaluates the field vector at p using the stored parameters.
// ok is false when the evaluator produced a non-finite component; callers
// must skip the point, not treat it as fatal.
func (f *Field) EvaluateAt(p Vec) (Vec, bool) {
	return f.compiled.Evaluate(p, f.params)
}

// EvaluateAtParams evaluates at p with override bindings merged over the
// stored parameters. A nil override is equivalent to EvaluateAt.
func (f *Field) EvaluateAtParams(p Vec, override map[string]float64) (Vec, bool) {
	if len(override) == 0 {
		return f.compiled.Evaluate(p, f.params)
	}
	merged := make(map[string]float64, len(f.params)+len(override))
	for k, v := range f.params {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return f.compiled.Evaluate(p, merged)
}

// Magnitude returns the Euclidean norm of the field at p, or 0 when
// evaluation is invalid there.
func (f *Field) Magnitude(p Vec) float64 {
	v, ok := f.EvaluateAt(p)
	if !ok {
		return 0
	}
	return v.Norm(f.dim)
}

// SampleGrid evaluates the field on an evenly spaced res^dim grid spanning
// the bounds. Points where evaluation is invalid are omitted, so the result
// may hold fewer than res^dim samples. res values below 2 are clamped to 2.
func (f *Field) SampleGrid(res int) []Sample {
	if res < 2 {
		res = 2
	}
	zSteps := 1
	if f.dim == 3 {
		zSteps = res
	}

	samples := make([]Sample, 0, res*res*zSteps)
	b := f.bounds
	for zi := 0; zi < zSteps; zi++ {
		z := 0.0
		if f.dim == 3 {
			z = lerp(b.Min.Z, b.Max.Z, float64(zi)/float64(res-1))
		}
		for yi := 0; yi < res; yi++ {
			y := lerp(b.Min.Y, b.Max.Y, float64(yi)/float64(res-1))
			for xi := 0; xi < res; xi++ {
				x := lerp(b.Min.X, b.Max.X, float64(xi)/float64(res-1))
				p := Vec{X: x, Y: y, Z: z}
				v, ok := f.EvaluateAt(p)
				if !ok {
					continue
				}
				samples = append(samples, Sample{Position: p, Vector: v})
			}
		}
	}
	return samples
}

// maxMagnitude returns the largest vector norm among the samples.
func maxMagnitude(samples []Sample, dim int) float64 {
	maxMag := 0.0
	for _, s := range samples {
		if m := s.Vector.Norm(dim); m > maxMag {
			maxMag = m
		}
	}
	return maxMag
}
