package flowfield

// Default streamline tracing parameters. IntegrateRK4 itself never assumes
// these; they belong to the call sites (StreamlineMode, examples).
const (
	DefaultTraceSteps = 50
	DefaultTraceDT    = 0.2
)

// IntegrateRK4 advances seed through the field with classic 4th-order
// Runge-Kutta for the autonomous ODE dp/dt = F(p), returning the traced
// path. The first element is always the seed.
//
// If any of the four stage evaluations is invalid, integration stops and the
// path holds the seed plus all previously committed steps, so the result may
// be shorter than steps+1. Callers must check the length.
//
// Only the axes the field defines are advanced; in a 2D field the seed's Z
// passes through unchanged. override parameter bindings, if non-nil, shadow
// the field's stored parameters for the duration of the trace.
func (f *Field) IntegrateRK4(seed Vec, steps int, dt float64, override map[string]float64) []Vec {
	path := make([]Vec, 1, steps+1)
	path[0] = seed

	p := seed
	for s := 0; s < steps; s++ {
		k1, ok := f.EvaluateAtParams(p, override)
		if !ok {
			return path
		}
		k2, ok := f.EvaluateAtParams(f.offset(p, k1, dt/2), override)
		if !ok {
			return path
		}
		k3, ok := f.EvaluateAtParams(f.offset(p, k2, dt/2), override)
		if !ok {
			return path
		}
		k4, ok := f.EvaluateAtParams(f.offset(p, k3, dt), override)
		if !ok {
			return path
		}

		for i := 0; i < f.dim; i++ {
			slope := (k1.Axis(i) + 2*k2.Axis(i) + 2*k3.Axis(i) + k4.Axis(i)) / 6
			p = p.SetAxis(i, p.Axis(i)+dt*slope)
		}
		path = append(path, p)
	}
	return path
}

// offset returns p displaced by v*h along the field's axes only.
func (f *Field) offset(p, v Vec, h float64) Vec {
	for i := 0; i < f.dim; i++ {
		p = p.SetAxis(i, p.Axis(i)+v.Axis(i)*h)
	}
	return p
}
