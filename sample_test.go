package flowfield

import (
	"math"
	"testing"
)

// --- ArrowLayout ---

func TestArrowLayoutMaxLength(t *testing.T) {
	// In [-y, x] the largest sampled magnitude is at the grid corners; that
	// arrow gets exactly Scale*0.8 and nothing exceeds it.
	f := rotationField(t, 2)
	cfg := Config{Scale: 2, Density: 1, Opacity: 1}
	arrows := ArrowLayout(f, 10, cfg)
	if len(arrows) == 0 {
		t.Fatal("no arrows")
	}

	maxLen := 0.0
	for _, a := range arrows {
		if a.Length > cfg.Scale*0.8+epsilon {
			t.Fatalf("arrow length %v exceeds cap %v", a.Length, cfg.Scale*0.8)
		}
		maxLen = math.Max(maxLen, a.Length)
	}
	assertNear(t, "max arrow length", maxLen, cfg.Scale*0.8)
}

func TestArrowLayoutUnitDirections(t *testing.T) {
	f := rotationField(t, 2)
	arrows := ArrowLayout(f, 8, Config{Scale: 1, Density: 1})
	for _, a := range arrows {
		assertNear(t, "|direction|", a.Direction.Norm(2), 1)
	}
}

func TestArrowLayoutSkipsZeroVectors(t *testing.T) {
	// [-y, x] vanishes at the origin; an odd resolution samples it exactly.
	f := rotationField(t, 2)
	arrows := ArrowLayout(f, 5, Config{Scale: 1, Density: 1})
	for _, a := range arrows {
		if a.Magnitude < magnitudeEpsilon {
			t.Fatalf("zero-magnitude arrow at %v", a.Position)
		}
	}
	if len(arrows) != 24 { // 5x5 grid minus the origin
		t.Errorf("arrows = %d, want 24", len(arrows))
	}
}

func TestArrowLayoutZeroField(t *testing.T) {
	f := compileField(t, "[0, 0]", 2)
	if arrows := ArrowLayout(f, 5, Config{Scale: 1, Density: 1}); arrows != nil {
		t.Errorf("arrows = %v, want nil for an everywhere-zero field", arrows)
	}
}

func TestArrowLayoutDensityScalesResolution(t *testing.T) {
	f := rotationField(t, 2)
	sparse := ArrowLayout(f, 10, Config{Scale: 1, Density: 0.5})
	dense := ArrowLayout(f, 10, Config{Scale: 1, Density: 2})
	if len(dense) <= len(sparse) {
		t.Errorf("dense = %d, sparse = %d; density should add arrows", len(dense), len(sparse))
	}
}

// --- StreamlineSeeds ---

func TestStreamlineSeedsCountAndCentering(t *testing.T) {
	b := Bounds{Min: Vec{0, 0, 0}, Max: Vec{4, 4, 0}}
	seeds := StreamlineSeeds(b, 2, 4) // n = 2, cell centers at 1/4 and 3/4
	if len(seeds) != 4 {
		t.Fatalf("seeds = %d, want 4", len(seeds))
	}
	assertNear(t, "first seed x", seeds[0].X, 1)
	assertNear(t, "first seed y", seeds[0].Y, 1)
	assertNear(t, "last seed x", seeds[3].X, 3)
	assertNear(t, "last seed y", seeds[3].Y, 3)
}

func TestStreamlineSeedsTruncates(t *testing.T) {
	seeds := StreamlineSeeds(DefaultBounds(2), 2, 5) // n = 3 gives 9 cells
	if len(seeds) != 5 {
		t.Errorf("seeds = %d, want 5", len(seeds))
	}
}

func TestStreamlineSeeds3DMidPlane(t *testing.T) {
	b := Bounds{Min: Vec{-1, -1, 2}, Max: Vec{1, 1, 6}}
	for _, s := range StreamlineSeeds(b, 3, 9) {
		assertNear(t, "seed z", s.Z, 4)
	}
}

func TestStreamlineSeedsZeroCount(t *testing.T) {
	if seeds := StreamlineSeeds(DefaultBounds(2), 2, 0); seeds != nil {
		t.Errorf("seeds = %v, want nil", seeds)
	}
}

// --- AdvectionSystem ---

func TestAdvectionSystemStartsInsideBounds(t *testing.T) {
	f := rotationField(t, 2)
	sys := NewAdvectionSystem(f, 100, 1)
	b := f.Bounds()
	for _, p := range sys.Particles() {
		if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
			t.Fatalf("particle %v outside bounds", p)
		}
		assertNear(t, "2D particle z", p.Z, 0)
	}
}

func TestAdvectionSystemDefaultCount(t *testing.T) {
	f := rotationField(t, 2)
	sys := NewAdvectionSystem(f, 0, 1)
	if len(sys.Particles()) != 256 {
		t.Errorf("particles = %d, want 256", len(sys.Particles()))
	}
}

func TestAdvectionStepMovesParticles(t *testing.T) {
	f := compileField(t, "[1, 0]", 2)
	sys := NewAdvectionSystem(f, 10, 1)
	before := make([]Vec, len(sys.Particles()))
	copy(before, sys.Particles())

	sys.Step(1)
	for i, p := range sys.Particles() {
		moved := p.X - before[i].X
		// dx = v*dt*speed*0.1 unless the particle wrapped.
		if math.Abs(moved-0.1) > epsilon && moved >= 0 {
			t.Fatalf("particle %d moved %v, want 0.1 or wrap", i, moved)
		}
		assertNear(t, "y unchanged", p.Y, before[i].Y)
	}
}

func TestAdvectionWrapsToroidally(t *testing.T) {
	f := compileField(t, "[1, -1]", 2)
	f.SetBounds(Bounds{Min: Vec{-1, -1, 0}, Max: Vec{1, 1, 0}})
	sys := NewAdvectionSystem(f, 4, 1)

	// Place a particle right at the corner so one big step leaves the bounds
	// on +x and -y simultaneously.
	sys.particles[0] = Vec{X: 1, Y: -1}
	sys.Step(10) // dx = 1*10*1*0.1 = 1

	p := sys.Particles()[0]
	assertNear(t, "wrapped x", p.X, -1)
	assertNear(t, "wrapped y", p.Y, 1)
}

func TestAdvectionInvalidPointStaysPut(t *testing.T) {
	f := compileField(t, "[1/x, y]", 2)
	sys := NewAdvectionSystem(f, 1, 1)
	sys.particles[0] = Vec{X: 0, Y: 0.5}
	sys.Step(1)
	p := sys.Particles()[0]
	assertNear(t, "x held", p.X, 0)
	assertNear(t, "y held", p.Y, 0.5)
}

func TestAdvectionResetRescatters(t *testing.T) {
	f := rotationField(t, 2)
	sys := NewAdvectionSystem(f, 50, 1)
	sys.particles[0] = Vec{X: 99, Y: 99}
	sys.Reset()
	b := f.Bounds()
	p := sys.Particles()[0]
	if p.X < b.Min.X || p.X > b.Max.X {
		t.Errorf("reset left particle at %v", p)
	}
}

func TestAdvectionStepDoesNotAllocate(t *testing.T) {
	f := rotationField(t, 2)
	sys := NewAdvectionSystem(f, 100, 1)
	allocs := testing.AllocsPerRun(10, func() {
		sys.Step(1.0 / 60)
	})
	if allocs > 0 {
		t.Errorf("Step allocated %v times per run, want 0", allocs)
	}
}

func BenchmarkAdvectionStep(b *testing.B) {
	f := rotationField(b, 2)
	sys := NewAdvectionSystem(f, 300, 1)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		sys.Step(1.0 / 60)
	}
}
