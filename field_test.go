package flowfield

import (
	"math"
	"testing"
)

func rotationField(t testing.TB, dim int) *Field {
	t.Helper()
	src := "[-y, x]"
	if dim == 3 {
		src = "[-y, x, 0]"
	}
	c, _, err := Compile(src, dim)
	if err != nil {
		t.Fatal(err)
	}
	return NewField(c)
}

func compileField(t *testing.T, src string, dim int) *Field {
	t.Helper()
	c, _, err := Compile(src, dim)
	if err != nil {
		t.Fatal(err)
	}
	return NewField(c)
}

// --- EvaluateAt / Magnitude ---

func TestFieldEvaluateAt(t *testing.T) {
	f := rotationField(t, 2)
	v, ok := f.EvaluateAt(Vec{X: 1, Y: 0})
	if !ok {
		t.Fatal("unexpected invalid")
	}
	assertNear(t, "X", v.X, 0)
	assertNear(t, "Y", v.Y, 1)
}

func TestFieldEvaluateInvalidNeverPanics(t *testing.T) {
	f := compileField(t, "[1/x, log(y)]", 2)
	for _, p := range []Vec{{0, 1, 0}, {1, 0, 0}, {1, -5, 0}, {0, 0, 0}} {
		if _, ok := f.EvaluateAt(p); ok && (p.X == 0 || p.Y <= 0) {
			t.Errorf("EvaluateAt(%v) should be invalid", p)
		}
	}
}

func TestFieldMagnitude(t *testing.T) {
	f := rotationField(t, 2)
	assertNear(t, "|F(3,4)|", f.Magnitude(Vec{X: 3, Y: 4}), 5)

	bad := compileField(t, "[1/x, y]", 2)
	assertNear(t, "invalid point magnitude", bad.Magnitude(Vec{X: 0}), 0)
}

// --- Parameters ---

func TestSetParametersReplacesWholesale(t *testing.T) {
	f := rotationField(t, 2)
	f.SetParameters(map[string]float64{"a": 1, "b": 2})
	f.SetParameters(map[string]float64{"c": 3})

	params := f.Parameters()
	if len(params) != 1 {
		t.Fatalf("params = %v, want only c", params)
	}
	if params["c"] != 3 {
		t.Errorf("c = %v, want 3", params["c"])
	}
}

func TestSetParametersCopiesInput(t *testing.T) {
	f := rotationField(t, 2)
	in := map[string]float64{"a": 1}
	f.SetParameters(in)
	in["a"] = 99
	if f.Parameters()["a"] != 1 {
		t.Error("caller mutation leaked into field")
	}
}

func TestEvaluateAtParamsOverride(t *testing.T) {
	f := rotationField(t, 2)
	f.SetParameters(map[string]float64{"a": 1})
	// Override merges over stored bindings without mutating them.
	if _, ok := f.EvaluateAtParams(Vec{X: 1, Y: 1}, map[string]float64{"a": 5}); !ok {
		t.Fatal("unexpected invalid")
	}
	if f.Parameters()["a"] != 1 {
		t.Error("override leaked into stored parameters")
	}
}

// --- Bounds ---

func TestFieldDefaultBoundsByDimension(t *testing.T) {
	f2 := rotationField(t, 2)
	assertNear(t, "2D extent", f2.Bounds().Max.X, 10)

	f3 := rotationField(t, 3)
	assertNear(t, "3D extent", f3.Bounds().Max.X, 5)
}

func TestSetBoundsRepairsInvertedAxes(t *testing.T) {
	f := rotationField(t, 2)
	f.SetBounds(Bounds{Min: Vec{5, -1, 0}, Max: Vec{-5, 1, 0}})
	b := f.Bounds()
	assertNear(t, "min x", b.Min.X, -5)
	assertNear(t, "max x", b.Max.X, 5)
}

// --- SampleGrid ---

func TestSampleGridCount(t *testing.T) {
	f := rotationField(t, 2)
	samples := f.SampleGrid(5)
	// Rotation field is finite everywhere: full 5^2 grid.
	if len(samples) != 25 {
		t.Errorf("samples = %d, want 25", len(samples))
	}
}

func TestSampleGridSpansBounds(t *testing.T) {
	f := rotationField(t, 2)
	f.SetBounds(Bounds{Min: Vec{-1, -2, 0}, Max: Vec{1, 2, 0}})
	samples := f.SampleGrid(3)

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		minX = math.Min(minX, s.Position.X)
		maxX = math.Max(maxX, s.Position.X)
	}
	assertNear(t, "grid min x", minX, -1)
	assertNear(t, "grid max x", maxX, 1)
}

func TestSampleGridOmitsInvalidPoints(t *testing.T) {
	// 1/x blows up on the x=0 grid column.
	f := compileField(t, "[1/x, y]", 2)
	res := 5 // odd resolution puts a column exactly at x=0
	samples := f.SampleGrid(res)
	if len(samples) >= res*res {
		t.Fatalf("samples = %d, want < %d", len(samples), res*res)
	}
	if len(samples) != res*res-res {
		t.Errorf("samples = %d, want %d (one full column omitted)", len(samples), res*res-res)
	}
	for _, s := range samples {
		if !s.Vector.finite(2) {
			t.Fatalf("non-finite vector leaked: %v", s)
		}
	}
}

func TestSampleGrid3DCount(t *testing.T) {
	f := rotationField(t, 3)
	samples := f.SampleGrid(3)
	if len(samples) != 27 {
		t.Errorf("samples = %d, want 27", len(samples))
	}
}

// --- Benchmarks ---

func BenchmarkSampleGrid20(b *testing.B) {
	f := rotationField(b, 2)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		f.SampleGrid(20)
	}
}
