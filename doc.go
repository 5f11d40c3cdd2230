// Package flowfield turns a text formula into an explorable 2D/3D vector
// field for [Ebitengine].
//
// A formula like "[-y, x]" is compiled into a typed, whitelisted evaluator
// (never executed as code), wrapped in a [Field] that owns the domain bounds
// and tunable parameters, and consumed by sampling strategies that produce
// geometry: arrow grids, Runge-Kutta streamlines, advected particles, and
// magnitude heatmaps.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	v := flowfield.NewViewer(2)
//	if err := v.SetFormula("[-y, x]"); err != nil {
//		log.Fatal(err)
//	}
//	v.SetMode(flowfield.ModeStreamlines)
//	flowfield.Run(v, flowfield.RunConfig{
//		Title: "Rotation", Width: 800, Height: 600,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Viewer.Update] and [Viewer.Draw] directly.
//
// # Headless use
//
// The computational core has no rendering dependency at call time: [Compile],
// [Field.EvaluateAt], [Field.SampleGrid], [Field.IntegrateRK4],
// [ArrowLayout], and [StreamlineSeeds] are plain synchronous functions that
// return geometry, so they can feed any renderer.
//
// # Safety
//
// User formulas are parsed into an immutable AST over a closed grammar with a
// fixed function whitelist. Evaluation interprets that AST; no user text is
// ever built into executable code.
//
// [Ebitengine]: https://ebitengine.org
package flowfield
