package flowfield

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	Formula  string  `json:"formula,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	Zoom     float64 `json:"zoom,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences formula edits, mode switches, zoom animations, and
// screenshots across frames for automated visual testing. Attach to a Viewer
// via SetTestRunner.
//
// Supported actions: "formula" (compile and install Formula; a rejected
// formula leaves the prior field active, visible via Viewer.Err), "mode"
// (switch to Mode by name), "zoom" (animate to Zoom over Duration seconds),
// "wait" (idle for Frames frames), and "screenshot" (capture with Label).
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Viewer via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the viewer. The runner's step
// method is called from Viewer.Update each frame.
func (v *Viewer) SetTestRunner(runner *TestRunner) {
	v.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Viewer.Update.
func (r *TestRunner) step(v *Viewer) {
	if r.done {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "formula":
		// A rejection is part of what scripts test; the error stays in Err.
		_ = v.SetFormula(st.Formula)
	case "mode":
		if t, ok := parseModeType(st.Mode); ok {
			v.SetMode(t)
		}
	case "zoom":
		v.ZoomTo(st.Zoom, float32(st.Duration))
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

// parseModeType maps a mode name from a test script to its ModeType.
func parseModeType(name string) (ModeType, bool) {
	switch name {
	case "arrows":
		return ModeArrows, true
	case "streamlines":
		return ModeStreamlines, true
	case "particles":
		return ModeParticles, true
	case "heatmap":
		return ModeHeatmap, true
	default:
		return 0, false
	}
}
