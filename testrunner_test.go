package flowfield

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "formula", "formula": "[-y, x]"},
			{"action": "mode", "mode": "heatmap"},
			{"action": "wait", "frames": 3},
			{"action": "screenshot", "label": "heatmap"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "formula" || runner.steps[0].Formula != "[-y, x]" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "mode" || runner.steps[1].Mode != "heatmap" {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	_, err := LoadTestScript([]byte(`not json`))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadTestScript_Empty(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": []}`))
	if err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestRunnerStep_Formula(t *testing.T) {
	v := NewViewer(2)
	data := []byte(`{"steps": [
		{"action": "formula", "formula": "[-y, x]"},
		{"action": "mode", "mode": "streamlines"}
	]}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatal(err)
	}
	v.SetTestRunner(runner)

	runner.step(v)
	if v.Field() == nil {
		t.Fatal("formula step did not install a field")
	}
	runner.step(v)
	if v.Mode().Type() != ModeStreamlines {
		t.Errorf("mode = %s, want streamlines", v.Mode().Type())
	}
	if !runner.Done() {
		t.Error("runner should be done after all steps")
	}
}

func TestRunnerStep_BadFormulaRecordsError(t *testing.T) {
	v := NewViewer(2)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "formula", "formula": "[x, y, z]"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(v)
	if v.Err() == nil {
		t.Error("rejected formula left Err nil")
	}
	if v.Field() != nil {
		t.Error("rejected formula installed a field")
	}
}

func TestRunnerStep_Wait(t *testing.T) {
	v := NewViewer(2)
	data := []byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "done"}
	]}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatal(err)
	}

	// Frame 1: execute wait (waitCount becomes 2).
	runner.step(v)
	if runner.Done() {
		t.Error("should not be done during wait")
	}

	// Frames 2 and 3: countdown.
	runner.step(v)
	runner.step(v)
	if runner.Done() {
		t.Error("should not be done before the screenshot step runs")
	}

	// Frame 4: execute screenshot step, runner finishes.
	runner.step(v)
	if !runner.Done() {
		t.Error("runner should be done after screenshot step")
	}
	if len(v.screenshotQueue) != 1 || v.screenshotQueue[0] != "done" {
		t.Errorf("expected screenshot 'done', got %v", v.screenshotQueue)
	}
}

func TestRunnerStep_Zoom(t *testing.T) {
	v := NewViewer(2)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "zoom", "zoom": 2}]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(v)
	assertNear(t, "zoom", v.Zoom(), 2)
}

func TestRunnerStep_UnknownModeIgnored(t *testing.T) {
	v := NewViewer(2)
	if err := v.SetFormula("[-y, x]"); err != nil {
		t.Fatal(err)
	}
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "mode", "mode": "sparkles"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(v)
	if v.Mode().Type() != ModeArrows {
		t.Errorf("unknown mode name changed the mode to %s", v.Mode().Type())
	}
}

func TestRunnerDone(t *testing.T) {
	v := NewViewer(2)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "screenshot", "label": "only"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	if runner.Done() {
		t.Error("runner should not be done before any steps")
	}
	runner.step(v)
	if !runner.Done() {
		t.Error("runner should be done after single screenshot step")
	}
	runner.step(v) // further steps are no-ops
	if !runner.Done() {
		t.Error("done state should be sticky")
	}
}
