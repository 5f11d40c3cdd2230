package flowfield

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"arrows", "arrows"},
		{"after-edit", "after-edit"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	v := NewViewer(2)
	v.Screenshot("a")
	v.Screenshot("b")
	v.Screenshot("c")
	if len(v.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(v.screenshotQueue))
	}
	if v.screenshotQueue[0] != "a" || v.screenshotQueue[1] != "b" || v.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", v.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	v := NewViewer(2)
	if v.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", v.ScreenshotDir, "screenshots")
	}
}
